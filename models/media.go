package models

import "time"

// MovieType distinguishes single-part titles from multi-episode ones. The
// completion oracle treats anything that is not a series, or that has at most
// one episode, as single-part.
type MovieType string

const (
	MovieTypeSingle MovieType = "single"
	MovieTypeSeries MovieType = "series"
)

type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
	Slug string `gorm:"uniqueIndex" json:"slug"`
}

// Series groups related movies (seasons, arcs). A series is complete for a
// user only when every movie in it is complete.
type Series struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"not null" json:"title"`
	Slug  string `gorm:"index" json:"slug"`

	Movies []Movie `json:"movies,omitempty"`

	Timestamps
}

type Movie struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	SeriesID *uint     `gorm:"index" json:"series_id,omitempty"`
	Title    string    `gorm:"not null" json:"title"`
	Slug     string    `gorm:"index" json:"slug"`
	Type     MovieType `gorm:"type:varchar(16);default:'single'" json:"type"`

	Genres   []Genre   `gorm:"many2many:movie_genres" json:"genres,omitempty"`
	Episodes []Episode `json:"episodes,omitempty"`

	Timestamps
}

// Episode carries its runtime as the raw catalog string ("HH:MM:SS",
// "MM:SS" or "SS"); utils.DurationToMillis parses it on demand.
type Episode struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	MovieID  uint   `gorm:"index;not null" json:"movie_id"`
	Number   int    `json:"number"`
	Title    string `json:"title"`
	Duration string `gorm:"type:varchar(16)" json:"duration"`

	Timestamps
}

type Comic struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"not null" json:"title"`
	Slug  string `gorm:"index" json:"slug"`

	Genres   []Genre   `gorm:"many2many:comic_genres" json:"genres,omitempty"`
	Chapters []Chapter `json:"chapters,omitempty"`

	Timestamps
}

type Chapter struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	ComicID uint      `gorm:"index;not null" json:"comic_id"`
	Number  int       `json:"number"`
	Title   string    `json:"title"`
	AddedAt time.Time `json:"added_at" gorm:"autoCreateTime"`
}
