package models

import "time"

// WatchHistory is one row per (user, episode). Repeat views update the row in
// place; the progression engine relies on the uniqueness for exactly-once
// statistics.
type WatchHistory struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex:idx_watch_user_episode" json:"user_id"`
	EpisodeID       uint      `gorm:"not null;uniqueIndex:idx_watch_user_episode" json:"episode_id"`
	WatchedDuration int       `json:"watched_duration"` // seconds
	WatchedAt       time.Time `json:"watched_at"`
}

// ReadingHistory mirrors WatchHistory for comics.
type ReadingHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_read_user_chapter" json:"user_id"`
	ChapterID uint      `gorm:"not null;uniqueIndex:idx_read_user_chapter" json:"chapter_id"`
	ReadAt    time.Time `json:"read_at"`
}

// Comment: ParentID nil means top-level; only top-level comments count toward
// badge statistics.
type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"index;not null" json:"user_id"`
	MovieID  *uint  `gorm:"index" json:"movie_id,omitempty"`
	ComicID  *uint  `gorm:"index" json:"comic_id,omitempty"`
	ParentID *uint  `gorm:"index" json:"parent_id,omitempty"`
	Content  string `gorm:"type:text;not null" json:"content"`

	Timestamps
}

type Rating struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	UserID   uint    `gorm:"not null;uniqueIndex:idx_rating_user_item" json:"user_id"`
	ItemType string  `gorm:"type:varchar(16);not null;uniqueIndex:idx_rating_user_item" json:"item_type"` // movie | comic
	ItemID   uint    `gorm:"not null;uniqueIndex:idx_rating_user_item" json:"item_id"`
	Score    float64 `json:"score"`

	Timestamps
}

// Collection is a watchlist entry.
type Collection struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	UserID  uint `gorm:"not null;uniqueIndex:idx_collection_user_movie" json:"user_id"`
	MovieID uint `gorm:"not null;uniqueIndex:idx_collection_user_movie" json:"movie_id"`

	Timestamps
}

// CheckIn records one daily check-in per user per calendar date. Streak is the
// consecutive-day count as of that check-in; the engines read it from the
// event payload rather than recomputing it.
type CheckIn struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UserID uint      `gorm:"not null;uniqueIndex:idx_checkin_user_date" json:"user_id"`
	Date   string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_checkin_user_date" json:"date"` // YYYY-MM-DD
	Streak int       `json:"streak"`
	At     time.Time `json:"at"`
}
