package models

import "time"

// Event type tags. One constant per ActionEvent variant; engines switch on
// the concrete type, the tag exists for logging and the base-points table.
const (
	EventEpisodeWatched   = "episode_watched"
	EventChapterRead      = "chapter_read"
	EventNewComment       = "new_comment"
	EventNewRating        = "new_rating"
	EventDailyCheckIn     = "daily_check_in"
	EventWatchlistUpdated = "watchlist_updated"
	EventUserRegistered   = "user_registered"
	EventPointsUpdated    = "points_updated" // internal, emitted by the points service
)

// ActionEvent is a tagged union: one concrete struct per event tag, each
// carrying only the fields that tag needs. Produced by the CRUD boundary,
// consumed exactly once per dispatch.
type ActionEvent interface {
	Type() string
	User() uint
}

type EpisodeWatched struct {
	UserID          uint
	EpisodeID       uint
	MovieID         uint
	GenreIDs        []uint
	WatchedDuration int // seconds
	WatchedAt       time.Time
}

func (e EpisodeWatched) Type() string { return EventEpisodeWatched }
func (e EpisodeWatched) User() uint   { return e.UserID }

type ChapterRead struct {
	UserID    uint
	ChapterID uint
	ComicID   uint
}

func (e ChapterRead) Type() string { return EventChapterRead }
func (e ChapterRead) User() uint   { return e.UserID }

type CommentPosted struct {
	UserID    uint
	CommentID uint
	ParentID  *uint
}

func (e CommentPosted) Type() string { return EventNewComment }
func (e CommentPosted) User() uint   { return e.UserID }

type RatingSubmitted struct {
	UserID   uint
	ItemType string // movie | comic
	ItemID   uint
	Score    float64
}

func (e RatingSubmitted) Type() string { return EventNewRating }
func (e RatingSubmitted) User() uint   { return e.UserID }

type DailyCheckIn struct {
	UserID        uint
	CurrentStreak int
}

func (e DailyCheckIn) Type() string { return EventDailyCheckIn }
func (e DailyCheckIn) User() uint   { return e.UserID }

type WatchlistUpdated struct {
	UserID  uint
	MovieID uint
}

func (e WatchlistUpdated) Type() string { return EventWatchlistUpdated }
func (e WatchlistUpdated) User() uint   { return e.UserID }

type UserRegistered struct {
	UserID uint
}

func (e UserRegistered) Type() string { return EventUserRegistered }
func (e UserRegistered) User() uint   { return e.UserID }

// PointsUpdated is fired by the points service after every award so points-
// and level-based badges get re-evaluated. Never produced by the CRUD layer.
type PointsUpdated struct {
	UserID uint
}

func (e PointsUpdated) Type() string { return EventPointsUpdated }
func (e PointsUpdated) User() uint   { return e.UserID }
