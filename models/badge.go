package models

import (
	"time"
)

// BadgeCriteria is the category of user statistic a badge is measured against.
type BadgeCriteria string

const (
	CriteriaPoints           BadgeCriteria = "points"
	CriteriaLevel            BadgeCriteria = "level"
	CriteriaLogins           BadgeCriteria = "logins"
	CriteriaComments         BadgeCriteria = "comments"
	CriteriaMoviesWatched    BadgeCriteria = "movies_watched"
	CriteriaEpisodesWatched  BadgeCriteria = "episodes_watched"
	CriteriaRatingsCount     BadgeCriteria = "ratings_count"
	CriteriaCheckInStreak    BadgeCriteria = "daily_check_in_streak"
	CriteriaLateNightWatcher BadgeCriteria = "late_night_watcher"
	CriteriaGenreExplorer    BadgeCriteria = "genre_explorer"
	CriteriaWatchlistCount   BadgeCriteria = "watchlist_count"
	CriteriaOther            BadgeCriteria = "other"
)

// BadgeDefinition: static config, read-only to the engine.
type BadgeDefinition struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Code          string        `gorm:"uniqueIndex;not null" json:"code"` // e.g., "NIGHT_OWL"
	Name          string        `gorm:"not null" json:"name"`
	Description   string        `json:"description"`
	IconURL       string        `gorm:"type:text" json:"icon_url"`
	Rarity        string        `gorm:"type:varchar(16);default:'common'" json:"rarity"` // common, rare, epic, legendary
	CriteriaType  BadgeCriteria `gorm:"type:varchar(32);not null" json:"criteria_type"`
	CriteriaValue int64         `json:"criteria_value"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

// EarnedBadge: awarded instance. The (user, badge) unique index is what makes
// every award path idempotent — a second insert becomes a no-op.
type EarnedBadge struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_earned_user_badge" json:"user_id"`
	BadgeID  uint      `gorm:"not null;uniqueIndex:idx_earned_user_badge" json:"badge_id"`
	EarnedAt time.Time `gorm:"autoCreateTime" json:"earned_at"`
}

// DefaultBadges are seeded at startup if missing (matched by Code).
var DefaultBadges = []BadgeDefinition{
	{
		Code:          "EARLY_ADOPTER",
		Name:          "Early Adopter",
		Description:   "One of the first 100 accounts on the platform",
		Rarity:        "legendary",
		CriteriaType:  CriteriaOther,
		CriteriaValue: 100,
	},
	{
		Code:          "FIRST_WORDS",
		Name:          "First Words",
		Description:   "Posted your first comment",
		Rarity:        "common",
		CriteriaType:  CriteriaComments,
		CriteriaValue: 1,
	},
	{
		Code:          "CHATTERBOX",
		Name:          "Chatterbox",
		Description:   "Posted 10 comments",
		Rarity:        "common",
		CriteriaType:  CriteriaComments,
		CriteriaValue: 10,
	},
	{
		Code:          "CRITIC",
		Name:          "Critic",
		Description:   "Rated 25 titles",
		Rarity:        "rare",
		CriteriaType:  CriteriaRatingsCount,
		CriteriaValue: 25,
	},
	{
		Code:          "BINGE_100",
		Name:          "Binge Watcher",
		Description:   "Watched 100 episodes",
		Rarity:        "rare",
		CriteriaType:  CriteriaEpisodesWatched,
		CriteriaValue: 100,
	},
	{
		Code:          "MOVIE_BUFF",
		Name:          "Movie Buff",
		Description:   "Watched 50 different movies",
		Rarity:        "epic",
		CriteriaType:  CriteriaMoviesWatched,
		CriteriaValue: 50,
	},
	{
		Code:          "NIGHT_OWL",
		Name:          "Night Owl",
		Description:   "Watched something after midnight on 10 different days",
		Rarity:        "rare",
		CriteriaType:  CriteriaLateNightWatcher,
		CriteriaValue: 10,
	},
	{
		Code:          "GENRE_HOPPER",
		Name:          "Genre Hopper",
		Description:   "Explored 8 different genres",
		Rarity:        "rare",
		CriteriaType:  CriteriaGenreExplorer,
		CriteriaValue: 8,
	},
	{
		Code:          "STREAK_7",
		Name:          "Regular",
		Description:   "Checked in 7 days in a row",
		Rarity:        "common",
		CriteriaType:  CriteriaCheckInStreak,
		CriteriaValue: 7,
	},
	{
		Code:          "STREAK_30",
		Name:          "Devoted",
		Description:   "Checked in 30 days in a row",
		Rarity:        "epic",
		CriteriaType:  CriteriaCheckInStreak,
		CriteriaValue: 30,
	},
	{
		Code:          "COLLECTOR",
		Name:          "Collector",
		Description:   "Saved 20 titles to your watchlist",
		Rarity:        "common",
		CriteriaType:  CriteriaWatchlistCount,
		CriteriaValue: 20,
	},
	{
		Code:          "LEVEL_5",
		Name:          "Halfway Up",
		Description:   "Reached level 5",
		Rarity:        "rare",
		CriteriaType:  CriteriaLevel,
		CriteriaValue: 5,
	},
	{
		Code:          "POINTS_10K",
		Name:          "Point Hoarder",
		Description:   "Accumulated 10,000 points",
		Rarity:        "epic",
		CriteriaType:  CriteriaPoints,
		CriteriaValue: 10000,
	},
}
