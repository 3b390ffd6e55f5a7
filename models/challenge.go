package models

import (
	"time"
)

type ChallengeType string

const (
	ChallengeWatchXMovies     ChallengeType = "WATCH_X_MOVIES"
	ChallengeWatchXEpisodes   ChallengeType = "WATCH_X_EPISODES"
	ChallengeWatchGenreMovies ChallengeType = "WATCH_GENRE_MOVIES"
	ChallengeReadXComics      ChallengeType = "READ_X_COMICS"
	ChallengeReadXChapters    ChallengeType = "READ_X_CHAPTERS"
	ChallengeRateXItems       ChallengeType = "RATE_X_ITEMS"
	ChallengeDailyLoginStreak ChallengeType = "DAILY_LOGIN_STREAK"
)

type ChallengeStatus string

const (
	ChallengeInProgress ChallengeStatus = "IN_PROGRESS"
	ChallengeCompleted  ChallengeStatus = "COMPLETED"
	ChallengeFailed     ChallengeStatus = "FAILED"
)

// ChallengeDefinition: static config, read-only to the engine. A challenge can
// be time-boxed globally (EndDate) and/or per enrollment (DurationForUserDays).
type ChallengeDefinition struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"not null" json:"title"`
	Description string        `json:"description"`
	Type        ChallengeType `gorm:"type:varchar(32);not null" json:"type"`
	TargetCount int           `gorm:"not null" json:"target_count"`

	DurationForUserDays *int       `json:"duration_for_user_days,omitempty"`
	EndDate             *time.Time `json:"end_date,omitempty"`

	// Type-specific criteria (WATCH_GENRE_MOVIES).
	GenreIDs []uint `gorm:"serializer:json" json:"genre_ids,omitempty"`

	PointsReward     int64 `json:"points_reward"`
	BadgeIDReward    *uint `json:"badge_id_reward,omitempty"`
	ShopItemIDReward *uint `json:"shop_item_id_reward,omitempty"`

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserChallengeProgress is created when a user enrolls and mutated exclusively
// by the challenge engine until it reaches a terminal state.
//
// ProgressDetails is the de-duplication ledger: one opaque key per item
// already counted. For item-based challenge types CurrentCount always equals
// len(ProgressDetails).
type UserChallengeProgress struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;uniqueIndex:idx_user_challenge" json:"user_id"`
	ChallengeID uint            `gorm:"not null;uniqueIndex:idx_user_challenge" json:"challenge_id"`
	Status      ChallengeStatus `gorm:"type:varchar(16);default:'IN_PROGRESS'" json:"status"`

	CurrentCount    int      `gorm:"default:0" json:"current_count"`
	ProgressDetails []string `gorm:"serializer:json" json:"progress_details,omitempty"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Challenge ChallengeDefinition `gorm:"foreignKey:ChallengeID" json:"challenge,omitempty"`

	Timestamps
}

// DefaultChallenges are seeded at startup if missing (matched by Title).
var DefaultChallenges = []ChallengeDefinition{
	{
		Title:               "Weekend Marathon",
		Description:         "Watch 5 different movies within a week of joining",
		Type:                ChallengeWatchXMovies,
		TargetCount:         5,
		DurationForUserDays: intPtr(7),
		PointsReward:        300,
	},
	{
		Title:               "Episode Sprint",
		Description:         "Watch 20 episodes within two weeks of joining",
		Type:                ChallengeWatchXEpisodes,
		TargetCount:         20,
		DurationForUserDays: intPtr(14),
		PointsReward:        500,
	},
	{
		Title:        "Page Turner",
		Description:  "Read chapters from 3 different comics",
		Type:         ChallengeReadXComics,
		TargetCount:  3,
		PointsReward: 150,
	},
	{
		Title:               "Fourteen Days Strong",
		Description:         "Keep a 14-day check-in streak",
		Type:                ChallengeDailyLoginStreak,
		TargetCount:         14,
		DurationForUserDays: intPtr(30),
		PointsReward:        400,
	},
}

func intPtr(v int) *int { return &v }

// HasDetail reports whether the dedup ledger already contains key.
func (p *UserChallengeProgress) HasDetail(key string) bool {
	for _, d := range p.ProgressDetails {
		if d == key {
			return true
		}
	}
	return false
}
