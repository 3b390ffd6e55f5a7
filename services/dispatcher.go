package services

import (
	"log"

	"media-stream-system/models"

	"gorm.io/gorm"
)

// basePoints is how much each action is worth before any challenge rewards.
// Tunable the same way the level table is: in code, not per deployment.
var basePoints = map[string]int64{
	models.EventEpisodeWatched:   10,
	models.EventChapterRead:      8,
	models.EventNewComment:       5,
	models.EventNewRating:        5,
	models.EventDailyCheckIn:     10,
	models.EventWatchlistUpdated: 2,
	models.EventUserRegistered:   50,
}

// ActionDispatcher is the single entry point the CRUD handlers call after a
// domain write. One Dispatch call is one transaction spanning the points
// award, badge evaluation and challenge advancement, in that order; any error
// rolls the whole unit back (strict policy). Notifications created along the
// way are pushed to the sink only after the commit, fire-and-forget.
type ActionDispatcher struct {
	DB         *gorm.DB
	Points     *PointsService
	Badges     *BadgeService
	Challenges *ChallengeService
	Sink       NotificationSink
}

func NewActionDispatcher(db *gorm.DB, points *PointsService, badges *BadgeService, challenges *ChallengeService, sink NotificationSink) *ActionDispatcher {
	return &ActionDispatcher{
		DB:         db,
		Points:     points,
		Badges:     badges,
		Challenges: challenges,
		Sink:       sink,
	}
}

// Dispatch consumes one action event.
func (d *ActionDispatcher) Dispatch(event models.ActionEvent) error {
	batch := &NotificationBatch{}

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		if pts := basePoints[event.Type()]; pts > 0 {
			if _, err := d.Points.AwardPoints(tx, event.User(), pts, batch); err != nil {
				return err
			}
		}

		if _, err := d.Badges.EvaluateBadges(tx, event.User(), event, batch); err != nil {
			return err
		}

		if _, err := d.Challenges.AdvanceChallenges(tx, event.User(), event, batch); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		log.Printf("❌ [DISPATCH] %s for user %d rolled back: %v", event.Type(), event.User(), err)
		return err
	}

	batch.Flush(d.Sink)
	return nil
}
