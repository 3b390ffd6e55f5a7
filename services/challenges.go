package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"media-stream-system/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// ChallengeService advances every in-progress enrollment of a user when an
// action event arrives. It owns the IN_PROGRESS → COMPLETED/FAILED state
// machine and the per-item dedup ledger; terminal rows are never touched
// again.
//
// Reward distribution calls the points and badge services as leaf operations
// only — challenge advancement is never re-entered from inside a reward, which
// bounds the recursion by construction.
type ChallengeService struct {
	DB         *gorm.DB
	Points     *PointsService
	Badges     *BadgeService
	Shop       *ShopService
	Completion *CompletionService
}

func NewChallengeService(db *gorm.DB, points *PointsService, badges *BadgeService, shop *ShopService, completion *CompletionService) *ChallengeService {
	return &ChallengeService{DB: db, Points: points, Badges: badges, Shop: shop, Completion: completion}
}

// Enroll creates the IN_PROGRESS row the engine mutates. Enrolling twice in
// the same challenge, or into an inactive/expired one, is rejected.
func (s *ChallengeService) Enroll(userID, challengeID uint) (*models.UserChallengeProgress, error) {
	var def models.ChallengeDefinition
	if err := s.DB.First(&def, challengeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("challenge %d: %w", challengeID, ErrNotFound)
		}
		return nil, err
	}
	if !def.IsActive || (def.EndDate != nil && time.Now().After(*def.EndDate)) {
		return nil, fmt.Errorf("challenge %d is not open for enrollment", challengeID)
	}

	var existing models.UserChallengeProgress
	err := s.DB.Where("user_id = ? AND challenge_id = ?", userID, challengeID).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("already enrolled in challenge %d", challengeID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	progress := models.UserChallengeProgress{
		UserID:      userID,
		ChallengeID: challengeID,
		Status:      models.ChallengeInProgress,
		StartedAt:   time.Now(),
	}
	if err := s.DB.Create(&progress).Error; err != nil {
		return nil, err
	}
	progress.Challenge = def
	return &progress, nil
}

// AdvanceChallenges applies one action event to every IN_PROGRESS enrollment
// of the user and returns the challenge IDs newly completed. Expiry is
// checked before the event is applied: an overdue enrollment fails without
// partial credit beyond what was already recorded.
func (s *ChallengeService) AdvanceChallenges(tx *gorm.DB, userID uint, event models.ActionEvent, batch *NotificationBatch) ([]uint, error) {
	var rows []models.UserChallengeProgress
	if err := lockForUpdate(tx).Preload("Challenge").
		Where("user_id = ? AND status = ?", userID, models.ChallengeInProgress).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	var completed []uint

	for i := range rows {
		row := &rows[i]
		def := row.Challenge

		if expired(row, &def, now) {
			row.Status = models.ChallengeFailed
			if err := tx.Save(row).Error; err != nil {
				return nil, err
			}
			log.Printf("⏰ Challenge expired: %q → user %d", def.Title, userID)
			continue
		}

		relevant, dedupKey := relevance(&def, event)
		if !relevant {
			continue
		}

		credits, err := s.watchCredits(tx, userID, &def, event)
		if err != nil {
			return nil, err
		}
		if !credits {
			continue
		}

		if def.Type == models.ChallengeDailyLoginStreak {
			// Streak challenges track the payload streak directly; the count
			// is set, not incremented, and never allowed to regress.
			streak := event.(models.DailyCheckIn).CurrentStreak
			if streak <= row.CurrentCount {
				continue
			}
			row.CurrentCount = streak
		} else {
			if row.HasDetail(dedupKey) {
				continue // item already counted, strict exactly-once credit
			}
			row.ProgressDetails = append(row.ProgressDetails, dedupKey)
			row.CurrentCount = len(row.ProgressDetails)
		}

		if row.CurrentCount >= def.TargetCount {
			row.Status = models.ChallengeCompleted
			completedAt := now
			row.CompletedAt = &completedAt

			granted, err := s.distributeRewards(tx, userID, &def, batch)
			if err != nil {
				return nil, err
			}
			// A challenge whose rewards were all already owned stays silent.
			if granted {
				n := models.Notification{
					RecipientID: userID,
					Type:        models.NotificationChallengeCompleted,
					Message:     fmt.Sprintf("Challenge complete: %s!", def.Title),
					Link:        "/challenges/" + slug.Make(def.Title),
				}
				if err := batch.Create(tx, n); err != nil {
					return nil, err
				}
			}
			completed = append(completed, def.ID)
			log.Printf("🏁 Challenge completed: %q → user %d", def.Title, userID)
		}

		if err := tx.Save(row).Error; err != nil {
			return nil, err
		}
	}

	return completed, nil
}

// distributeRewards hands out the definition's rewards and reports whether at
// least one of them was newly granted. Points always count as newly granted;
// the badge and shop item paths are idempotent and may turn out to be no-ops.
func (s *ChallengeService) distributeRewards(tx *gorm.DB, userID uint, def *models.ChallengeDefinition, batch *NotificationBatch) (bool, error) {
	granted := false

	if def.PointsReward > 0 {
		if _, err := s.Points.AwardPoints(tx, userID, def.PointsReward, batch); err != nil {
			return false, err
		}
		granted = true
	}

	if def.BadgeIDReward != nil {
		var badge models.BadgeDefinition
		if err := tx.First(&badge, *def.BadgeIDReward).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, fmt.Errorf("reward badge %d: %w", *def.BadgeIDReward, ErrNotFound)
			}
			return false, err
		}
		ok, err := s.Badges.Award(tx, userID, &badge, batch)
		if err != nil {
			return false, err
		}
		granted = granted || ok
	}

	if def.ShopItemIDReward != nil {
		ok, err := s.Shop.GrantItem(tx, userID, *def.ShopItemIDReward, 1, nil)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrRewardGrant, err)
		}
		granted = granted || ok
	}

	return granted, nil
}

// MarkExpired sweeps every IN_PROGRESS enrollment whose per-user window or
// global end date has passed. Run periodically so idle users' challenges also
// expire, not only on their next event.
func (s *ChallengeService) MarkExpired() (int, error) {
	var rows []models.UserChallengeProgress
	if err := s.DB.Preload("Challenge").
		Where("status = ?", models.ChallengeInProgress).
		Find(&rows).Error; err != nil {
		return 0, err
	}

	now := time.Now()
	failed := 0
	for i := range rows {
		row := &rows[i]
		if !expired(row, &row.Challenge, now) {
			continue
		}
		row.Status = models.ChallengeFailed
		if err := s.DB.Save(row).Error; err != nil {
			return failed, err
		}
		failed++
	}
	return failed, nil
}

// watchCredits gates watch-type challenge credit on the completion oracle: a
// partial view earns nothing until the episode (or, for movie-based types, the
// whole movie) crosses the completion threshold. Non-watch events pass
// through.
func (s *ChallengeService) watchCredits(tx *gorm.DB, userID uint, def *models.ChallengeDefinition, event models.ActionEvent) (bool, error) {
	e, ok := event.(models.EpisodeWatched)
	if !ok {
		return true, nil
	}

	switch def.Type {
	case models.ChallengeWatchXEpisodes:
		return s.Completion.episodeComplete(tx, userID, e.EpisodeID)
	case models.ChallengeWatchXMovies, models.ChallengeWatchGenreMovies:
		return s.Completion.movieComplete(tx, userID, e.MovieID)
	}
	return true, nil
}

func expired(row *models.UserChallengeProgress, def *models.ChallengeDefinition, now time.Time) bool {
	if def.DurationForUserDays != nil && now.After(row.StartedAt.AddDate(0, 0, *def.DurationForUserDays)) {
		return true
	}
	if def.EndDate != nil && now.After(*def.EndDate) {
		return true
	}
	return false
}

// relevance decides whether the event advances a challenge of this type and,
// for item-based types, which dedup key identifies the credited item.
func relevance(def *models.ChallengeDefinition, event models.ActionEvent) (bool, string) {
	switch def.Type {
	case models.ChallengeWatchXMovies:
		if e, ok := event.(models.EpisodeWatched); ok {
			return true, fmt.Sprintf("movie_%d", e.MovieID)
		}

	case models.ChallengeWatchXEpisodes:
		if e, ok := event.(models.EpisodeWatched); ok {
			return true, fmt.Sprintf("episode_%d", e.EpisodeID)
		}

	case models.ChallengeWatchGenreMovies:
		if e, ok := event.(models.EpisodeWatched); ok && genresIntersect(e.GenreIDs, def.GenreIDs) {
			return true, fmt.Sprintf("movie_%d", e.MovieID)
		}

	case models.ChallengeReadXComics:
		if e, ok := event.(models.ChapterRead); ok {
			return true, fmt.Sprintf("comic_%d", e.ComicID)
		}

	case models.ChallengeReadXChapters:
		if e, ok := event.(models.ChapterRead); ok {
			return true, fmt.Sprintf("chapter_%d", e.ChapterID)
		}

	case models.ChallengeRateXItems:
		if e, ok := event.(models.RatingSubmitted); ok {
			return true, fmt.Sprintf("rating_%s_%d", e.ItemType, e.ItemID)
		}

	case models.ChallengeDailyLoginStreak:
		if _, ok := event.(models.DailyCheckIn); ok {
			return true, ""
		}
	}
	return false, ""
}

func genresIntersect(a, b []uint) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
