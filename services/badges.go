package services

import (
	"fmt"
	"log"

	"media-stream-system/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BadgeService evaluates badge definitions against user statistics and awards
// the ones whose threshold is met. Awards are exactly-once per (user, badge),
// enforced by the earned-badge unique index.
type BadgeService struct {
	DB *gorm.DB
}

func NewBadgeService(db *gorm.DB) *BadgeService {
	return &BadgeService{DB: db}
}

// criteriaEvents maps each criteria type to the single event tag that can
// change its statistic. Evaluating a statistic on any other event is
// disallowed — several of them are full-table scans.
var criteriaEvents = map[models.BadgeCriteria]string{
	models.CriteriaPoints:           models.EventPointsUpdated,
	models.CriteriaLevel:            models.EventPointsUpdated,
	models.CriteriaLogins:           models.EventDailyCheckIn,
	models.CriteriaCheckInStreak:    models.EventDailyCheckIn,
	models.CriteriaComments:         models.EventNewComment,
	models.CriteriaRatingsCount:     models.EventNewRating,
	models.CriteriaEpisodesWatched:  models.EventEpisodeWatched,
	models.CriteriaMoviesWatched:    models.EventEpisodeWatched,
	models.CriteriaLateNightWatcher: models.EventEpisodeWatched,
	models.CriteriaGenreExplorer:    models.EventEpisodeWatched,
	models.CriteriaWatchlistCount:   models.EventWatchlistUpdated,
	models.CriteriaOther:            models.EventUserRegistered,
}

// EvaluateBadges checks every badge the user has not earned yet against the
// event and returns the IDs of the ones newly awarded. Already-earned badges
// are skipped unconditionally; re-evaluation never re-awards.
func (s *BadgeService) EvaluateBadges(tx *gorm.DB, userID uint, event models.ActionEvent, batch *NotificationBatch) ([]uint, error) {
	var defs []models.BadgeDefinition
	if err := tx.
		Where("id NOT IN (?)", tx.Model(&models.EarnedBadge{}).Select("badge_id").Where("user_id = ?", userID)).
		Find(&defs).Error; err != nil {
		return nil, err
	}

	var awarded []uint
	for i := range defs {
		def := &defs[i]
		if criteriaEvents[def.CriteriaType] != event.Type() {
			continue
		}

		met, err := s.criteriaMet(tx, userID, def, event)
		if err != nil {
			return nil, err
		}
		if !met {
			continue
		}

		ok, err := s.Award(tx, userID, def, batch)
		if err != nil {
			return nil, err
		}
		if ok {
			awarded = append(awarded, def.ID)
		}
	}
	return awarded, nil
}

// Award inserts the earned-badge row idempotently. A lost race (row already
// there) is a silent no-op: no error, no notification, ok=false.
func (s *BadgeService) Award(tx *gorm.DB, userID uint, def *models.BadgeDefinition, batch *NotificationBatch) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.EarnedBadge{UserID: userID, BadgeID: def.ID})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	n := models.Notification{
		RecipientID: userID,
		Type:        models.NotificationNewBadge,
		Message:     fmt.Sprintf("You earned the %q badge!", def.Name),
		Link:        "/badges/" + slug.Make(def.Name),
		IconURL:     def.IconURL,
	}
	if err := batch.Create(tx, n); err != nil {
		return false, err
	}

	log.Printf("🎖️ Badge awarded: %s → user %d", def.Name, userID)
	return true, nil
}

func (s *BadgeService) criteriaMet(tx *gorm.DB, userID uint, def *models.BadgeDefinition, event models.ActionEvent) (bool, error) {
	// "other" is the escape hatch: early-adopter badges compare the user's
	// sequential ID against the threshold instead of a counted statistic.
	if def.CriteriaType == models.CriteriaOther {
		return int64(userID) <= def.CriteriaValue, nil
	}

	stat, err := s.statistic(tx, userID, def.CriteriaType, event)
	if err != nil {
		return false, err
	}
	return stat >= def.CriteriaValue, nil
}

// statistic computes the user statistic backing one criteria type. Callers
// have already established that the event is relevant to the criteria.
func (s *BadgeService) statistic(tx *gorm.DB, userID uint, criteria models.BadgeCriteria, event models.ActionEvent) (int64, error) {
	switch criteria {
	case models.CriteriaPoints, models.CriteriaLevel:
		var prog models.UserProgress
		if err := tx.Where("user_id = ?", userID).First(&prog).Error; err != nil {
			return 0, err
		}
		if criteria == models.CriteriaPoints {
			return prog.Points, nil
		}
		return int64(prog.Level), nil

	case models.CriteriaCheckInStreak:
		ev, ok := event.(models.DailyCheckIn)
		if !ok {
			return 0, nil
		}
		return int64(ev.CurrentStreak), nil

	case models.CriteriaLogins:
		var count int64
		err := tx.Model(&models.CheckIn{}).Where("user_id = ?", userID).Count(&count).Error
		return count, err

	case models.CriteriaComments:
		var count int64
		err := tx.Model(&models.Comment{}).
			Where("user_id = ? AND parent_id IS NULL", userID).
			Count(&count).Error
		return count, err

	case models.CriteriaRatingsCount:
		var count int64
		err := tx.Model(&models.Rating{}).Where("user_id = ?", userID).Count(&count).Error
		return count, err

	case models.CriteriaEpisodesWatched:
		var count int64
		err := tx.Model(&models.WatchHistory{}).
			Where("user_id = ?", userID).
			Distinct("episode_id").
			Count(&count).Error
		return count, err

	case models.CriteriaMoviesWatched:
		var count int64
		err := tx.Raw(`
			SELECT COUNT(DISTINCT e.movie_id)
			FROM watch_histories wh
			INNER JOIN episodes e ON e.id = wh.episode_id
			WHERE wh.user_id = ?`, userID).Scan(&count).Error
		return count, err

	case models.CriteriaGenreExplorer:
		var count int64
		err := tx.Raw(`
			SELECT COUNT(DISTINCT mg.genre_id)
			FROM watch_histories wh
			INNER JOIN episodes e ON e.id = wh.episode_id
			INNER JOIN movie_genres mg ON mg.movie_id = e.movie_id
			WHERE wh.user_id = ?`, userID).Scan(&count).Error
		return count, err

	case models.CriteriaLateNightWatcher:
		return s.lateNightDays(tx, userID)

	case models.CriteriaWatchlistCount:
		var count int64
		err := tx.Model(&models.Collection{}).Where("user_id = ?", userID).Count(&count).Error
		return count, err
	}

	return 0, nil
}

// lateNightDays counts distinct calendar dates with a watch between midnight
// and 06:00 local time. Date extraction happens in Go so the query stays
// portable across stores.
func (s *BadgeService) lateNightDays(tx *gorm.DB, userID uint) (int64, error) {
	var rows []models.WatchHistory
	if err := tx.Select("watched_at").Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return 0, err
	}

	days := make(map[string]struct{})
	for _, r := range rows {
		local := r.WatchedAt.Local()
		if local.Hour() < 6 {
			days[local.Format("2006-01-02")] = struct{}{}
		}
	}
	return int64(len(days)), nil
}
