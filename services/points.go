package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"media-stream-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate takes a row lock on the acting user's progress rows so two
// concurrent dispatches serialize their read-modify-write instead of losing
// one update. SQLite has a single writer and rejects FOR UPDATE, so the test
// driver skips the clause.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// LevelResult reports the outcome of a points award.
type LevelResult struct {
	NewPoints int64 `json:"new_points"`
	NewLevel  int   `json:"new_level"`
	LeveledUp bool  `json:"leveled_up"`
}

// PointsService owns UserProgress. Points only ever increase through it, and
// the level is always recomputed from the static threshold table.
type PointsService struct {
	DB     *gorm.DB
	Shop   *ShopService
	Badges *BadgeService
}

func NewPointsService(db *gorm.DB, shop *ShopService, badges *BadgeService) *PointsService {
	return &PointsService{DB: db, Shop: shop, Badges: badges}
}

// EnsureProgressRecord ensures a UserProgress row exists (idempotent)
func (s *PointsService) EnsureProgressRecord(userID uint) (*models.UserProgress, error) {
	var prog models.UserProgress
	err := s.DB.Where("user_id = ?", userID).First(&prog).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		prog = models.UserProgress{UserID: userID, Points: 0, Level: 1}
		if err := s.DB.Create(&prog).Error; err != nil {
			return nil, err
		}
		return &prog, nil
	}
	if err != nil {
		return nil, err
	}
	return &prog, nil
}

// AwardPoints adds points on the given transaction and recomputes the level.
// A single large award can jump several levels; only the final level is
// recorded and notified. On level-up it auto-grants cosmetics and creates a
// LEVEL_UP notification, then always re-evaluates points/level badges.
//
// The service performs no de-duplication of repeated calls — the action
// dispatcher owns supplying each amount exactly once.
func (s *PointsService) AwardPoints(tx *gorm.DB, userID uint, amount int64, batch *NotificationBatch) (*LevelResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("award of %d: %w", amount, ErrInvalidAmount)
	}

	var prog models.UserProgress
	if err := lockForUpdate(tx).Where("user_id = ?", userID).First(&prog).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("progress record for user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	prog.Points += amount
	newLevel := models.LevelForPoints(prog.Points)
	leveledUp := newLevel > prog.Level
	if leveledUp {
		prog.Level = newLevel
		now := time.Now()
		prog.LastLevelUpAt = &now
	}

	if err := tx.Save(&prog).Error; err != nil {
		return nil, err
	}

	if leveledUp {
		if err := s.Shop.GrantLevelCosmetics(tx, userID, newLevel); err != nil {
			return nil, err
		}
		n := models.Notification{
			RecipientID: userID,
			Type:        models.NotificationLevelUp,
			Message:     fmt.Sprintf("You reached level %d! 🎉", newLevel),
			Link:        "/profile/progression",
		}
		if err := batch.Create(tx, n); err != nil {
			return nil, err
		}
		log.Printf("🎮 Level up: user %d → level %d (points=%d)", userID, newLevel, prog.Points)
	}

	// Points and level badges depend on this award.
	if _, err := s.Badges.EvaluateBadges(tx, userID, models.PointsUpdated{UserID: userID}, batch); err != nil {
		return nil, err
	}

	return &LevelResult{NewPoints: prog.Points, NewLevel: prog.Level, LeveledUp: leveledUp}, nil
}
