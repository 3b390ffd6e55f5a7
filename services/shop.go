package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"media-stream-system/models"

	"gorm.io/gorm"
)

// ShopService is the reward-granting collaborator. The purchase flow lives in
// another service; the progression engine only needs GrantItem and the
// level-up cosmetic auto-grants.
type ShopService struct {
	DB *gorm.DB
}

func NewShopService(db *gorm.DB) *ShopService {
	return &ShopService{DB: db}
}

// GrantItem puts an item into the user's inventory on the given transaction.
// Consumables stack their quantity; any other item type is granted at most
// once, and a repeat grant reports granted=false without error.
func (s *ShopService) GrantItem(tx *gorm.DB, userID, itemID uint, quantity int, expiresAt *time.Time) (bool, error) {
	if quantity <= 0 {
		quantity = 1
	}

	var item models.ShopItem
	if err := tx.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("shop item %d: %w", itemID, ErrNotFound)
		}
		return false, err
	}

	var inv models.UserInventory
	err := tx.Where("user_id = ? AND item_id = ?", userID, itemID).First(&inv).Error
	switch {
	case err == nil:
		if item.Type != models.ShopItemConsumable {
			return false, nil // already owned
		}
		inv.Quantity += quantity
		if expiresAt != nil {
			inv.ExpiresAt = expiresAt
		}
		if err := tx.Save(&inv).Error; err != nil {
			return false, err
		}
		return true, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		inv = models.UserInventory{
			UserID:    userID,
			ItemID:    itemID,
			Quantity:  quantity,
			ExpiresAt: expiresAt,
		}
		if err := tx.Create(&inv).Error; err != nil {
			return false, err
		}
		log.Printf("🎁 Item granted: %s → user %d (x%d)", item.Name, userID, quantity)
		return true, nil

	default:
		return false, err
	}
}

// GrantLevelCosmetics hands out every shop item unlocked exactly at the given
// level. Called by the points service after a level-up.
func (s *ShopService) GrantLevelCosmetics(tx *gorm.DB, userID uint, level int) error {
	var items []models.ShopItem
	if err := tx.Where("unlock_level = ?", level).Find(&items).Error; err != nil {
		return err
	}
	for _, item := range items {
		if _, err := s.GrantItem(tx, userID, item.ID, 1, nil); err != nil {
			return fmt.Errorf("level %d cosmetic %q: %w", level, item.Name, err)
		}
	}
	return nil
}
