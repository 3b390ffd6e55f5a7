package models

import "time"

// ShopItemType: consumables stack in the inventory, everything else is
// granted at most once per user.
type ShopItemType string

const (
	ShopItemConsumable  ShopItemType = "consumable"
	ShopItemAvatarFrame ShopItemType = "avatar_frame"
	ShopItemTheme       ShopItemType = "theme"
	ShopItemSticker     ShopItemType = "sticker"
)

type ShopItem struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"not null" json:"name"`
	Type        ShopItemType `gorm:"type:varchar(16);not null" json:"type"`
	IconURL     string       `gorm:"type:text" json:"icon_url"`
	Price       int64        `json:"price"`
	UnlockLevel *int         `json:"unlock_level,omitempty"` // auto-granted when a user reaches this level

	Timestamps
}

type UserInventory struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_inventory_user_item" json:"user_id"`
	ItemID     uint       `gorm:"not null;uniqueIndex:idx_inventory_user_item" json:"item_id"`
	Quantity   int        `gorm:"default:1" json:"quantity"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	AcquiredAt time.Time  `gorm:"autoCreateTime" json:"acquired_at"`

	Item ShopItem `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}
