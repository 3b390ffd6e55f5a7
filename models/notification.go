package models

import (
	"time"

	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationLevelUp            NotificationType = "LEVEL_UP"
	NotificationNewBadge           NotificationType = "NEW_BADGE"
	NotificationChallengeCompleted NotificationType = "CHALLENGE_COMPLETED"
)

// Notification rows are created by the progression engine inside the action
// transaction and are immutable afterwards; read/unread toggling is plain CRUD
// on IsRead. Realtime delivery happens post-commit via the notification hub.
type Notification struct {
	ID          string           `gorm:"primaryKey;type:uuid" json:"id"`
	RecipientID uint             `gorm:"index;not null" json:"recipient_id"`
	SenderID    *uint            `json:"sender_id,omitempty"`
	Type        NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Message     string           `gorm:"type:text" json:"message"`
	Link        string           `gorm:"type:text" json:"link"`
	IconURL     string           `gorm:"type:text" json:"icon_url,omitempty"`
	IsRead      bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}
