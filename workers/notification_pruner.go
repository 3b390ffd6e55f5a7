package workers

import (
	"context"
	"log"
	"time"

	"media-stream-system/models"

	"gorm.io/gorm"
)

// PruneNotifications periodically deletes read notifications older than the
// retention window. Unread ones are kept regardless of age — the user has not
// seen them yet.
func PruneNotifications(ctx context.Context, db *gorm.DB, interval, retention time.Duration) {
	log.Println("Starting notification pruning...")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Notification pruning stopped.")
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-retention)

			result := db.Unscoped().
				Where("is_read = ? AND created_at < ?", true, cutoff).
				Delete(&models.Notification{})
			if result.Error != nil {
				log.Printf("❌ Failed to prune notifications: %v", result.Error)
				continue
			}

			if result.RowsAffected > 0 {
				log.Printf("🧹 Pruned %d read notification(s) older than %s", result.RowsAffected, retention)
			}
		}
	}
}
