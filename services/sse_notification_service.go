package services

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"media-stream-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// NotificationService serves the notification CRUD reads plus the SSE stream.
// Realtime pushes come from the in-process hub; the DB backlog covers
// whatever happened while the client was disconnected.
type NotificationService struct {
	DB  *gorm.DB
	Hub *NotificationHub
}

func NewNotificationService(db *gorm.DB, hub *NotificationHub) *NotificationService {
	return &NotificationService{DB: db, Hub: hub}
}

// GetUserNotifications lists the authenticated user's notifications, newest
// first. Filters: ?unread=true, ?limit=N.
func (s *NotificationService) GetUserNotifications(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := s.DB.Where("recipient_id = ?", userID)
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error; err != nil {
		log.Printf("DB Error fetching notifications: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch notifications"})
	}

	return c.JSON(notifications)
}

// GetUnreadCount is cheap enough to poll as an SSE fallback.
func (s *NotificationService) GetUnreadCount(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var count int64
	if err := s.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		log.Printf("DB Error counting notifications: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error counting notifications"})
	}

	return c.JSON(fiber.Map{"unread_count": count})
}

// MarkAsRead flips a single notification (idempotent).
func (s *NotificationService) MarkAsRead(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	id := c.Params("id")

	var n models.Notification
	if err := s.DB.Where("id = ? AND recipient_id = ?", id, userID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if !n.IsRead {
		if err := s.DB.Model(&n).Update("is_read", true).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to mark as read"})
		}
	}

	return c.JSON(fiber.Map{"message": "OK", "id": n.ID, "is_read": true})
}

// MarkAllAsRead flips everything unread for the user.
func (s *NotificationService) MarkAllAsRead(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	result := s.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notifications"})
	}

	return c.JSON(fiber.Map{"message": "OK", "marked_count": result.RowsAffected})
}

// StreamNotificationsSSE streams realtime notifications for the authenticated
// user: unread backlog first, then live hub pushes, with a periodic keepalive
// comment so proxies don't cut the connection.
func (s *NotificationService) StreamNotificationsSSE(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	// SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	ch, cancel := s.Hub.Subscribe(userID)
	ctx := c.Context()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		// Backlog: unread notifications missed while disconnected.
		var backlog []models.Notification
		if err := s.DB.
			Where("recipient_id = ? AND is_read = ?", userID, false).
			Order("created_at ASC").
			Limit(100).
			Find(&backlog).Error; err != nil {
			log.Printf("SSE backlog error for user %d: %v", userID, err)
		}
		for _, n := range backlog {
			writeSSE(w, n)
		}

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		keepalive := time.NewTicker(15 * time.Second)
		defer keepalive.Stop()

		for {
			select {
			case n, ok := <-ch:
				if !ok {
					return
				}
				writeSSE(w, n)
				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}

			case <-keepalive.C:
				w.WriteString(":\n\n")
				if err := w.Flush(); err != nil {
					return
				}

			case <-ctx.Done():
				// Client closed connection
				return
			}
		}
	})

	return nil
}

func writeSSE(w *bufio.Writer, n models.Notification) {
	payload, _ := json.Marshal(n)
	fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload)
}
