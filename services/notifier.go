package services

import (
	"log"
	"sync"

	"media-stream-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationSink receives committed notifications for realtime delivery.
// Delivery is best-effort: an unreachable recipient is logged and dropped,
// never retried, and never rolls anything back.
type NotificationSink interface {
	Push(n models.Notification)
}

// NotificationBatch collects notifications created during one progression
// transaction so they reach the sink only after commit. If the transaction
// rolls back the batch is simply discarded.
type NotificationBatch struct {
	items []models.Notification
}

// Create persists the notification on the given transaction and queues it for
// post-commit delivery.
func (b *NotificationBatch) Create(tx *gorm.DB, n models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if err := tx.Create(&n).Error; err != nil {
		return err
	}
	b.items = append(b.items, n)
	return nil
}

// Flush pushes every collected notification to the sink. Call only after the
// owning transaction committed.
func (b *NotificationBatch) Flush(sink NotificationSink) {
	if sink == nil {
		return
	}
	for _, n := range b.items {
		sink.Push(n)
	}
	b.items = nil
}

// NotificationHub is the in-process sink: SSE connections subscribe to a
// per-user channel, Push fans out without blocking. A full subscriber buffer
// means the client is not keeping up; the update is dropped (it is still in
// the DB and shows up on the next backlog read).
type NotificationHub struct {
	mu   sync.RWMutex
	subs map[uint][]chan models.Notification
}

func NewNotificationHub() *NotificationHub {
	return &NotificationHub{subs: make(map[uint][]chan models.Notification)}
}

// Subscribe registers a listener for one recipient. The returned cancel func
// must be called when the connection goes away.
func (h *NotificationHub) Subscribe(userID uint) (<-chan models.Notification, func()) {
	ch := make(chan models.Notification, 16)

	h.mu.Lock()
	h.subs[userID] = append(h.subs[userID], ch)
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		chans := h.subs[userID]
		for i, c := range chans {
			if c == ch {
				h.subs[userID] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
		if len(h.subs[userID]) == 0 {
			delete(h.subs, userID)
		}
		close(ch)
	}
	return ch, cancel
}

func (h *NotificationHub) Push(n models.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[n.RecipientID] {
		select {
		case ch <- n:
		default:
			log.Printf("⚠️ [NOTIFY] Dropping %s notification for slow subscriber (user %d)", n.Type, n.RecipientID)
		}
	}
}
