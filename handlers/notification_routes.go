package handlers

import (
	"media-stream-system/middleware"
	"media-stream-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupNotificationRoutes wires the notification reads and the SSE stream.
// The stream sits outside the /s/ group because EventSource authenticates via
// query params instead of gateway headers.
func SetupNotificationRoutes(app *fiber.App, notifications *services.NotificationService) {
	secured := app.Group("/s/user/notifications", middleware.UserContextMiddleware())

	secured.Get("/", notifications.GetUserNotifications)
	secured.Get("/count", notifications.GetUnreadCount)
	secured.Patch("/:id/read", notifications.MarkAsRead)
	secured.Post("/read-all", notifications.MarkAllAsRead)

	app.Get("/user/notifications/stream", middleware.SSEAuthMiddleware(), notifications.StreamNotificationsSSE)
}
