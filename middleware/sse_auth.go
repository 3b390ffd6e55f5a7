package middleware

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SSEAuthMiddleware authenticates the notification stream. EventSource cannot
// set headers, so the gateway appends `token` and `user_id` as query params
// instead of the usual Authorization / X-User-ID pair.
//
// Usage:
//
//	app.Get("/user/notifications/stream", middleware.SSEAuthMiddleware(), notificationService.StreamNotificationsSSE)
func SSEAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("MEDIA_SERVICE_TOKEN")
	if expectedToken == "" {
		log.Fatal("❌ MEDIA_SERVICE_TOKEN is not set — service cannot authenticate SSE clients")
	}

	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(c.Query("token"))
		rawID := strings.TrimSpace(c.Query("user_id"))

		if token == "" || rawID == "" {
			log.Printf("[SSEAuth] ❌ Missing query params on %s", c.Path())
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing token or user_id in query",
			})
		}

		if token != expectedToken {
			log.Printf("[SSEAuth] ❌ Invalid token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		parsed, err := strconv.ParseUint(rawID, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "malformed user_id",
			})
		}

		c.Locals("user_id", uint(parsed))
		return c.Next()
	}
}
