package handlers

import (
	"errors"
	"strconv"

	"media-stream-system/middleware"
	"media-stream-system/models"
	"media-stream-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupProgressionRoutes exposes the read side of the progression engine plus
// challenge enrollment and the admin points grant.
func SetupProgressionRoutes(app *fiber.App, db *gorm.DB, points *services.PointsService, challenges *services.ChallengeService, sink services.NotificationSink) {
	secured := app.Group("/s/user", middleware.UserContextMiddleware())

	secured.Get("/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(uint)

		prog, err := points.EnsureProgressRecord(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progress",
				"cause": err.Error(),
			})
		}

		var earnedCount int64
		if err := db.Model(&models.EarnedBadge{}).Where("user_id = ?", userID).Count(&earnedCount).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count badges"})
		}

		response := fiber.Map{
			"id":               prog.ID,
			"points":           prog.Points,
			"level":            prog.Level,
			"badges_earned":    earnedCount,
			"last_level_up_at": prog.LastLevelUpAt,
		}
		if next := models.NextThreshold(prog.Level); next != nil {
			response["next_level"] = next.Level
			response["next_level_points"] = next.MinPoints
			response["points_to_next_level"] = next.MinPoints - prog.Points
		}

		return c.JSON(response)
	})

	secured.Get("/badges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(uint)

		type earnedRow struct {
			models.EarnedBadge
			Code        string `json:"code"`
			Name        string `json:"name"`
			Description string `json:"description"`
			IconURL     string `json:"icon_url"`
			Rarity      string `json:"rarity"`
		}
		var rows []earnedRow
		if err := db.Raw(`
			SELECT eb.id, eb.user_id, eb.badge_id, eb.earned_at,
			       bd.code, bd.name, bd.description, bd.icon_url, bd.rarity
			FROM earned_badges eb
			INNER JOIN badge_definitions bd ON bd.id = eb.badge_id
			WHERE eb.user_id = ?
			ORDER BY eb.earned_at DESC
		`, userID).Scan(&rows).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get badges",
				"cause": err.Error(),
			})
		}

		return c.JSON(rows)
	})

	secured.Get("/challenges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(uint)

		var rows []models.UserChallengeProgress
		if err := db.Preload("Challenge").
			Where("user_id = ?", userID).
			Order("started_at DESC").
			Find(&rows).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get challenges",
				"cause": err.Error(),
			})
		}

		return c.JSON(rows)
	})

	challengeGroup := app.Group("/s/challenges", middleware.UserContextMiddleware())

	challengeGroup.Get("/", func(c *fiber.Ctx) error {
		var defs []models.ChallengeDefinition
		if err := db.Where("is_active = ?", true).Find(&defs).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list challenges"})
		}
		return c.JSON(defs)
	})

	challengeGroup.Post("/:id/enroll", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(uint)

		id, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid challenge ID"})
		}

		progress, err := challenges.Enroll(userID, uint(id))
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Challenge not found"})
			}
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}

		return c.Status(fiber.StatusCreated).JSON(progress)
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/points/grant", func(c *fiber.Ctx) error {
		type Req struct {
			UserID uint  `json:"user_id" validate:"required"`
			Points int64 `json:"points" validate:"required,min=1"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		batch := &services.NotificationBatch{}
		var result *services.LevelResult
		err := db.Transaction(func(tx *gorm.DB) error {
			var txErr error
			result, txErr = points.AwardPoints(tx, req.UserID, req.Points, batch)
			return txErr
		})
		if err != nil {
			if errors.Is(err, services.ErrInvalidAmount) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			if errors.Is(err, services.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "points award failed",
				"cause": err.Error(),
			})
		}
		batch.Flush(sink)

		return c.JSON(fiber.Map{
			"message": "Points granted successfully",
			"user_id": req.UserID,
			"result":  result,
		})
	})
}
