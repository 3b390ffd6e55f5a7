package handlers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"media-stream-system/middleware"
	"media-stream-system/models"
	"media-stream-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SetupActivityRoutes wires the CRUD-side activity writes. Each handler does
// the thin domain write, then hands the action event to the dispatcher; all
// progression side effects happen there.
func SetupActivityRoutes(app *fiber.App, db *gorm.DB, dispatcher *services.ActionDispatcher, points *services.PointsService, completion *services.CompletionService) {
	secured := app.Group("/s/activity", middleware.UserContextMiddleware())

	secured.Post("/watch", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(uint)

		var req struct {
			EpisodeID       uint `json:"episode_id" validate:"required"`
			WatchedDuration int  `json:"watched_duration" validate:"min=0"` // seconds
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		var episode models.Episode
		if err := db.First(&episode, req.EpisodeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Episode not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}

		var movie models.Movie
		if err := db.Preload("Genres").First(&movie, episode.MovieID).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error loading movie"})
		}

		now := time.Now()
		history := models.WatchHistory{
			UserID:          userID,
			EpisodeID:       episode.ID,
			WatchedDuration: req.WatchedDuration,
			WatchedAt:       now,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "episode_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"watched_duration", "watched_at"}),
		}).Create(&history).Error; err != nil {
			log.Printf("DB Error upserting watch history: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record watch"})
		}

		if _, err := points.EnsureProgressRecord(userID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to ensure progress record"})
		}

		genreIDs := make([]uint, 0, len(movie.Genres))
		for _, g := range movie.Genres {
			genreIDs = append(genreIDs, g.ID)
		}

		if err := dispatcher.Dispatch(models.EpisodeWatched{
			UserID:          userID,
			EpisodeID:       episode.ID,
			MovieID:         movie.ID,
			GenreIDs:        genreIDs,
			WatchedDuration: req.WatchedDuration,
			WatchedAt:       now,
		}); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "progression update failed",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{"message": "Watch recorded"})
	})

	secured.Post("/read", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(uint)

		var req struct {
			ChapterID uint `json:"chapter_id" validate:"required"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		var chapter models.Chapter
		if err := db.First(&chapter, req.ChapterID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Chapter not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}

		history := models.ReadingHistory{
			UserID:    userID,
			ChapterID: chapter.ID,
			ReadAt:    time.Now(),
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "chapter_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"read_at"}),
		}).Create(&history).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record read"})
		}

		if _, err := points.EnsureProgressRecord(userID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to ensure progress record"})
		}

		if err := dispatcher.Dispatch(models.ChapterRead{
			UserID:    userID,
			ChapterID: chapter.ID,
			ComicID:   chapter.ComicID,
		}); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "progression update failed",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{"message": "Read recorded"})
	})

	secured.Post("/comments", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(uint)

		var req struct {
			Content  string `json:"content" validate:"required"`
			MovieID  *uint  `json:"movie_id"`
			ComicID  *uint  `json:"comic_id"`
			ParentID *uint  `json:"parent_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.Content == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		comment := models.Comment{
			UserID:   userID,
			MovieID:  req.MovieID,
			ComicID:  req.ComicID,
			ParentID: req.ParentID,
			Content:  req.Content,
		}
		if err := db.Create(&comment).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create comment"})
		}

		if _, err := points.EnsureProgressRecord(userID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to ensure progress record"})
		}

		if err := dispatcher.Dispatch(models.CommentPosted{
			UserID:    userID,
			CommentID: comment.ID,
			ParentID:  comment.ParentID,
		}); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "progression update failed",
				"cause": err.Error(),
			})
		}

		return c.Status(fiber.StatusCreated).JSON(comment)
	})

	secured.Post("/ratings", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(uint)

		var req struct {
			ItemType string  `json:"item_type" validate:"required,oneof=movie comic"`
			ItemID   uint    `json:"item_id" validate:"required"`
			Score    float64 `json:"score" validate:"min=0,max=10"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.ItemType != "movie" && req.ItemType != "comic" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "item_type must be movie or comic"})
		}

		rating := models.Rating{
			UserID:   userID,
			ItemType: req.ItemType,
			ItemID:   req.ItemID,
			Score:    req.Score,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_type"}, {Name: "item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
		}).Create(&rating).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save rating"})
		}

		if _, err := points.EnsureProgressRecord(userID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to ensure progress record"})
		}

		if err := dispatcher.Dispatch(models.RatingSubmitted{
			UserID:   userID,
			ItemType: req.ItemType,
			ItemID:   req.ItemID,
			Score:    req.Score,
		}); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "progression update failed",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{"message": "Rating saved"})
	})

	secured.Post("/check-in", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(uint)
		now := time.Now()
		today := now.Format("2006-01-02")

		var existing models.CheckIn
		err := db.Where("user_id = ? AND date = ?", userID, today).First(&existing).Error
		if err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":  "Already checked in today",
				"streak": existing.Streak,
			})
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}

		// Streak continues only if the last check-in was yesterday.
		streak := 1
		yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
		var last models.CheckIn
		if err := db.Where("user_id = ?", userID).Order("date DESC").First(&last).Error; err == nil && last.Date == yesterday {
			streak = last.Streak + 1
		}

		checkIn := models.CheckIn{UserID: userID, Date: today, Streak: streak, At: now}
		if err := db.Create(&checkIn).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check in"})
		}

		if _, err := points.EnsureProgressRecord(userID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to ensure progress record"})
		}

		if err := dispatcher.Dispatch(models.DailyCheckIn{UserID: userID, CurrentStreak: streak}); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "progression update failed",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{"message": "Checked in", "streak": streak})
	})

	secured.Post("/watchlist", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(uint)

		var req struct {
			MovieID uint `json:"movie_id" validate:"required"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		entry := models.Collection{UserID: userID, MovieID: req.MovieID}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
		if res.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update watchlist"})
		}
		if res.RowsAffected == 0 {
			return c.JSON(fiber.Map{"message": "Already on watchlist"})
		}

		if _, err := points.EnsureProgressRecord(userID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to ensure progress record"})
		}

		if err := dispatcher.Dispatch(models.WatchlistUpdated{UserID: userID, MovieID: req.MovieID}); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "progression update failed",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{"message": "Added to watchlist"})
	})

	// Called by the profile service once after signup.
	secured.Post("/registered", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(uint)

		if _, err := points.EnsureProgressRecord(userID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to ensure progress record"})
		}

		if err := dispatcher.Dispatch(models.UserRegistered{UserID: userID}); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "progression update failed",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{"message": "Welcome aboard"})
	})

	// Completion oracle, exposed for the player UI ("mark as finished?" etc).
	secured.Get("/completion", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(uint)

		if raw := c.Query("episode_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid episode_id"})
			}
			done, err := completion.IsEpisodeComplete(userID, uint(id))
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
			}
			return c.JSON(fiber.Map{"episode_id": id, "complete": done})
		}

		if raw := c.Query("movie_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid movie_id"})
			}
			done, err := completion.IsMovieComplete(userID, uint(id))
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
			}
			return c.JSON(fiber.Map{"movie_id": id, "complete": done})
		}

		if raw := c.Query("series_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid series_id"})
			}
			done, err := completion.IsSeriesComplete(userID, uint(id))
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
			}
			return c.JSON(fiber.Map{"series_id": id, "complete": done})
		}

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Provide episode_id, movie_id or series_id"})
	})
}
