package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"media-stream-system/handlers"
	"media-stream-system/middleware"
	"media-stream-system/models"
	"media-stream-system/services"
	"media-stream-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserProgress{},
		&models.Genre{},
		&models.Series{},
		&models.Movie{},
		&models.Episode{},
		&models.Comic{},
		&models.Chapter{},
		&models.WatchHistory{},
		&models.ReadingHistory{},
		&models.Comment{},
		&models.Rating{},
		&models.Collection{},
		&models.CheckIn{},
		&models.BadgeDefinition{},
		&models.EarnedBadge{},
		&models.ChallengeDefinition{},
		&models.UserChallengeProgress{},
		&models.ShopItem{},
		&models.UserInventory{},
		&models.Notification{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := seedDefinitions(db); err != nil {
		log.Fatal("failed to seed definitions:", err)
	}

	hub := services.NewNotificationHub()
	shopService := services.NewShopService(db)
	badgeService := services.NewBadgeService(db)
	pointsService := services.NewPointsService(db, shopService, badgeService)
	completionService := services.NewCompletionService(db)
	challengeService := services.NewChallengeService(db, pointsService, badgeService, shopService, completionService)
	dispatcher := services.NewActionDispatcher(db, pointsService, badgeService, challengeService, hub)
	notificationService := services.NewNotificationService(db, hub)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	challengeService.StartExpirySweep()
	go workers.PruneNotifications(ctx, db, 1*time.Hour, 30*24*time.Hour)

	handlers.SetupActivityRoutes(app, db, dispatcher, pointsService, completionService)
	handlers.SetupProgressionRoutes(app, db, pointsService, challengeService, hub)
	handlers.SetupNotificationRoutes(app, notificationService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Challenge expiry sweep running (every 10m)")
	log.Println("✅ Notification pruning running (every 1h)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come through Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
}

// seedDefinitions inserts the default badge and challenge catalogs if they
// are not present yet. Existing rows are left untouched so operators can tune
// thresholds in the DB.
func seedDefinitions(db *gorm.DB) error {
	for _, badge := range models.DefaultBadges {
		var existing models.BadgeDefinition
		err := db.Where("code = ?", badge.Code).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&badge).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}

	for _, challenge := range models.DefaultChallenges {
		var existing models.ChallengeDefinition
		err := db.Where("title = ?", challenge.Title).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&challenge).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}

	return nil
}
