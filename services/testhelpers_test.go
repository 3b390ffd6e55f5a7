package services

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"media-stream-system/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
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
	))
	return db
}

// newEngine wires the full service graph over one test DB.
func newEngine(db *gorm.DB) (*PointsService, *BadgeService, *ChallengeService, *ShopService) {
	shop := NewShopService(db)
	badges := NewBadgeService(db)
	points := NewPointsService(db, shop, badges)
	challenges := NewChallengeService(db, points, badges, shop, NewCompletionService(db))
	return points, badges, challenges, shop
}

// fullWatch records a complete view of one episode and returns the matching
// event, genre IDs included.
func fullWatch(t *testing.T, db *gorm.DB, userID uint, movie models.Movie, epIndex int) models.EpisodeWatched {
	t.Helper()
	ep := movie.Episodes[epIndex]
	watch := models.WatchHistory{UserID: userID, EpisodeID: ep.ID, WatchedDuration: 1440, WatchedAt: time.Now()}
	require.NoError(t, db.Where("user_id = ? AND episode_id = ?", userID, ep.ID).
		Assign(watch).FirstOrCreate(&models.WatchHistory{}).Error)

	genreIDs := make([]uint, 0, len(movie.Genres))
	for _, g := range movie.Genres {
		genreIDs = append(genreIDs, g.ID)
	}
	return models.EpisodeWatched{
		UserID:          userID,
		EpisodeID:       ep.ID,
		MovieID:         movie.ID,
		GenreIDs:        genreIDs,
		WatchedDuration: 1440,
		WatchedAt:       time.Now(),
	}
}

// captureSink records pushed notifications for assertions.
type captureSink struct {
	mu     sync.Mutex
	pushed []models.Notification
}

func (s *captureSink) Push(n models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushed = append(s.pushed, n)
}

func (s *captureSink) byType(typ models.NotificationType) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.pushed {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func seedUser(t *testing.T, db *gorm.DB, username string) uint {
	t.Helper()
	user := models.User{Username: username}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.UserProgress{UserID: user.ID, Points: 0, Level: 1}).Error)
	return user.ID
}

// seedMovie creates a movie with n episodes and the given genres attached.
func seedMovie(t *testing.T, db *gorm.DB, title string, episodes int, genres ...models.Genre) models.Movie {
	t.Helper()
	movieType := models.MovieTypeSingle
	if episodes > 1 {
		movieType = models.MovieTypeSeries
	}
	movie := models.Movie{Title: title, Type: movieType, Genres: genres}
	require.NoError(t, db.Create(&movie).Error)
	for i := 1; i <= episodes; i++ {
		ep := models.Episode{MovieID: movie.ID, Number: i, Duration: "24:00"}
		require.NoError(t, db.Create(&ep).Error)
		movie.Episodes = append(movie.Episodes, ep)
	}
	return movie
}

func notificationCount(t *testing.T, db *gorm.DB, userID uint, typ models.NotificationType) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("recipient_id = ? AND type = ?", userID, typ).
		Count(&count).Error)
	return count
}
