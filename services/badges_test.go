package services

import (
	"testing"
	"time"

	"media-stream-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func evaluateInTx(t *testing.T, db *gorm.DB, badges *BadgeService, userID uint, event models.ActionEvent) []uint {
	t.Helper()
	batch := &NotificationBatch{}
	var awarded []uint
	err := db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		awarded, txErr = badges.EvaluateBadges(tx, userID, event, batch)
		return txErr
	})
	require.NoError(t, err)
	return awarded
}

func addComment(t *testing.T, db *gorm.DB, userID uint) models.Comment {
	t.Helper()
	comment := models.Comment{UserID: userID, Content: "nice one"}
	require.NoError(t, db.Create(&comment).Error)
	return comment
}

func TestEvaluateBadges_CommentThresholdFiresExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	_, badges, _, _ := newEngine(db)
	userID := seedUser(t, db, "alice")

	badge := models.BadgeDefinition{
		Code:          "CHATTERBOX",
		Name:          "Chatterbox",
		CriteriaType:  models.CriteriaComments,
		CriteriaValue: 10,
	}
	require.NoError(t, db.Create(&badge).Error)

	var lastComment models.Comment
	for i := 0; i < 9; i++ {
		lastComment = addComment(t, db, userID)
	}
	awarded := evaluateInTx(t, db, badges, userID, models.CommentPosted{UserID: userID, CommentID: lastComment.ID})
	assert.Empty(t, awarded, "9 comments must not award a 10-comment badge")

	tenth := addComment(t, db, userID)
	awarded = evaluateInTx(t, db, badges, userID, models.CommentPosted{UserID: userID, CommentID: tenth.ID})
	assert.Equal(t, []uint{badge.ID}, awarded)

	// Delete one and post another: the count crosses 10 again, but the badge
	// was already earned and must not fire a second time.
	require.NoError(t, db.Delete(&tenth).Error)
	again := addComment(t, db, userID)
	awarded = evaluateInTx(t, db, badges, userID, models.CommentPosted{UserID: userID, CommentID: again.ID})
	assert.Empty(t, awarded)

	var count int64
	db.Model(&models.EarnedBadge{}).Where("user_id = ? AND badge_id = ?", userID, badge.ID).Count(&count)
	assert.EqualValues(t, 1, count)
	assert.EqualValues(t, 1, notificationCount(t, db, userID, models.NotificationNewBadge))
}

func TestEvaluateBadges_RepliesDoNotCount(t *testing.T) {
	db := newTestDB(t)
	_, badges, _, _ := newEngine(db)
	userID := seedUser(t, db, "bob")

	badge := models.BadgeDefinition{
		Code:          "FIRST_WORDS",
		Name:          "First Words",
		CriteriaType:  models.CriteriaComments,
		CriteriaValue: 1,
	}
	require.NoError(t, db.Create(&badge).Error)

	parent := addComment(t, db, seedUser(t, db, "someone"))
	reply := models.Comment{UserID: userID, Content: "agreed", ParentID: &parent.ID}
	require.NoError(t, db.Create(&reply).Error)

	awarded := evaluateInTx(t, db, badges, userID, models.CommentPosted{UserID: userID, CommentID: reply.ID, ParentID: &parent.ID})
	assert.Empty(t, awarded, "replies are not top-level comments")
}

func TestEvaluateBadges_IrrelevantEventSkipsStatistic(t *testing.T) {
	db := newTestDB(t)
	_, badges, _, _ := newEngine(db)
	userID := seedUser(t, db, "carol")

	badge := models.BadgeDefinition{
		Code:          "CHATTY",
		Name:          "Chatty",
		CriteriaType:  models.CriteriaComments,
		CriteriaValue: 1,
	}
	require.NoError(t, db.Create(&badge).Error)
	addComment(t, db, userID)

	// Threshold is met, but an episode_watched event must not touch the
	// comments statistic.
	awarded := evaluateInTx(t, db, badges, userID, models.EpisodeWatched{UserID: userID, EpisodeID: 1, MovieID: 1})
	assert.Empty(t, awarded)
}

func TestEvaluateBadges_EarlyAdopter(t *testing.T) {
	db := newTestDB(t)
	_, badges, _, _ := newEngine(db)

	badge := models.BadgeDefinition{
		Code:          "EARLY",
		Name:          "Early Adopter",
		CriteriaType:  models.CriteriaOther,
		CriteriaValue: 100,
	}
	require.NoError(t, db.Create(&badge).Error)

	early := seedUser(t, db, "first") // low sequential ID
	awarded := evaluateInTx(t, db, badges, early, models.UserRegistered{UserID: early})
	assert.Equal(t, []uint{badge.ID}, awarded)

	lateUser := models.User{ID: 500, Username: "late"}
	require.NoError(t, db.Create(&lateUser).Error)
	awarded = evaluateInTx(t, db, badges, lateUser.ID, models.UserRegistered{UserID: lateUser.ID})
	assert.Empty(t, awarded)
}

func TestEvaluateBadges_StreakFromPayload(t *testing.T) {
	db := newTestDB(t)
	_, badges, _, _ := newEngine(db)
	userID := seedUser(t, db, "dave")

	badge := models.BadgeDefinition{
		Code:          "STREAK_7",
		Name:          "Regular",
		CriteriaType:  models.CriteriaCheckInStreak,
		CriteriaValue: 7,
	}
	require.NoError(t, db.Create(&badge).Error)

	awarded := evaluateInTx(t, db, badges, userID, models.DailyCheckIn{UserID: userID, CurrentStreak: 6})
	assert.Empty(t, awarded)

	awarded = evaluateInTx(t, db, badges, userID, models.DailyCheckIn{UserID: userID, CurrentStreak: 7})
	assert.Equal(t, []uint{badge.ID}, awarded)
}

func TestEvaluateBadges_GenreExplorer(t *testing.T) {
	db := newTestDB(t)
	_, badges, _, _ := newEngine(db)
	userID := seedUser(t, db, "erin")

	action := models.Genre{Name: "Action", Slug: "action"}
	drama := models.Genre{Name: "Drama", Slug: "drama"}
	require.NoError(t, db.Create(&action).Error)
	require.NoError(t, db.Create(&drama).Error)

	badge := models.BadgeDefinition{
		Code:          "HOPPER",
		Name:          "Genre Hopper",
		CriteriaType:  models.CriteriaGenreExplorer,
		CriteriaValue: 2,
	}
	require.NoError(t, db.Create(&badge).Error)

	m1 := seedMovie(t, db, "Fast Cars", 1, action)
	require.NoError(t, db.Create(&models.WatchHistory{
		UserID: userID, EpisodeID: m1.Episodes[0].ID, WatchedDuration: 1400, WatchedAt: time.Now(),
	}).Error)

	event := models.EpisodeWatched{UserID: userID, EpisodeID: m1.Episodes[0].ID, MovieID: m1.ID}
	awarded := evaluateInTx(t, db, badges, userID, event)
	assert.Empty(t, awarded, "one genre is not enough")

	m2 := seedMovie(t, db, "Slow Tears", 1, drama)
	require.NoError(t, db.Create(&models.WatchHistory{
		UserID: userID, EpisodeID: m2.Episodes[0].ID, WatchedDuration: 1400, WatchedAt: time.Now(),
	}).Error)

	event = models.EpisodeWatched{UserID: userID, EpisodeID: m2.Episodes[0].ID, MovieID: m2.ID}
	awarded = evaluateInTx(t, db, badges, userID, event)
	assert.Equal(t, []uint{badge.ID}, awarded)
}

func TestEvaluateBadges_LateNightWatcher(t *testing.T) {
	db := newTestDB(t)
	_, badges, _, _ := newEngine(db)
	userID := seedUser(t, db, "frank")

	badge := models.BadgeDefinition{
		Code:          "NIGHT_OWL",
		Name:          "Night Owl",
		CriteriaType:  models.CriteriaLateNightWatcher,
		CriteriaValue: 2,
	}
	require.NoError(t, db.Create(&badge).Error)

	movie := seedMovie(t, db, "Nocturne", 3)
	base := time.Date(2026, 8, 10, 1, 30, 0, 0, time.Local)
	// Two distinct late-night dates plus one evening watch that must not count.
	watches := []models.WatchHistory{
		{UserID: userID, EpisodeID: movie.Episodes[0].ID, WatchedAt: base},
		{UserID: userID, EpisodeID: movie.Episodes[1].ID, WatchedAt: base.AddDate(0, 0, 1)},
		{UserID: userID, EpisodeID: movie.Episodes[2].ID, WatchedAt: time.Date(2026, 8, 12, 20, 0, 0, 0, time.Local)},
	}
	for i := range watches {
		require.NoError(t, db.Create(&watches[i]).Error)
	}

	event := models.EpisodeWatched{UserID: userID, EpisodeID: movie.Episodes[2].ID, MovieID: movie.ID}
	awarded := evaluateInTx(t, db, badges, userID, event)
	assert.Equal(t, []uint{badge.ID}, awarded)
}

func TestAward_DuplicateIsSilentNoop(t *testing.T) {
	db := newTestDB(t)
	_, badges, _, _ := newEngine(db)
	userID := seedUser(t, db, "grace")

	badge := models.BadgeDefinition{Code: "ONE", Name: "One", CriteriaType: models.CriteriaComments, CriteriaValue: 1}
	require.NoError(t, db.Create(&badge).Error)

	batch := &NotificationBatch{}
	err := db.Transaction(func(tx *gorm.DB) error {
		ok, err := badges.Award(tx, userID, &badge, batch)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = badges.Award(tx, userID, &badge, batch)
		require.NoError(t, err)
		assert.False(t, ok, "second award of the same badge must be a no-op")
		return nil
	})
	require.NoError(t, err)

	var count int64
	db.Model(&models.EarnedBadge{}).Where("user_id = ? AND badge_id = ?", userID, badge.ID).Count(&count)
	assert.EqualValues(t, 1, count)
	assert.EqualValues(t, 1, notificationCount(t, db, userID, models.NotificationNewBadge))
}
