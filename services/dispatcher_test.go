package services

import (
	"testing"
	"time"

	"media-stream-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch_EpisodeWatchedFullFlow(t *testing.T) {
	db := newTestDB(t)
	points, badges, challenges, _ := newEngine(db)
	sink := &captureSink{}
	dispatcher := NewActionDispatcher(db, points, badges, challenges, sink)
	userID := seedUser(t, db, "alice")

	def := seedChallenge(t, db, models.ChallengeDefinition{
		Title: "First Watch", Type: models.ChallengeWatchXEpisodes, TargetCount: 1, PointsReward: 40,
	})
	enrollAt(t, db, userID, def.ID, time.Now())

	movie := seedMovie(t, db, "Opening Night", 1)
	err := dispatcher.Dispatch(fullWatch(t, db, userID, movie, 0))
	require.NoError(t, err)

	// 10 base points plus the 40-point challenge reward.
	var prog models.UserProgress
	require.NoError(t, db.Where("user_id = ?", userID).First(&prog).Error)
	assert.EqualValues(t, 50, prog.Points)

	progress := loadProgress(t, db, userID, def.ID)
	assert.Equal(t, models.ChallengeCompleted, progress.Status)

	assert.Len(t, sink.byType(models.NotificationChallengeCompleted), 1)
}

func TestDispatch_RollbackLeavesNothingBehind(t *testing.T) {
	db := newTestDB(t)
	points, badges, challenges, _ := newEngine(db)
	sink := &captureSink{}
	dispatcher := NewActionDispatcher(db, points, badges, challenges, sink)
	userID := seedUser(t, db, "bob")

	// The reward badge does not exist, so reward distribution fails and the
	// whole dispatch must roll back.
	missing := uint(9999)
	def := seedChallenge(t, db, models.ChallengeDefinition{
		Title: "Cursed", Type: models.ChallengeWatchXEpisodes, TargetCount: 1, BadgeIDReward: &missing,
	})
	enrollAt(t, db, userID, def.ID, time.Now())

	movie := seedMovie(t, db, "Doomed Feature", 1)
	err := dispatcher.Dispatch(fullWatch(t, db, userID, movie, 0))
	require.Error(t, err)

	var prog models.UserProgress
	require.NoError(t, db.Where("user_id = ?", userID).First(&prog).Error)
	assert.EqualValues(t, 0, prog.Points, "base points rolled back with the failed reward")

	progress := loadProgress(t, db, userID, def.ID)
	assert.Equal(t, models.ChallengeInProgress, progress.Status)
	assert.Equal(t, 0, progress.CurrentCount)

	assert.Empty(t, sink.pushed, "nothing reaches the sink on rollback")
	var count int64
	db.Model(&models.Notification{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestDispatch_CheckInAdvancesStreakBadge(t *testing.T) {
	db := newTestDB(t)
	points, badges, challenges, _ := newEngine(db)
	sink := &captureSink{}
	dispatcher := NewActionDispatcher(db, points, badges, challenges, sink)
	userID := seedUser(t, db, "carol")

	badge := models.BadgeDefinition{
		Code: "STREAK_7", Name: "One Week Strong",
		CriteriaType: models.CriteriaCheckInStreak, CriteriaValue: 7,
	}
	require.NoError(t, db.Create(&badge).Error)

	require.NoError(t, dispatcher.Dispatch(models.DailyCheckIn{UserID: userID, CurrentStreak: 6}))
	assert.Empty(t, sink.byType(models.NotificationNewBadge))

	require.NoError(t, dispatcher.Dispatch(models.DailyCheckIn{UserID: userID, CurrentStreak: 7}))
	assert.Len(t, sink.byType(models.NotificationNewBadge), 1)

	// Two check-ins at 10 base points each.
	var prog models.UserProgress
	require.NoError(t, db.Where("user_id = ?", userID).First(&prog).Error)
	assert.EqualValues(t, 20, prog.Points)
}

func TestDispatch_WatchlistEventIsCheap(t *testing.T) {
	db := newTestDB(t)
	points, badges, challenges, _ := newEngine(db)
	sink := &captureSink{}
	dispatcher := NewActionDispatcher(db, points, badges, challenges, sink)
	userID := seedUser(t, db, "dave")

	require.NoError(t, dispatcher.Dispatch(models.WatchlistUpdated{UserID: userID, MovieID: 3}))

	var prog models.UserProgress
	require.NoError(t, db.Where("user_id = ?", userID).First(&prog).Error)
	assert.EqualValues(t, 2, prog.Points)
	assert.Equal(t, 1, prog.Level)
}
