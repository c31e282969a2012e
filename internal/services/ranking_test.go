package services

import (
	"testing"
	"time"

	"campusfeed/internal/db"
	"campusfeed/internal/models"
	"campusfeed/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdatePostScore(t *testing.T) {
	testutil.SetupDB(t)
	category := testutil.CreateCategory(t, "Events")
	quiet := testutil.CreatePost(t, category.ID, "Quiet")
	busy := testutil.CreatePost(t, category.ID, "Busy")
	require.NoError(t, db.DB.Model(busy).UpdateColumns(map[string]interface{}{"likes": 40, "views": 900}).Error)

	UpdatePostScore(quiet.ID)
	UpdatePostScore(busy.ID)

	var q, b models.Post
	require.NoError(t, db.DB.First(&q, quiet.ID).Error)
	require.NoError(t, db.DB.First(&b, busy.ID).Error)
	assert.Zero(t, q.Score)
	assert.Greater(t, b.Score, q.Score)
}

func TestRefreshHotScoresVisitsEachPostOnce(t *testing.T) {
	testutil.SetupDB(t)
	category := testutil.CreateCategory(t, "Events")
	testutil.CreatePost(t, category.ID, "One")
	testutil.CreatePost(t, category.ID, "Two")

	assert.Equal(t, 2, RefreshHotScores())
}

func TestScheduleUpdateIgnoredWhenStopped(t *testing.T) {
	s := &RankingService{queue: make(chan uint, 1), pending: make(map[uint]bool), stop: make(chan struct{})}
	s.ScheduleUpdate(1)
	assert.Empty(t, s.queue)
}

func TestOlderPostsKeepFractionalScore(t *testing.T) {
	testutil.SetupDB(t)
	post := testutil.CreatePost(t, testutil.CreateCategory(t, "Events").ID, "Last Week")
	require.NoError(t, db.DB.Model(post).UpdateColumns(map[string]interface{}{
		"likes":      10,
		"created_at": time.Now().Add(-5 * 24 * time.Hour),
	}).Error)

	UpdatePostScore(post.ID)

	var reloaded models.Post
	require.NoError(t, db.DB.First(&reloaded, post.ID).Error)
	assert.Greater(t, reloaded.Score, 0.0)
	assert.Less(t, reloaded.Score, 1.0)
}

func TestStopDisablesScheduling(t *testing.T) {
	s := &RankingService{queue: make(chan uint, 1), pending: make(map[uint]bool), stop: make(chan struct{})}
	s.Start()
	s.Stop()

	s.ScheduleUpdate(1)
	assert.Empty(t, s.queue)
}
