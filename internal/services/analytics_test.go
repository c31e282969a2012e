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

func TestSummary(t *testing.T) {
	testutil.SetupDB(t)
	user := testutil.CreateUser(t, "student@campus.edu", "secret1", models.RoleUser)
	events := testutil.CreateCategory(t, "Events")
	testutil.CreateCategory(t, "Empty")
	a := testutil.CreatePost(t, events.ID, "A")
	b := testutil.CreatePost(t, events.ID, "B")

	require.NoError(t, RecordView(a.ID, "s1"))
	require.NoError(t, RecordView(a.ID, "s1"))
	require.NoError(t, RecordView(b.ID, "s2"))
	_, err := ToggleLike(b.ID, user.ID)
	require.NoError(t, err)

	s, err := Summary()
	require.NoError(t, err)

	assert.Equal(t, int64(1), s.Users)
	assert.Equal(t, int64(2), s.Posts)
	assert.Equal(t, int64(3), s.TotalViews)
	assert.Equal(t, int64(1), s.TotalLikes)

	require.Len(t, s.PostsPerCategory, 1)
	assert.Equal(t, "Events", s.PostsPerCategory[0].Name)
	assert.Equal(t, int64(2), s.PostsPerCategory[0].Count)

	require.Len(t, s.LikesPerCategory, 1)
	assert.Equal(t, int64(1), s.LikesPerCategory[0].Count)

	require.NotEmpty(t, s.TopViewed)
	assert.Equal(t, a.ID, s.TopViewed[0].ID)
	require.NotNil(t, s.MostLiked)
	assert.Equal(t, b.ID, s.MostLiked.ID)

	assert.Equal(t, []SessionStat{{SessionID: "s1", Views: 2}, {SessionID: "s2", Views: 1}}, s.ViewsPerSession)

	require.Len(t, s.DailyViews, 7)
	assert.Equal(t, 3, s.DailyViews[6].Views)
}

func TestSummaryWithoutLikes(t *testing.T) {
	testutil.SetupDB(t)
	s, err := Summary()
	require.NoError(t, err)
	assert.Nil(t, s.MostLiked)
	assert.Empty(t, s.PostsPerCategory)
	assert.Len(t, s.DailyViews, 7)
}

func TestDailyViewsZeroFilled(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	events := []models.PostViewEvent{
		{CreatedAt: now.Add(-time.Hour)},
		{CreatedAt: now.AddDate(0, 0, -6)},
		{CreatedAt: now.AddDate(0, 0, -7)},
	}

	days := dailyViews(now, events)
	require.Len(t, days, 7)
	assert.Equal(t, "2024-03-04", days[0].Date)
	assert.Equal(t, 1, days[0].Views)
	assert.Equal(t, "2024-03-10", days[6].Date)
	assert.Equal(t, 1, days[6].Views)
	for _, d := range days[1:6] {
		assert.Zero(t, d.Views)
	}
}

func TestResetAnalytics(t *testing.T) {
	testutil.SetupDB(t)
	user := testutil.CreateUser(t, "student@campus.edu", "secret1", models.RoleUser)
	category := testutil.CreateCategory(t, "Events")
	post := testutil.CreatePost(t, category.ID, "A")
	require.NoError(t, RecordView(post.ID, "s1"))
	_, err := ToggleLike(post.ID, user.ID)
	require.NoError(t, err)

	require.NoError(t, ResetAnalytics())

	var reloaded models.Post
	require.NoError(t, db.DB.First(&reloaded, post.ID).Error)
	assert.Zero(t, reloaded.Views)
	assert.Zero(t, reloaded.Likes)

	var events, likes int64
	db.DB.Model(&models.PostViewEvent{}).Count(&events)
	db.DB.Model(&models.PostLike{}).Count(&likes)
	assert.Zero(t, events)
	assert.Zero(t, likes)
}

func TestRecordViewMissingPost(t *testing.T) {
	testutil.SetupDB(t)
	assert.ErrorIs(t, RecordView(404, "s1"), ErrNotFound)
}
