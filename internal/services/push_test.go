package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"campusfeed/internal/db"
	"campusfeed/internal/models"
	"campusfeed/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setPushToken(t *testing.T, user *models.User, token string) {
	t.Helper()
	require.NoError(t, db.DB.Model(user).Update("push_token", token).Error)
}

func createNews(t *testing.T) *models.News {
	t.Helper()
	news := &models.News{Title: "Exams moved", Content: "Finals start Monday"}
	require.NoError(t, db.DB.Create(news).Error)
	return news
}

func TestSendNewsWithoutTokens(t *testing.T) {
	testutil.SetupDB(t)
	testutil.CreateUser(t, "student@campus.edu", "secret1", models.RoleUser)
	news := createNews(t)

	_, err := NewPushService("http://127.0.0.1:0", 2).SendNews(context.Background(), news.ID)
	assert.ErrorIs(t, err, ErrNoPushTokens)

	var reloaded models.News
	require.NoError(t, db.DB.First(&reloaded, news.ID).Error)
	assert.False(t, reloaded.Sent)
}

func TestSendNewsAllDelivered(t *testing.T) {
	testutil.SetupDB(t)
	setPushToken(t, testutil.CreateUser(t, "a@campus.edu", "secret1", models.RoleUser), "ExponentPushToken[aaaaaaaaaaaa]")
	setPushToken(t, testutil.CreateUser(t, "b@campus.edu", "secret1", models.RoleUser), "ExponentPushToken[bbbbbbbbbbbb]")
	testutil.CreateUser(t, "c@campus.edu", "secret1", models.RoleUser)
	news := createNews(t)

	var mu sync.Mutex
	var received []PushMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg PushMessage
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		mu.Lock()
		received = append(received, msg)
		mu.Unlock()
		w.Write([]byte(`{"data":{"status":"ok","id":"x"}}`))
	}))
	defer server.Close()

	report, err := NewPushService(server.URL, 4).SendNews(context.Background(), news.ID)
	require.NoError(t, err)
	assert.Equal(t, &PushReport{Total: 2, Succeeded: 2, Sent: true}, report)

	require.Len(t, received, 2)
	assert.Equal(t, "default", received[0].Sound)
	assert.Equal(t, "Exams moved", received[0].Title)
	assert.Equal(t, map[string]string{"type": "news", "title": "Exams moved", "body": "Finals start Monday"}, received[0].Data)

	var reloaded models.News
	require.NoError(t, db.DB.First(&reloaded, news.ID).Error)
	assert.True(t, reloaded.Sent)
	assert.NotNil(t, reloaded.SentAt)
}

func TestSendNewsPartialFailureLeavesUnsent(t *testing.T) {
	testutil.SetupDB(t)
	setPushToken(t, testutil.CreateUser(t, "a@campus.edu", "secret1", models.RoleUser), "ExponentPushToken[good]")
	setPushToken(t, testutil.CreateUser(t, "b@campus.edu", "secret1", models.RoleUser), "ExponentPushToken[bad]")
	news := createNews(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg PushMessage
		_ = json.NewDecoder(r.Body).Decode(&msg)
		if msg.To == "ExponentPushToken[bad]" {
			w.Write([]byte(`{"data":{"status":"error","message":"DeviceNotRegistered"}}`))
			return
		}
		w.Write([]byte(`{"data":{"status":"ok"}}`))
	}))
	defer server.Close()

	report, err := NewPushService(server.URL, 1).SendNews(context.Background(), news.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, 1, report.Failed)
	assert.False(t, report.Sent)

	var reloaded models.News
	require.NoError(t, db.DB.First(&reloaded, news.ID).Error)
	assert.False(t, reloaded.Sent)
}

func TestSendNewsMissing(t *testing.T) {
	testutil.SetupDB(t)
	_, err := NewPushService("http://127.0.0.1:0", 1).SendNews(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
}
