package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"campusfeed/internal/db"
	"campusfeed/internal/models"
	"campusfeed/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>College News</title>
<link>https://college.example.com</link>
<description>Updates</description>
<item><title>Library hours extended</title><link>https://college.example.com/a</link><guid>news-a</guid>
<description>&lt;p&gt;Open until &lt;b&gt;midnight&lt;/b&gt; during exams.&lt;/p&gt;</description></item>
<item><title>Sports day</title><link>https://college.example.com/b</link>
<description>Friday on the main field.</description></item>
<item><title></title><link>https://college.example.com/c</link><description>untitled</description></item>
</channel></rss>`

func TestImportNews(t *testing.T) {
	testutil.SetupDB(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	fetcher := NewRSSFetcher()
	created, err := fetcher.ImportNews(context.Background(), server.URL, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	var first models.News
	require.NoError(t, db.DB.Where("guid = ?", "news-a").First(&first).Error)
	assert.Equal(t, "Open until midnight during exams.", first.Content)
	assert.False(t, first.Sent)

	var second models.News
	require.NoError(t, db.DB.Where("guid = ?", "https://college.example.com/b").First(&second).Error)
	assert.Equal(t, "Sports day", second.Title)

	again, err := fetcher.ImportNews(context.Background(), server.URL, 10)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestImportNewsRejectsBadURL(t *testing.T) {
	_, err := NewRSSFetcher().ImportNews(context.Background(), "not a url", 5)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
