package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportArticle(t *testing.T) {
	paragraph := "The new campus library opens its doors to all students next week, with extended hours during the examination period and quiet study rooms on every floor. "
	page := `<html><head><title>Library Opening</title></head><body>
<nav><a href="/">Home</a></nav>
<article><h1>Library Opening</h1>
<p>` + strings.Repeat(paragraph, 4) + `</p>
<p>` + strings.Repeat(paragraph, 3) + `<script>alert(1)</script></p>
</article>
<footer>Copyright</footer></body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}))
	defer server.Close()

	draft, err := NewCrawlerService().ImportArticle(context.Background(), server.URL+"/news/library")
	require.NoError(t, err)
	assert.Equal(t, "Library Opening", draft.Title)
	assert.Contains(t, draft.Content, "extended hours")
	assert.NotContains(t, draft.Content, "<script")
	assert.LessOrEqual(t, len([]rune(draft.Excerpt)), 203)
	assert.Equal(t, server.URL+"/news/library", draft.SourceURL)
}

func TestImportArticleRejectsBadURL(t *testing.T) {
	_, err := NewCrawlerService().ImportArticle(context.Background(), "ftp://example.com/file")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestImportArticleUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewCrawlerService().ImportArticle(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrUpstream)
}
