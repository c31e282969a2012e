package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateNote(t *testing.T) {
	var got GenerateRequest
	// 模拟 Gemini 服务器
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"<h1>Networks</h1>"}]}}]}`))
	}))
	defer server.Close()

	s := NewLLMService("test-key", "test-model", server.URL+"/")
	content, err := s.GenerateNote(context.Background(), NoteRequest{Title: "Networks", Summary: "OSI layers", Pages: 2})
	require.NoError(t, err)
	assert.Equal(t, "<h1>Networks</h1>", content)

	require.Len(t, got.Contents, 1)
	prompt := got.Contents[0].Parts[0].Text
	assert.True(t, strings.HasPrefix(prompt, "Format the following note content"))
	assert.Contains(t, prompt, "Title: Networks")
	assert.Contains(t, prompt, "Split the content into 2 sections/pages.")
	assert.Equal(t, 0.4, got.GenerationConfig.Temperature)
	assert.Equal(t, 2048, got.GenerationConfig.MaxOutputTokens)
}

func TestGenerateFailures(t *testing.T) {
	_, err := NewLLMService("", "m", "http://unused").EnhanceNote(context.Background(), "text")
	assert.ErrorIs(t, err, ErrLLMDisabled)

	_, err = NewLLMService("k", "m", "http://unused").GenerateNote(context.Background(), NoteRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	status := http.StatusInternalServerError
	body := `{"error":{"message":"boom"}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	defer server.Close()

	s := NewLLMService("k", "m", server.URL)
	_, err = s.EnhanceNote(context.Background(), "text")
	assert.ErrorIs(t, err, ErrUpstream)

	status, body = http.StatusOK, `{"candidates":[]}`
	_, err = s.EnhanceNote(context.Background(), "text")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestNotePromptDefaultsToOnePage(t *testing.T) {
	prompt := NotePrompt(NoteRequest{Title: "T", CustomPrompt: "Use Swahili examples."})
	assert.Contains(t, prompt, "Split the content into 1 sections/pages.")
	assert.True(t, strings.HasSuffix(prompt, "Use Swahili examples."))
}
