package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// LLMService 调用 Gemini generateContent 生成笔记内容
type LLMService struct {
	client  *http.Client
	apiKey  string
	model   string
	baseURL string
}

func NewLLMService(apiKey, model, baseURL string) *LLMService {
	return &LLMService{
		client:  &http.Client{Timeout: 60 * time.Second},
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// GenerateRequest is the generateContent request body.
type GenerateRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

// GenerateResponse keeps only what we read from the reply.
type GenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NoteRequest describes a note to draft from scratch.
type NoteRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Summary      string `json:"summary"`
	Pages        int    `json:"pages"`
	CustomPrompt string `json:"custom_prompt"`
}

func (s *LLMService) Enabled() bool {
	return s != nil && s.apiKey != ""
}

// EnhancePrompt wraps existing content in the formatting instructions.
func EnhancePrompt(content string) string {
	return "Format the following note content for beautiful display in a mobile app. " +
		"Use markdown or HTML for titles, lists, blockquotes, code blocks, highlights, and images. " +
		"Make it visually appealing and easy to read.\n\nContent:\n" + content
}

// NotePrompt builds the drafting instructions for a new note.
func NotePrompt(req NoteRequest) string {
	pages := req.Pages
	if pages < 1 {
		pages = 1
	}
	var b strings.Builder
	b.WriteString("Create a beautiful, easy-to-understand, and well-illustrated note for a learning module.\n")
	b.WriteString("Title: " + req.Title + "\n")
	b.WriteString("Description: " + req.Description + "\n")
	b.WriteString("Summary: " + req.Summary + "\n")
	b.WriteString("Split the content into " + strconv.Itoa(pages) + " sections/pages. ")
	b.WriteString("Use clear section titles, bullet points, images (with links), illustrations, and examples where appropriate. ")
	b.WriteString("Output the note as responsive HTML using Tailwind CSS classes for modern mobile-friendly design. ")
	b.WriteString("Use simple, clear language.\n")
	b.WriteString(req.CustomPrompt)
	return b.String()
}

// EnhanceNote reformats existing note content.
func (s *LLMService) EnhanceNote(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", InvalidInput("Content is required.")
	}
	return s.Generate(ctx, EnhancePrompt(content))
}

// GenerateNote drafts a note. The drafting prompt goes through the same formatting wrapper.
func (s *LLMService) GenerateNote(ctx context.Context, req NoteRequest) (string, error) {
	if strings.TrimSpace(req.Title) == "" {
		return "", InvalidInput("Please enter a title for the note")
	}
	return s.Generate(ctx, EnhancePrompt(NotePrompt(req)))
}

// Generate sends one prompt and returns the first candidate's text. Single call, no retry.
func (s *LLMService) Generate(ctx context.Context, prompt string) (string, error) {
	if !s.Enabled() {
		return "", ErrLLMDisabled
	}

	body, err := json.Marshal(GenerateRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{Temperature: 0.4, MaxOutputTokens: 2048},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.model, url.QueryEscape(s.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("⚠️ Gemini API error %d: %s", resp.StatusCode, truncate(string(raw), 300))
		return "", fmt.Errorf("%w: gemini status %d", ErrUpstream, resp.StatusCode)
	}

	var out GenerateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 || out.Candidates[0].Content.Parts[0].Text == "" {
		log.Println("⚠️ Gemini API returned no content")
		return "", fmt.Errorf("%w: empty candidate", ErrUpstream)
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
