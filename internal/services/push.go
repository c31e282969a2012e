package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"campusfeed/internal/db"
	"campusfeed/internal/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// PushMessage is one Expo push notification.
type PushMessage struct {
	To    string            `json:"to"`
	Sound string            `json:"sound"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

type pushTicket struct {
	Data struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
}

// PushReport summarises one broadcast.
type PushReport struct {
	Total     int  `json:"total"`
	Succeeded int  `json:"succeeded"`
	Failed    int  `json:"failed"`
	Sent      bool `json:"sent"`
}

// PushService 向所有设备广播新闻
type PushService struct {
	client      *http.Client
	gatewayURL  string
	concurrency int
}

func NewPushService(gatewayURL string, concurrency int) *PushService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &PushService{
		client:      &http.Client{Timeout: 15 * time.Second},
		gatewayURL:  gatewayURL,
		concurrency: concurrency,
	}
}

// NewsMessage builds the payload the app expects for a news broadcast.
func NewsMessage(token string, news *models.News) PushMessage {
	return PushMessage{
		To:    token,
		Sound: "default",
		Title: news.Title,
		Body:  news.Content,
		Data: map[string]string{
			"type":  "news",
			"title": news.Title,
			"body":  news.Content,
		},
	}
}

// Send delivers a single message. No retries.
func (s *PushService) Send(ctx context.Context, msg PushMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create push request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: push gateway status %d", ErrUpstream, resp.StatusCode)
	}

	var ticket pushTicket
	if err := json.Unmarshal(body, &ticket); err == nil && ticket.Data.Status == "error" {
		return fmt.Errorf("%w: %s", ErrUpstream, ticket.Data.Message)
	}
	return nil
}

// PushTokens returns every non-empty device token.
func PushTokens() ([]string, error) {
	var tokens []string
	err := db.DB.Model(&models.User{}).
		Where("push_token IS NOT NULL AND push_token <> ''").
		Pluck("push_token", &tokens).Error
	if err != nil {
		return nil, fmt.Errorf("load push tokens: %w", err)
	}
	return tokens, nil
}

// SendNews pushes the news item to every device. The item is marked sent only when
// every delivery succeeded; otherwise it stays unsent and an error is returned with the report.
func (s *PushService) SendNews(ctx context.Context, newsID uint) (*PushReport, error) {
	var news models.News
	if err := db.DB.First(&news, newsID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load news %d: %w", newsID, err)
	}

	tokens, err := PushTokens()
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, ErrNoPushTokens
	}

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, token := range tokens {
		token := token
		g.Go(func() error {
			if err := s.Send(gctx, NewsMessage(token, &news)); err != nil {
				failed.Add(1)
				log.Printf("⚠️ push to %s failed: %v", maskToken(token), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	report := &PushReport{Total: len(tokens), Failed: int(failed.Load())}
	report.Succeeded = report.Total - report.Failed
	if report.Failed > 0 {
		return report, fmt.Errorf("%w: %d of %d notifications failed", ErrUpstream, report.Failed, report.Total)
	}

	now := time.Now()
	if err := db.DB.Model(&news).Updates(map[string]interface{}{"sent": true, "sent_at": &now}).Error; err != nil {
		return report, fmt.Errorf("mark news %d sent: %w", newsID, err)
	}
	report.Sent = true
	return report, nil
}

func maskToken(token string) string {
	if len(token) <= 12 {
		return "***"
	}
	return token[:12] + "***"
}
