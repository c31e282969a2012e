package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"campusfeed/internal/utils"

	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

// ArticleDraft is an imported article, ready to prefill the post form.
type ArticleDraft struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Excerpt   string `json:"excerpt"`
	ImageURL  string `json:"image_url"`
	SourceURL string `json:"source_url"`
}

// CrawlerService 网页内容抓取服务
type CrawlerService struct {
	client    *http.Client
	sanitizer *bluemonday.Policy
}

// NewCrawlerService 创建抓取服务实例
func NewCrawlerService() *CrawlerService {
	return &CrawlerService{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// ImportArticle 从 URL 抓取正文，用 go-readability 提取后再用 bluemonday 清洗
func (s *CrawlerService) ImportArticle(ctx context.Context, rawURL string) (*ArticleDraft, error) {
	pageURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") || pageURL.Host == "" {
		return nil, InvalidInput("Please enter a valid http(s) URL.")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch article: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: article status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read article: %v", ErrUpstream, err)
	}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse article: %v", ErrUpstream, err)
	}

	content := s.sanitizer.Sanitize(article.Content)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: no readable content", ErrUpstream)
	}

	return &ArticleDraft{
		Title:     strings.TrimSpace(article.Title),
		Content:   content,
		Excerpt:   utils.PlainExcerpt(content, 200),
		ImageURL:  utils.FirstImage(content),
		SourceURL: pageURL.String(),
	}, nil
}
