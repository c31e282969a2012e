package services

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"campusfeed/internal/db"
	"campusfeed/internal/models"
	"campusfeed/internal/utils"

	"github.com/mmcdole/gofeed"
)

const defaultImportLimit = 20

// RSSFetcher 从 RSS/Atom 源导入新闻
type RSSFetcher struct {
	parser *gofeed.Parser
}

// NewRSSFetcher 创建 RSS 抓取服务实例
func NewRSSFetcher() *RSSFetcher {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			MaxIdleConnsPerHost: 2,
		},
	}

	parser := gofeed.NewParser()
	parser.Client = httpClient

	return &RSSFetcher{parser: parser}
}

// ImportNews 解析订阅源并为未见过的条目创建新闻，返回新建数量
func (f *RSSFetcher) ImportNews(ctx context.Context, feedURL string, limit int) (int, error) {
	feedURL = strings.TrimSpace(feedURL)
	if !strings.HasPrefix(feedURL, "http://") && !strings.HasPrefix(feedURL, "https://") {
		return 0, InvalidInput("Please enter a valid feed URL.")
	}
	if limit <= 0 || limit > 100 {
		limit = defaultImportLimit
	}

	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: 解析 RSS 失败: %v", ErrUpstream, err)
	}

	created := 0
	for i, item := range feed.Items {
		if i >= limit {
			break
		}

		guid := item.GUID
		if guid == "" {
			guid = item.Link // 如果没有 GUID，使用 Link 作为唯一标识
		}
		if guid == "" {
			continue
		}

		var exists int64
		db.DB.Model(&models.News{}).Where("guid = ?", guid).Count(&exists)
		if exists > 0 {
			continue
		}

		title := strings.TrimSpace(item.Title)
		body := item.Description
		if body == "" {
			body = item.Content
		}
		body = utils.PlainExcerpt(body, 500)
		if title == "" || body == "" {
			continue
		}

		news := models.News{Title: title, Content: body, GUID: &guid, Link: item.Link}
		if err := db.DB.Create(&news).Error; err != nil {
			log.Printf("存储 RSS 新闻失败: %v", err)
			continue
		}
		created++
	}

	return created, nil
}
