package handlers

import (
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"campusfeed/internal/db"
	"campusfeed/internal/models"
	"campusfeed/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	sitemapCacheKey = "seo:sitemap"
	feedCacheKey    = "seo:feed"
)

type SEOHandler struct {
	siteURL string
}

func NewSEOHandler(siteURL string) *SEOHandler {
	return &SEOHandler{siteURL: strings.TrimSuffix(siteURL, "/")}
}

// RobotsTxt 返回 robots.txt
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /p/
Allow: /notes/

# 禁止爬取 API
Disallow: /api/

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

func postPath(post *models.Post) string {
	if post.Slug == "" {
		return fmt.Sprintf("/p/%d", post.ID)
	}
	return fmt.Sprintf("/p/%d-%s", post.ID, post.Slug)
}

// SitemapXML 动态生成 sitemap.xml（缓存 1 小时，文章变动时失效）
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	if cached, hit := utils.GetCache().Get(sitemapCacheKey).(string); hit {
		c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(cached))
		return
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
`)

	// 最近的文章详情页(限制500篇,避免sitemap过大)
	var posts []models.Post
	db.DB.Select("id, slug, created_at, updated_at").Order("created_at DESC").Limit(500).Find(&posts)
	for i := range posts {
		post := &posts[i]
		// 根据文章新旧程度调整优先级
		daysSinceCreated := time.Since(post.CreatedAt).Hours() / 24
		priority := 0.6
		changefreq := "weekly"
		if daysSinceCreated < 7 {
			priority = 0.8
			changefreq = "daily"
		}

		fmt.Fprintf(&b, `  <url>
    <loc>%s%s</loc>
    <lastmod>%s</lastmod>
    <changefreq>%s</changefreq>
    <priority>%.1f</priority>
  </url>
`, h.siteURL, postPath(post), post.UpdatedAt.Format("2006-01-02"), changefreq, priority)
	}
	b.WriteString(`</urlset>`)

	out := b.String()
	utils.GetCache().Set(sitemapCacheKey, out, time.Hour)
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(out))
}

// RSSFeed 最新 20 篇文章的 RSS 2.0 feed
func (h *SEOHandler) RSSFeed(c *gin.Context) {
	if cached, hit := utils.GetCache().Get(feedCacheKey).(string); hit {
		c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(cached))
		return
	}

	var posts []models.Post
	db.DB.Preload("Category").Order("created_at DESC").Limit(20).Find(&posts)

	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">
  <channel>
    <title>Campus News</title>
    <link>%s</link>
    <description>Latest news from campus</description>
    <lastBuildDate>%s</lastBuildDate>
    <atom:link href="%s/feed.xml" rel="self" type="application/rss+xml"/>
`, h.siteURL, time.Now().Format(time.RFC1123Z), h.siteURL)

	for i := range posts {
		post := &posts[i]
		link := h.siteURL + postPath(post)
		fmt.Fprintf(&b, `    <item>
      <title>%s</title>
      <link>%s</link>
      <description>%s</description>
      <category>%s</category>
      <pubDate>%s</pubDate>
      <guid isPermaLink="true">%s</guid>
    </item>
`, html.EscapeString(post.Title), link, html.EscapeString(post.Excerpt),
			html.EscapeString(post.Category.Name), post.CreatedAt.Format(time.RFC1123Z), link)
	}
	b.WriteString("  </channel>\n</rss>")

	out := b.String()
	utils.GetCache().Set(feedCacheKey, out, 10*time.Minute)
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(out))
}
