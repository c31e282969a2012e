package handlers

import (
	"errors"
	"net/http"
	"strings"

	"campusfeed/internal/db"
	"campusfeed/internal/models"
	"campusfeed/internal/services"

	"github.com/gin-gonic/gin"
)

// NewsHandler 新闻公告与推送
type NewsHandler struct {
	push    *services.PushService
	fetcher *services.RSSFetcher
}

func NewNewsHandler(push *services.PushService, fetcher *services.RSSFetcher) *NewsHandler {
	return &NewsHandler{push: push, fetcher: fetcher}
}

type newsInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// List 最新在前
func (h *NewsHandler) List(c *gin.Context) {
	news := make([]models.News, 0)
	if err := db.DB.Order("created_at DESC").Find(&news).Error; err != nil {
		handleError(c, err)
		return
	}
	ok(c, news)
}

func (h *NewsHandler) Create(c *gin.Context) {
	var req newsInput
	if !bindJSON(c, &req) {
		return
	}
	news := models.News{Title: strings.TrimSpace(req.Title), Content: strings.TrimSpace(req.Content)}
	if news.Title == "" || news.Content == "" {
		fail(c, http.StatusBadRequest, "Please fill in all fields")
		return
	}
	if err := db.DB.Create(&news).Error; err != nil {
		handleError(c, err)
		return
	}
	created(c, news)
}

func (h *NewsHandler) Update(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var news models.News
	if err := db.DB.First(&news, id).Error; err != nil {
		fail(c, http.StatusNotFound, "News not found.")
		return
	}
	var req newsInput
	if !bindJSON(c, &req) {
		return
	}
	title, content := strings.TrimSpace(req.Title), strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		fail(c, http.StatusBadRequest, "Please fill in all fields")
		return
	}
	if err := db.DB.Model(&news).Updates(map[string]interface{}{"title": title, "content": content}).Error; err != nil {
		handleError(c, err)
		return
	}
	news.Title, news.Content = title, content
	ok(c, news)
}

func (h *NewsHandler) Delete(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	res := db.DB.Delete(&models.News{}, id)
	if res.Error != nil {
		handleError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		fail(c, http.StatusNotFound, "News not found.")
		return
	}
	ok(c, nil)
}

// Send 推送给所有设备，全部成功才标记为已发送
func (h *NewsHandler) Send(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	report, err := h.push.SendNews(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			fail(c, http.StatusNotFound, "News not found.")
			return
		}
		if report != nil && errors.Is(err, services.ErrUpstream) {
			c.JSON(http.StatusBadGateway, gin.H{
				"success": false,
				"error":   "Failed to send notification",
				"data":    report,
			})
			return
		}
		handleError(c, err)
		return
	}
	ok(c, report)
}

// Import 从 RSS 源导入新闻
func (h *NewsHandler) Import(c *gin.Context) {
	var req struct {
		FeedURL string `json:"feed_url"`
		Limit   int    `json:"limit"`
	}
	if !bindJSON(c, &req) {
		return
	}
	count, err := h.fetcher.ImportNews(c.Request.Context(), req.FeedURL, req.Limit)
	if err != nil {
		handleError(c, err)
		return
	}
	ok(c, gin.H{"created": count})
}
