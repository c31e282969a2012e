package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"campusfeed/internal/db"
	"campusfeed/internal/middleware"
	"campusfeed/internal/models"
	"campusfeed/internal/services"
	"campusfeed/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	featuredCacheKey = "posts:featured"
	sessionHeader    = "X-Session-ID"
)

type PostHandler struct {
	crawler *services.CrawlerService
}

func NewPostHandler() *PostHandler {
	return &PostHandler{crawler: services.NewCrawlerService()}
}

// PostDetail 文章详情，附带渲染后的 HTML
type PostDetail struct {
	models.Post
	ContentHTML template.HTML `json:"content_html"`
}

type postInput struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	Excerpt    *string `json:"excerpt"`
	ImageURL   *string `json:"image_url"`
	Author     *string `json:"author"`
	CategoryID *uint   `json:"category_id"`
	Featured   *bool   `json:"featured"`
}

// fillLiked 批量填充当前用户的点赞状态
func fillLiked(c *gin.Context, posts []models.Post) {
	user := middleware.CurrentUser(c)
	if user == nil || len(posts) == 0 {
		return
	}
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	liked := services.LikedPostIDs(user.ID, ids)
	for i := range posts {
		posts[i].Liked = liked[posts[i].ID]
	}
}

// renderPostContent 内容里有 HTML 标签则只做清洗，否则按 Markdown 渲染
func renderPostContent(content string) template.HTML {
	var rendered template.HTML
	if utils.ContainsHTML(content) {
		rendered = utils.SanitizeHTML(content)
	} else {
		rendered = utils.RenderMarkdown(content)
	}
	return utils.EnhanceHTMLContent(string(rendered))
}

// List 文章列表：分类、精选、搜索、排序、分页
func (h *PostHandler) List(c *gin.Context) {
	page, perPage := pageParams(c)

	category := strings.TrimSpace(c.Query("category"))
	featured := c.Query("featured") == "true" || c.Query("featured") == "1"
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))

	filter := func(tx *gorm.DB) *gorm.DB {
		if category != "" {
			if id, isID := utils.ParseID(category); isID {
				tx = tx.Where("category_id = ?", id)
			} else {
				tx = tx.Where("category_id IN (?)", db.DB.Model(&models.Category{}).Select("id").Where("slug = ?", category))
			}
		}
		if featured {
			tx = tx.Where("featured = ?", true)
		}
		if q != "" {
			like := "%" + q + "%"
			tx = tx.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", like, like)
		}
		return tx
	}

	var total int64
	if err := db.DB.Model(&models.Post{}).Scopes(filter).Count(&total).Error; err != nil {
		handleError(c, err)
		return
	}

	order := "created_at DESC"
	switch c.Query("sort") {
	case "popular":
		order = "views DESC, created_at DESC"
	case "trending":
		order = "score DESC, created_at DESC"
	case "liked":
		order = "likes DESC, created_at DESC"
	}

	posts := make([]models.Post, 0)
	if err := db.DB.Scopes(filter).Preload("Category").Order(order).
		Limit(perPage).Offset((page - 1) * perPage).Find(&posts).Error; err != nil {
		handleError(c, err)
		return
	}
	fillLiked(c, posts)

	ok(c, gin.H{"items": posts, "pagination": newPagination(page, perPage, total)})
}

// Featured 最多 3 篇精选文章
// 只缓存 ID，点赞和浏览数每次从数据库读取
func (h *PostHandler) Featured(c *gin.Context) {
	ids, hit := utils.GetCache().Get(featuredCacheKey).([]uint)
	if !hit {
		if err := db.DB.Model(&models.Post{}).Where("featured = ?", true).
			Order("created_at DESC").Limit(3).Pluck("id", &ids).Error; err != nil {
			handleError(c, err)
			return
		}
		utils.GetCache().Set(featuredCacheKey, ids, time.Minute)
	}

	posts := make([]models.Post, 0, len(ids))
	if len(ids) > 0 {
		if err := db.DB.Preload("Category").Where("id IN ?", ids).
			Order("created_at DESC").Find(&posts).Error; err != nil {
			handleError(c, err)
			return
		}
	}
	fillLiked(c, posts)
	ok(c, posts)
}

// Detail 文章详情并记录一次浏览
func (h *PostHandler) Detail(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}

	sessionID := strings.TrimSpace(c.GetHeader(sessionHeader))
	if sessionID == "" || len(sessionID) > 64 {
		sessionID = uuid.NewString()
	}
	c.Header(sessionHeader, sessionID)

	if err := services.RecordView(id, sessionID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			fail(c, http.StatusNotFound, "Post not found.")
			return
		}
		handleError(c, err)
		return
	}

	var post models.Post
	if err := db.DB.Preload("Category").First(&post, id).Error; err != nil {
		handleError(c, err)
		return
	}
	if user := middleware.CurrentUser(c); user != nil {
		post.Liked = services.LikedPostIDs(user.ID, []uint{post.ID})[post.ID]
	}

	ok(c, PostDetail{Post: post, ContentHTML: renderPostContent(post.Content)})
}

// ToggleLike 点赞/取消点赞
func (h *PostHandler) ToggleLike(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	result, err := services.ToggleLike(id, middleware.CurrentUser(c).ID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			fail(c, http.StatusNotFound, "Post not found.")
			return
		}
		handleError(c, err)
		return
	}
	ok(c, result)
}

// AdminList 后台文章列表，最新在前
func (h *PostHandler) AdminList(c *gin.Context) {
	posts := make([]models.Post, 0)
	if err := db.DB.Preload("Category").Order("created_at DESC").Find(&posts).Error; err != nil {
		handleError(c, err)
		return
	}
	ok(c, posts)
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func categoryExists(id uint) bool {
	var count int64
	db.DB.Model(&models.Category{}).Where("id = ?", id).Count(&count)
	return count > 0
}

// Create 创建文章，必填 title/content/excerpt/category_id
func (h *PostHandler) Create(c *gin.Context) {
	var req postInput
	if !bindJSON(c, &req) {
		return
	}

	post := models.Post{
		Title:    trimmed(req.Title),
		Content:  trimmed(req.Content),
		Excerpt:  trimmed(req.Excerpt),
		ImageURL: trimmed(req.ImageURL),
		Author:   trimmed(req.Author),
	}
	if req.CategoryID != nil {
		post.CategoryID = *req.CategoryID
	}
	if req.Featured != nil {
		post.Featured = *req.Featured
	}
	if post.Title == "" || post.Content == "" || post.Excerpt == "" || post.CategoryID == 0 {
		fail(c, http.StatusBadRequest, "Please fill in all required fields.")
		return
	}
	if !categoryExists(post.CategoryID) {
		fail(c, http.StatusBadRequest, "Category not found.")
		return
	}
	if post.Author == "" {
		post.Author = "Admin"
		if admin := middleware.CurrentUser(c); admin != nil {
			post.Author = admin.DisplayName()
		}
	}
	post.Slug = utils.Slugify(post.Title)

	if err := db.DB.Create(&post).Error; err != nil {
		handleError(c, err)
		return
	}
	h.invalidate()
	created(c, post)
}

// Update 部分更新，标题变化时重新生成 slug
func (h *PostHandler) Update(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var post models.Post
	if err := db.DB.First(&post, id).Error; err != nil {
		fail(c, http.StatusNotFound, "Post not found.")
		return
	}

	var req postInput
	if !bindJSON(c, &req) {
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := trimmed(req.Title)
		if title == "" {
			fail(c, http.StatusBadRequest, "Please fill in all required fields.")
			return
		}
		if title != post.Title {
			updates["title"] = title
			updates["slug"] = utils.Slugify(title)
		}
	}
	for column, value := range map[string]*string{"content": req.Content, "excerpt": req.Excerpt} {
		if value == nil {
			continue
		}
		if trimmed(value) == "" {
			fail(c, http.StatusBadRequest, "Please fill in all required fields.")
			return
		}
		updates[column] = trimmed(value)
	}
	if req.ImageURL != nil {
		updates["image_url"] = trimmed(req.ImageURL)
	}
	if req.Author != nil && trimmed(req.Author) != "" {
		updates["author"] = trimmed(req.Author)
	}
	if req.Featured != nil {
		updates["featured"] = *req.Featured
	}
	if req.CategoryID != nil {
		if !categoryExists(*req.CategoryID) {
			fail(c, http.StatusBadRequest, "Category not found.")
			return
		}
		updates["category_id"] = *req.CategoryID
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&post).Updates(updates).Error; err != nil {
			handleError(c, err)
			return
		}
	}
	db.DB.Preload("Category").First(&post, post.ID)
	h.invalidate()
	ok(c, post)
}

// Delete 删除文章及其点赞和浏览记录
func (h *PostHandler) Delete(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}

	var deleted int64
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostViewEvent{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		handleError(c, err)
		return
	}
	if deleted == 0 {
		fail(c, http.StatusNotFound, "Post not found.")
		return
	}
	h.invalidate()
	ok(c, nil)
}

// Import 抓取外部文章用于预填表单，不保存
func (h *PostHandler) Import(c *gin.Context) {
	var req struct {
		URL string `json:"url"`
	}
	if !bindJSON(c, &req) {
		return
	}
	draft, err := h.crawler.ImportArticle(c.Request.Context(), req.URL)
	if err != nil {
		handleError(c, err)
		return
	}
	ok(c, draft)
}

func (h *PostHandler) invalidate() {
	utils.GetCache().Delete(featuredCacheKey)
	utils.GetCache().DeletePrefix("seo:")
}
