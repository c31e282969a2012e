package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"campusfeed/internal/db"
	"campusfeed/internal/models"
	"campusfeed/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const categoriesCacheKey = "categories:all"

type CategoryHandler struct{}

func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

type categoryInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Color       string `json:"color"`
	ImageURL    string `json:"image_url"`
}

// List 按名称列出全部分类（带缓存）
func (h *CategoryHandler) List(c *gin.Context) {
	if cached, hit := utils.GetCache().Get(categoriesCacheKey).([]models.Category); hit {
		ok(c, cached)
		return
	}

	categories := make([]models.Category, 0)
	if err := db.DB.Order("name ASC").Find(&categories).Error; err != nil {
		handleError(c, err)
		return
	}
	utils.GetCache().Set(categoriesCacheKey, categories, 10*time.Minute)
	ok(c, categories)
}

// Show 分类详情及其文章，最新在前
func (h *CategoryHandler) Show(c *gin.Context) {
	var category models.Category
	if err := db.DB.Where("slug = ?", c.Param("slug")).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Category not found.")
			return
		}
		handleError(c, err)
		return
	}

	posts := make([]models.Post, 0)
	if err := db.DB.Preload("Category").Where("category_id = ?", category.ID).
		Order("created_at DESC").Find(&posts).Error; err != nil {
		handleError(c, err)
		return
	}
	fillLiked(c, posts)

	ok(c, gin.H{"category": category, "posts": posts})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryInput
	if !bindJSON(c, &req) {
		return
	}
	category := models.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        strings.TrimSpace(req.Slug),
		Description: strings.TrimSpace(req.Description),
		Color:       strings.TrimSpace(req.Color),
		ImageURL:    strings.TrimSpace(req.ImageURL),
	}
	if category.Slug == "" {
		category.Slug = utils.Slugify(category.Name)
	}
	if category.Name == "" || category.Slug == "" {
		fail(c, http.StatusBadRequest, "Please fill in all required fields.")
		return
	}
	if slugTaken(&models.Category{}, category.Slug, 0) {
		fail(c, http.StatusConflict, "A category with this slug already exists.")
		return
	}

	if err := db.DB.Create(&category).Error; err != nil {
		handleError(c, err)
		return
	}
	utils.GetCache().Delete(categoriesCacheKey)
	created(c, category)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var category models.Category
	if err := db.DB.First(&category, id).Error; err != nil {
		fail(c, http.StatusNotFound, "Category not found.")
		return
	}

	var req categoryInput
	if !bindJSON(c, &req) {
		return
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		category.Name = name
	}
	if slug := strings.TrimSpace(req.Slug); slug != "" {
		if slugTaken(&models.Category{}, slug, category.ID) {
			fail(c, http.StatusConflict, "A category with this slug already exists.")
			return
		}
		category.Slug = slug
	}
	category.Description = strings.TrimSpace(req.Description)
	category.Color = strings.TrimSpace(req.Color)
	category.ImageURL = strings.TrimSpace(req.ImageURL)

	if err := db.DB.Save(&category).Error; err != nil {
		handleError(c, err)
		return
	}
	utils.GetCache().Delete(categoriesCacheKey)
	ok(c, category)
}

// Delete 仍有文章引用时拒绝删除
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}

	var posts int64
	db.DB.Model(&models.Post{}).Where("category_id = ?", id).Count(&posts)
	if posts > 0 {
		fail(c, http.StatusConflict, "This category still has posts. Move or delete them first.")
		return
	}

	res := db.DB.Delete(&models.Category{}, id)
	if res.Error != nil {
		handleError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		fail(c, http.StatusNotFound, "Category not found.")
		return
	}
	utils.GetCache().Delete(categoriesCacheKey)
	ok(c, nil)
}

// slugTaken reports whether another row of the model already uses the slug.
func slugTaken(model interface{}, slug string, exceptID uint) bool {
	var count int64
	db.DB.Model(model).Where("slug = ? AND id <> ?", slug, exceptID).Count(&count)
	return count > 0
}
