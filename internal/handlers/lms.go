package handlers

import (
	"errors"
	"net/http"
	"strings"

	"campusfeed/internal/db"
	"campusfeed/internal/models"
	"campusfeed/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LMSHandler 学习内容：课程分类 -> 课程 -> 模块 -> 笔记
type LMSHandler struct{}

func NewLMSHandler() *LMSHandler {
	return &LMSHandler{}
}

// noteCounts 批量统计模块下的笔记数量
func noteCounts(modules []models.Module) {
	if len(modules) == 0 {
		return
	}
	ids := make([]uint, len(modules))
	for i, m := range modules {
		ids[i] = m.ID
	}

	type countResult struct {
		ModuleID uint
		Count    int
	}
	var results []countResult
	db.DB.Model(&models.Note{}).
		Select("module_id, COUNT(*) as count").
		Where("module_id IN ?", ids).
		Group("module_id").
		Scan(&results)

	counts := make(map[uint]int, len(results))
	for _, r := range results {
		counts[r.ModuleID] = r.Count
	}
	for i := range modules {
		modules[i].NoteCount = counts[modules[i].ID]
	}
}

// deleteModules removes the modules and every note under them.
func deleteModules(tx *gorm.DB, moduleIDs []uint) error {
	if len(moduleIDs) == 0 {
		return nil
	}
	if err := tx.Where("module_id IN ?", moduleIDs).Delete(&models.Note{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", moduleIDs).Delete(&models.Module{}).Error
}

// deleteCourses removes the courses with their modules and notes.
func deleteCourses(tx *gorm.DB, courseIDs []uint) error {
	if len(courseIDs) == 0 {
		return nil
	}
	var moduleIDs []uint
	if err := tx.Model(&models.Module{}).Where("course_id IN ?", courseIDs).Pluck("id", &moduleIDs).Error; err != nil {
		return err
	}
	if err := deleteModules(tx, moduleIDs); err != nil {
		return err
	}
	return tx.Where("id IN ?", courseIDs).Delete(&models.Course{}).Error
}

// ---- public browse ----

func (h *LMSHandler) Categories(c *gin.Context) {
	categories := make([]models.CourseCategory, 0)
	if err := db.DB.Order("name ASC").Find(&categories).Error; err != nil {
		handleError(c, err)
		return
	}
	ok(c, categories)
}

func (h *LMSHandler) CategoryCourses(c *gin.Context) {
	var category models.CourseCategory
	if err := db.DB.Where("slug = ?", c.Param("slug")).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Category not found.")
			return
		}
		handleError(c, err)
		return
	}

	courses := make([]models.Course, 0)
	if err := db.DB.Where("category_id = ?", category.ID).Order("title ASC").Find(&courses).Error; err != nil {
		handleError(c, err)
		return
	}
	for i := range courses {
		courses[i].Category = category
	}
	ok(c, gin.H{"category": category, "courses": courses})
}

func (h *LMSHandler) Course(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var course models.Course
	if err := db.DB.Preload("Category").First(&course, id).Error; err != nil {
		fail(c, http.StatusNotFound, "Course not found.")
		return
	}

	modules := make([]models.Module, 0)
	if err := db.DB.Where("course_id = ?", course.ID).Order("created_at ASC").Find(&modules).Error; err != nil {
		handleError(c, err)
		return
	}
	noteCounts(modules)
	ok(c, gin.H{"course": course, "modules": modules})
}

func (h *LMSHandler) Module(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var module models.Module
	if err := db.DB.Preload("Course").First(&module, id).Error; err != nil {
		fail(c, http.StatusNotFound, "Module not found.")
		return
	}
	module.CourseTitle = module.Course.Title

	notes := make([]models.Note, 0)
	if err := db.DB.Where("module_id = ?", module.ID).Order("created_at ASC").Find(&notes).Error; err != nil {
		handleError(c, err)
		return
	}
	module.NoteCount = len(notes)
	ok(c, gin.H{"module": module, "notes": notes})
}

// ---- admin: course categories ----

type courseCategoryInput struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (h *LMSHandler) AdminCategories(c *gin.Context) {
	h.Categories(c)
}

func (h *LMSHandler) CreateCategory(c *gin.Context) {
	var req courseCategoryInput
	if !bindJSON(c, &req) {
		return
	}
	category := models.CourseCategory{Name: strings.TrimSpace(req.Name), Slug: strings.TrimSpace(req.Slug)}
	if category.Slug == "" {
		category.Slug = utils.Slugify(category.Name)
	}
	if category.Name == "" || category.Slug == "" {
		fail(c, http.StatusBadRequest, "Please fill in all required fields.")
		return
	}
	if slugTaken(&models.CourseCategory{}, category.Slug, 0) {
		fail(c, http.StatusConflict, "A category with this slug already exists.")
		return
	}
	if err := db.DB.Create(&category).Error; err != nil {
		handleError(c, err)
		return
	}
	created(c, category)
}

func (h *LMSHandler) UpdateCategory(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var category models.CourseCategory
	if err := db.DB.First(&category, id).Error; err != nil {
		fail(c, http.StatusNotFound, "Category not found.")
		return
	}
	var req courseCategoryInput
	if !bindJSON(c, &req) {
		return
	}
	name, slug := strings.TrimSpace(req.Name), strings.TrimSpace(req.Slug)
	if name == "" || slug == "" {
		fail(c, http.StatusBadRequest, "Please fill in all required fields.")
		return
	}
	if slugTaken(&models.CourseCategory{}, slug, category.ID) {
		fail(c, http.StatusConflict, "A category with this slug already exists.")
		return
	}
	category.Name, category.Slug = name, slug
	if err := db.DB.Save(&category).Error; err != nil {
		handleError(c, err)
		return
	}
	ok(c, category)
}

func (h *LMSHandler) DeleteCategory(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var deleted int64
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var courseIDs []uint
		if err := tx.Model(&models.Course{}).Where("category_id = ?", id).Pluck("id", &courseIDs).Error; err != nil {
			return err
		}
		if err := deleteCourses(tx, courseIDs); err != nil {
			return err
		}
		res := tx.Delete(&models.CourseCategory{}, id)
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		handleError(c, err)
		return
	}
	if deleted == 0 {
		fail(c, http.StatusNotFound, "Category not found.")
		return
	}
	ok(c, nil)
}

// ---- admin: courses ----

type courseInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  uint   `json:"category_id"`
}

func (in courseInput) validate() bool {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" || in.CategoryID == 0 {
		return false
	}
	var count int64
	db.DB.Model(&models.CourseCategory{}).Where("id = ?", in.CategoryID).Count(&count)
	return count > 0
}

func (h *LMSHandler) AdminCourses(c *gin.Context) {
	query := db.DB.Preload("Category").Order("created_at DESC")
	if categoryID, isID := utils.ParseID(c.Query("category_id")); isID {
		query = query.Where("category_id = ?", categoryID)
	}
	courses := make([]models.Course, 0)
	if err := query.Find(&courses).Error; err != nil {
		handleError(c, err)
		return
	}
	ok(c, courses)
}

func (h *LMSHandler) CreateCourse(c *gin.Context) {
	var req courseInput
	if !bindJSON(c, &req) {
		return
	}
	if !req.validate() {
		fail(c, http.StatusBadRequest, "Please fill in all required fields.")
		return
	}
	course := models.Course{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		CategoryID:  req.CategoryID,
	}
	if err := db.DB.Create(&course).Error; err != nil {
		handleError(c, err)
		return
	}
	created(c, course)
}

func (h *LMSHandler) UpdateCourse(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var course models.Course
	if err := db.DB.First(&course, id).Error; err != nil {
		fail(c, http.StatusNotFound, "Course not found.")
		return
	}
	var req courseInput
	if !bindJSON(c, &req) {
		return
	}
	if !req.validate() {
		fail(c, http.StatusBadRequest, "Please fill in all required fields.")
		return
	}
	err := db.DB.Model(&course).Updates(map[string]interface{}{
		"title":       strings.TrimSpace(req.Title),
		"description": strings.TrimSpace(req.Description),
		"category_id": req.CategoryID,
	}).Error
	if err != nil {
		handleError(c, err)
		return
	}
	db.DB.Preload("Category").First(&course, course.ID)
	ok(c, course)
}

func (h *LMSHandler) DeleteCourse(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var course models.Course
	if err := db.DB.First(&course, id).Error; err != nil {
		fail(c, http.StatusNotFound, "Course not found.")
		return
	}
	if err := db.DB.Transaction(func(tx *gorm.DB) error {
		return deleteCourses(tx, []uint{course.ID})
	}); err != nil {
		handleError(c, err)
		return
	}
	ok(c, nil)
}

// ---- admin: modules ----

type moduleInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CourseID    uint   `json:"course_id"`
}

func (in moduleInput) validate() bool {
	if strings.TrimSpace(in.Title) == "" || in.CourseID == 0 {
		return false
	}
	var count int64
	db.DB.Model(&models.Course{}).Where("id = ?", in.CourseID).Count(&count)
	return count > 0
}

// AdminModules 模块列表，带课程名与笔记数
func (h *LMSHandler) AdminModules(c *gin.Context) {
	query := db.DB.Preload("Course").Order("created_at DESC")
	if courseID, isID := utils.ParseID(c.Query("course_id")); isID {
		query = query.Where("course_id = ?", courseID)
	}
	modules := make([]models.Module, 0)
	if err := query.Find(&modules).Error; err != nil {
		handleError(c, err)
		return
	}
	for i := range modules {
		modules[i].CourseTitle = modules[i].Course.Title
	}
	noteCounts(modules)
	ok(c, modules)
}

func (h *LMSHandler) CreateModule(c *gin.Context) {
	var req moduleInput
	if !bindJSON(c, &req) {
		return
	}
	if !req.validate() {
		fail(c, http.StatusBadRequest, "Please fill in all required fields.")
		return
	}
	module := models.Module{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		CourseID:    req.CourseID,
	}
	if err := db.DB.Create(&module).Error; err != nil {
		handleError(c, err)
		return
	}
	created(c, module)
}

func (h *LMSHandler) UpdateModule(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var module models.Module
	if err := db.DB.First(&module, id).Error; err != nil {
		fail(c, http.StatusNotFound, "Module not found.")
		return
	}
	var req moduleInput
	if !bindJSON(c, &req) {
		return
	}
	if !req.validate() {
		fail(c, http.StatusBadRequest, "Please fill in all required fields.")
		return
	}
	err := db.DB.Model(&module).Updates(map[string]interface{}{
		"title":       strings.TrimSpace(req.Title),
		"description": strings.TrimSpace(req.Description),
		"course_id":   req.CourseID,
	}).Error
	if err != nil {
		handleError(c, err)
		return
	}
	db.DB.First(&module, module.ID)
	ok(c, module)
}

func (h *LMSHandler) DeleteModule(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var module models.Module
	if err := db.DB.First(&module, id).Error; err != nil {
		fail(c, http.StatusNotFound, "Module not found.")
		return
	}
	if err := db.DB.Transaction(func(tx *gorm.DB) error {
		return deleteModules(tx, []uint{module.ID})
	}); err != nil {
		handleError(c, err)
		return
	}
	ok(c, nil)
}
