package handlers

import (
	"errors"
	"log"
	"net/http"

	"campusfeed/internal/middleware"
	"campusfeed/internal/services"
	"campusfeed/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultPerPage = 20
	maxPerPage     = 50
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}
	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path
	c.HTML(code, name, obj)
}

// RenderError 渲染简单错误页
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "error": message})
}

// handleError maps service errors to a status code and a static message.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		fail(c, http.StatusBadRequest, services.PublicMessage(err))
	case errors.Is(err, services.ErrNotFound):
		fail(c, http.StatusNotFound, "Not found.")
	case errors.Is(err, services.ErrConflict):
		fail(c, http.StatusConflict, "This record conflicts with existing data.")
	case errors.Is(err, services.ErrNoPushTokens):
		fail(c, http.StatusBadRequest, "No user tokens found")
	case errors.Is(err, services.ErrLLMDisabled):
		fail(c, http.StatusServiceUnavailable, "AI generation is not configured.")
	case errors.Is(err, services.ErrUpstream):
		log.Printf("⚠️ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		fail(c, http.StatusBadGateway, "The upstream service failed. Please try again.")
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		fail(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

// paramID parses a numeric path parameter, answering 400 when it is not one.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, valid := utils.ParseID(c.Param(name))
	if !valid {
		fail(c, http.StatusBadRequest, "Invalid id.")
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body, answering 400 on malformed input.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body.")
		return false
	}
	return true
}

// Pagination 分页信息
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func pageParams(c *gin.Context) (page, perPage int) {
	page = utils.StringToInt(c.Query("page"))
	if page < 1 {
		page = 1
	}
	perPage = utils.StringToInt(c.Query("per_page"))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func newPagination(page, perPage int, total int64) Pagination {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages == 0 {
		pages = 1
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: pages}
}
