package handlers

import (
	"errors"
	"net/http"
	"strings"

	"campusfeed/internal/db"
	"campusfeed/internal/middleware"
	"campusfeed/internal/models"
	"campusfeed/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler 管理后台：仪表盘统计与用户管理
type AdminHandler struct{}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// Analytics 仪表盘数据
func (h *AdminHandler) Analytics(c *gin.Context) {
	summary, err := services.Summary()
	if err != nil {
		handleError(c, err)
		return
	}
	ok(c, summary)
}

// ResetAnalytics 清空浏览与点赞数据
func (h *AdminHandler) ResetAnalytics(c *gin.Context) {
	if err := services.ResetAnalytics(); err != nil {
		handleError(c, err)
		return
	}
	ok(c, nil)
}

// ReconcileLikes 按点赞记录重算计数
func (h *AdminHandler) ReconcileLikes(c *gin.Context) {
	fixed, err := services.ReconcileLikes()
	if err != nil {
		handleError(c, err)
		return
	}
	ok(c, gin.H{"fixed": fixed})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users := make([]models.User, 0)
	if err := db.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		handleError(c, err)
		return
	}
	ok(c, users)
}

func validRole(role string) bool {
	return role == models.RoleAdmin || role == models.RoleUser
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req struct {
		credentials
		Role string `json:"role"`
	}
	if !bindJSON(c, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = models.RoleUser
	}
	if !validRole(role) {
		fail(c, http.StatusBadRequest, "Role must be admin or user.")
		return
	}

	if err := validateNewUser(email, req.Password); err != nil {
		if errors.Is(err, services.ErrConflict) {
			fail(c, http.StatusConflict, "This email is already registered.")
			return
		}
		handleError(c, err)
		return
	}
	user, err := createUser(email, req.Password, req.FullName, role)
	if err != nil {
		handleError(c, err)
		return
	}
	created(c, user)
}

// UpdateRole 修改用户角色，不允许管理员取消自己的管理权限
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if !validRole(req.Role) {
		fail(c, http.StatusBadRequest, "Role must be admin or user.")
		return
	}
	if me := middleware.CurrentUser(c); me.ID == id && req.Role != models.RoleAdmin {
		fail(c, http.StatusBadRequest, "You cannot remove your own admin role.")
		return
	}

	var user models.User
	if err := db.DB.First(&user, id).Error; err != nil {
		fail(c, http.StatusNotFound, "User not found.")
		return
	}
	if err := db.DB.Model(&user).Update("role", req.Role).Error; err != nil {
		handleError(c, err)
		return
	}
	ok(c, user)
}
