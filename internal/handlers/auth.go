package handlers

import (
	"errors"
	"net/http"
	"strings"

	"campusfeed/internal/db"
	"campusfeed/internal/middleware"
	"campusfeed/internal/models"
	"campusfeed/internal/services"
	"campusfeed/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	tokens *services.TokenService
}

func NewAuthHandler(tokens *services.TokenService) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// validateNewUser 校验注册/创建用户的字段
func validateNewUser(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return services.InvalidInput("Please enter a valid email address.")
	}
	if len(password) < 6 {
		return services.InvalidInput("Password must be at least 6 characters.")
	}
	var count int64
	db.DB.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return services.ErrConflict
	}
	return nil
}

func createUser(email, password, fullName, role string) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Email: email, Password: hash, FullName: strings.TrimSpace(fullName), Role: role}
	if err := db.DB.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentials
	if !bindJSON(c, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if err := validateNewUser(email, req.Password); err != nil {
		if errors.Is(err, services.ErrConflict) {
			fail(c, http.StatusConflict, "This email is already registered.")
			return
		}
		handleError(c, err)
		return
	}

	user, err := createUser(email, req.Password, req.FullName, models.RoleUser)
	if err != nil {
		handleError(c, err)
		return
	}
	h.signIn(c, user, http.StatusCreated)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentials
	if !bindJSON(c, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		handleError(c, err)
		return
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		fail(c, http.StatusUnauthorized, "Invalid email or password.")
		return
	}
	h.signIn(c, &user, http.StatusOK)
}

// signIn 写入 session 并签发 token
func (h *AuthHandler) signIn(c *gin.Context, user *models.User, code int) {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		handleError(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(code, gin.H{"success": true, "data": gin.H{"token": token, "user": user}})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = session.Save()
	ok(c, nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	ok(c, middleware.CurrentUser(c))
}
