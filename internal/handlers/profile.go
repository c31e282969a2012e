package handlers

import (
	"net/http"
	"strings"
	"time"

	"campusfeed/internal/db"
	"campusfeed/internal/middleware"
	"campusfeed/internal/models"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

// SavePushToken 保存设备推送 token
func (h *ProfileHandler) SavePushToken(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if !bindJSON(c, &req) {
		return
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		fail(c, http.StatusBadRequest, "Push token is required.")
		return
	}

	user := middleware.CurrentUser(c)
	if err := db.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("push_token", token).Error; err != nil {
		handleError(c, err)
		return
	}
	ok(c, gin.H{"push_token": token})
}

func (h *ProfileHandler) Onboarding(c *gin.Context) {
	user := middleware.CurrentUser(c)
	ok(c, gin.H{"completed": user.OnboardingCompletedAt != nil, "completed_at": user.OnboardingCompletedAt})
}

func (h *ProfileHandler) CompleteOnboarding(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user.OnboardingCompletedAt == nil {
		now := time.Now()
		if err := db.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("onboarding_completed_at", &now).Error; err != nil {
			handleError(c, err)
			return
		}
		user.OnboardingCompletedAt = &now
	}
	ok(c, gin.H{"completed": true, "completed_at": user.OnboardingCompletedAt})
}

func (h *ProfileHandler) ResetOnboarding(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := db.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("onboarding_completed_at", nil).Error; err != nil {
		handleError(c, err)
		return
	}
	ok(c, gin.H{"completed": false})
}
