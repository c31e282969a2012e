package middleware

import (
	"net/http"
	"strings"

	"campusfeed/internal/db"
	"campusfeed/internal/models"
	"campusfeed/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"
const SessionUserKey = "user_id"

// LoadUser resolves the caller from a bearer token or the session cookie and stores it in the context.
func LoadUser(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID interface{}

		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			if id, err := tokens.Parse(strings.TrimPrefix(auth, "Bearer ")); err == nil {
				userID = id
			}
		} else {
			userID = sessions.Default(c).Get(SessionUserKey)
		}

		if userID != nil {
			var user models.User
			if err := db.DB.First(&user, userID).Error; err == nil {
				c.Set(CheckUserKey, &user)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the user LoadUser attached, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if u, ok := c.Get(CheckUserKey); ok {
		if user, ok := u.(*models.User); ok {
			return user
		}
	}
	return nil
}

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Please sign in first."})
			return
		}
		c.Next()
	}
}

// AdminRequired 仅允许 role=admin 的用户
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Please sign in first."})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Access denied. Admin privileges required."})
			return
		}
		c.Next()
	}
}
