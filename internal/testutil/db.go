// Package testutil wires an in-memory sqlite database into db.DB for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"campusfeed/internal/db"
	"campusfeed/internal/models"
	"campusfeed/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupDB opens a fresh shared in-memory database for the test, migrates it and installs it as db.DB.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))

	prev := db.DB
	db.DB = gdb
	t.Cleanup(func() {
		db.DB = prev
		_ = sqlDB.Close()
	})
	utils.GetCache().Purge()
	return gdb
}

// CreateUser inserts a user with a bcrypt-hashed password.
func CreateUser(t *testing.T, email, password, role string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	user := &models.User{Email: email, Password: hash, FullName: strings.Split(email, "@")[0], Role: role}
	require.NoError(t, db.DB.Create(user).Error)
	return user
}

// CreateCategory inserts a news category.
func CreateCategory(t *testing.T, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Slug: utils.Slugify(name), Color: "#000000"}
	require.NoError(t, db.DB.Create(category).Error)
	return category
}

// CreatePost inserts a post in the given category.
func CreatePost(t *testing.T, categoryID uint, title string) *models.Post {
	t.Helper()
	post := &models.Post{
		CategoryID: categoryID,
		Title:      title,
		Content:    "Body of " + title,
		Excerpt:    "About " + title,
		Author:     "Admin",
		Slug:       utils.Slugify(title),
	}
	require.NoError(t, db.DB.Create(post).Error)
	return post
}
