package db

import (
	"log"
	"strings"

	"campusfeed/internal/config"
	"campusfeed/internal/models"
	"campusfeed/internal/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	Seed(DB, cfg.AdminEmail, cfg.AdminPassword)
}

// Migrate creates or updates every table the application uses.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Post{},
		&models.PostLike{},
		&models.PostViewEvent{},
		// LMS 相关模型
		&models.CourseCategory{},
		&models.Course{},
		&models.Module{},
		&models.Note{},
		&models.News{},
	)
}

// Seed inserts the default categories on an empty database and the bootstrap admin when credentials are given.
func Seed(gdb *gorm.DB, adminEmail, adminPassword string) {
	seedCategories(gdb)
	if adminEmail != "" && adminPassword != "" {
		seedAdmin(gdb, adminEmail, adminPassword)
	}
}

func seedCategories(gdb *gorm.DB) {
	var count int64
	gdb.Model(&models.Category{}).Count(&count)
	if count > 0 {
		log.Println("Categories already seeded, skipping")
		return
	}

	categories := []models.Category{
		{Name: "Announcements", Slug: "announcements", Description: "Official college announcements", Color: "#1E88E5"},
		{Name: "Events", Slug: "events", Description: "Campus events and activities", Color: "#FF5722"},
		{Name: "Academics", Slug: "academics", Description: "Exams, timetables and academic news", Color: "#43A047"},
		{Name: "Sports", Slug: "sports", Description: "Sports and games", Color: "#8E24AA"},
	}

	for _, category := range categories {
		if err := gdb.Create(&category).Error; err != nil {
			log.Printf("Failed to create category %s: %v", category.Name, err)
		}
	}
	log.Println("Initial categories created successfully")
}

func seedAdmin(gdb *gorm.DB, email, password string) {
	email = strings.ToLower(strings.TrimSpace(email))
	var count int64
	gdb.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		log.Printf("Failed to hash bootstrap admin password: %v", err)
		return
	}
	admin := models.User{Email: email, Password: hash, FullName: "Admin", Role: models.RoleAdmin}
	if err := gdb.Create(&admin).Error; err != nil {
		log.Printf("Failed to create bootstrap admin %s: %v", email, err)
		return
	}
	log.Printf("Bootstrap admin %s created", email)
}
