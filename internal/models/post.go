package models

import (
	"time"
)

type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CategoryID uint      `gorm:"not null;index" json:"category_id"`
	Category   Category  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Title      string    `gorm:"not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Excerpt    string    `gorm:"type:text" json:"excerpt"`
	ImageURL   string    `json:"image_url"`
	Author     string    `gorm:"size:120" json:"author"`
	Slug       string    `gorm:"index" json:"slug"`
	Featured   bool      `gorm:"default:false;index" json:"featured"`
	Likes      int       `gorm:"default:0" json:"likes"` // mirror of COUNT(post_likes), written only by ToggleLike/ReconcileLikes
	Views      int       `gorm:"default:0" json:"views"`
	Score      float64   `gorm:"default:0;index" json:"score"` // 热度, see services/ranking.go
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// 非数据库字段，用于查询时填充
	Liked bool `gorm:"-" json:"liked"`
}

// PostLike 点赞关系 - one row per (post, user)
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_like_post_user" json:"post_id"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_like_post_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostViewEvent records one view of a post by a client session.
type PostViewEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	SessionID string    `gorm:"size:64;not null;index" json:"session_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
