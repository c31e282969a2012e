package models

import (
	"time"
)

// News is a broadcast item that can be pushed to every registered device.
type News struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"not null" json:"title"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	GUID      *string    `gorm:"uniqueIndex" json:"guid,omitempty"` // 来自 RSS 导入时的唯一标识
	Link      string     `json:"link,omitempty"`
	Sent      bool       `gorm:"default:false" json:"sent"`
	SentAt    *time.Time `json:"sent_at"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
