package models

import (
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	Email                 string     `gorm:"uniqueIndex;not null" json:"email"`
	Password              string     `gorm:"not null" json:"-"` // Hash
	FullName              string     `gorm:"size:120" json:"full_name"`
	AvatarURL             string     `json:"avatar_url"`
	Role                  string     `gorm:"size:20;default:'user';not null" json:"role"` // user, admin
	PushToken             *string    `gorm:"index" json:"push_token,omitempty"`
	OnboardingCompletedAt *time.Time `json:"onboarding_completed_at"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// DisplayName falls back to the mailbox part of the email.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	for i := 0; i < len(u.Email); i++ {
		if u.Email[i] == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}
