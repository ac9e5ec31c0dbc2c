package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

type User struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Username      string         `gorm:"uniqueIndex;not null" json:"username"`
	Email         string         `gorm:"uniqueIndex;not null" json:"email"`
	Password      *string        `json:"-"` // nil for Google accounts
	Role          string         `gorm:"type:varchar(10);not null;default:'user'" json:"role"`
	Provider      string         `gorm:"type:varchar(10);not null;default:'email'" json:"provider"`
	GoogleID      *string        `gorm:"uniqueIndex" json:"-"`
	Posts         []Post         `json:"posts,omitempty" gorm:"foreignKey:UserID"`
	RefreshTokens []RefreshToken `json:"-" gorm:"foreignKey:UserID"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
