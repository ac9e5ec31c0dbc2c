package models

import "time"

const (
	AlertSourceManual = "manual"
	AlertSourceAuto   = "auto"
	AlertSourceSystem = "system"

	SystemReviewer = "system"
)

// Alert records the review of a flagged post. A post has at most one alert.
type Alert struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID        uint      `gorm:"not null;uniqueIndex" json:"postId"`
	AdminUsername string    `gorm:"not null" json:"adminUsername"`
	Comment       string    `gorm:"type:text" json:"comment"`
	Source        string    `gorm:"type:varchar(10);not null;default:'manual'" json:"source"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"reviewedOn"`
}
