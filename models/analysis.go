package models

import "time"

const (
	DataTypePost = "post"
	DataTypeText = "text"
)

// AnalysisRecord duplicates each analysis result for aggregate statistics.
type AnalysisRecord struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DataType   string    `gorm:"type:varchar(10);not null" json:"dataType"`
	PostID     *uint     `gorm:"index" json:"postId,omitempty"`
	Sentiment  string    `gorm:"type:varchar(10);not null;index" json:"sentiment"`
	Confidence float64   `gorm:"not null;default:0" json:"confidence"`
	CreatedAt  time.Time `json:"timestamp"`
}

func (AnalysisRecord) TableName() string {
	return "analysis"
}
