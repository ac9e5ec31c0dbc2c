package models

import "time"

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Post is a submitted text and/or image together with its sentiment result.
type Post struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"userId"`
	Username   string    `gorm:"not null;index" json:"username"`
	Content    string    `gorm:"type:text" json:"content"`
	ImageKey   string    `json:"-"`
	ImageName  string    `json:"imageName,omitempty"`
	Sentiment  string    `gorm:"type:varchar(10);not null;index" json:"sentiment"`
	Confidence float64   `gorm:"not null;default:0" json:"confidence"`
	Reviewed   bool      `gorm:"not null;default:false;index" json:"reviewed"`
	CreatedAt  time.Time `gorm:"index" json:"timestamp"`
	Alert      *Alert    `json:"alert,omitempty" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

func (Post) TableName() string {
	return "user_posts"
}

func (p *Post) HasImage() bool {
	return p.ImageKey != ""
}

func (p *Post) IsFlagged() bool {
	return p.Sentiment == SentimentNegative
}
