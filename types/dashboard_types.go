package types

import (
	"time"

	"github.com/sentiment-health/api-go/reports"
)

type UserDashboard struct {
	Total         int64                    `json:"total"`
	Counts        map[string]int64         `json:"counts"`
	AvgConfidence float64                  `json:"avgConfidence"`
	Breakdown     []reports.SentimentCount `json:"breakdown"`
	Unreviewed    []FlaggedPost            `json:"unreviewed"`
}

type FlaggedPost struct {
	ID         uint      `json:"id" gorm:"column:id"`
	Content    string    `json:"content" gorm:"column:content"`
	Sentiment  string    `json:"sentiment" gorm:"column:sentiment"`
	Confidence float64   `json:"confidence" gorm:"column:confidence"`
	Timestamp  time.Time `json:"timestamp" gorm:"column:created_at"`
}

type ReviewedAlert struct {
	PostID        uint      `json:"postId" gorm:"column:post_id"`
	Content       string    `json:"content" gorm:"column:content"`
	AdminUsername string    `json:"adminUsername" gorm:"column:admin_username"`
	Comment       string    `json:"comment" gorm:"column:comment"`
	ReviewedOn    time.Time `json:"reviewedOn" gorm:"column:reviewed_on"`
	Encouragement string    `json:"encouragement" gorm:"-"`
}

type UserAlerts struct {
	Pending  []FlaggedPost   `json:"pending"`
	Reviewed []ReviewedAlert `json:"reviewed"`
}

type AdminDashboard struct {
	TotalUsers     int64                    `json:"totalUsers"`
	FlaggedPosts   int64                    `json:"flaggedPosts"`
	Distribution   []reports.SentimentCount `json:"distribution"`
	PostsPerDay    []reports.DayCount       `json:"postsPerDay"`
	AvgPostsPerDay float64                  `json:"avgPostsPerDay"`
	UsersHelped    []reports.DayCount       `json:"usersHelped"`
	UserGrowth     []reports.DayCount       `json:"userGrowth"`
	Days           int                      `json:"days"`
}

type DeletedUser struct {
	ID        uint      `json:"id" gorm:"column:id"`
	Username  string    `json:"username" gorm:"column:username"`
	Email     string    `json:"email" gorm:"column:email"`
	DeletedOn time.Time `json:"deletedOn" gorm:"column:deleted_at"`
}
