package controllers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sentiment-health/api-go/models"
	"github.com/sentiment-health/api-go/reports"
	"github.com/sentiment-health/api-go/sentiment"
	"github.com/sentiment-health/api-go/types"
	"github.com/sentiment-health/api-go/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type DashboardController struct {
	DB       *gorm.DB
	Reporter *reports.Reporter
	Log      *logrus.Logger
}

func NewDashboardController(db *gorm.DB, reporter *reports.Reporter, log *logrus.Logger) *DashboardController {
	return &DashboardController{DB: db, Reporter: reporter, Log: log}
}

func (dc *DashboardController) pendingForUser(db *gorm.DB, userID uint) ([]types.FlaggedPost, error) {
	var posts []types.FlaggedPost
	err := db.Table("user_posts").
		Select("user_posts.id, user_posts.content, user_posts.sentiment, user_posts.confidence, user_posts.created_at").
		Joins("LEFT JOIN alerts ON alerts.post_id = user_posts.id").
		Where("user_posts.user_id = ? AND user_posts.sentiment = ? AND alerts.id IS NULL", userID, models.SentimentNegative).
		Order("user_posts.created_at DESC").
		Scan(&posts).Error
	return posts, err
}

func (dc *DashboardController) Dashboard(c *gin.Context) {
	user := utils.GetUser(c)
	ctx := c.Request.Context()

	breakdown, err := dc.Reporter.SentimentBreakdown(ctx, user.UserID)
	if err != nil {
		dc.Log.WithError(err).Error("user dashboard failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard", "success": false})
		return
	}

	out := types.UserDashboard{
		Counts: map[string]int64{
			models.SentimentPositive: 0,
			models.SentimentNegative: 0,
			models.SentimentNeutral:  0,
		},
		Breakdown: breakdown,
	}

	var weighted float64
	for _, b := range breakdown {
		out.Counts[b.Sentiment] = b.Count
		out.Total += b.Count
		weighted += b.AvgConfidence * float64(b.Count)
	}
	if out.Total > 0 {
		out.AvgConfidence = math.Round(weighted/float64(out.Total)*100) / 100
	}

	if out.Unreviewed, err = dc.pendingForUser(dc.DB.WithContext(ctx), user.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard", "success": false})
		return
	}
	if out.Unreviewed == nil {
		out.Unreviewed = []types.FlaggedPost{}
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: out})
}

func (dc *DashboardController) Alerts(c *gin.Context) {
	user := utils.GetUser(c)
	db := dc.DB.WithContext(c.Request.Context())

	pending, err := dc.pendingForUser(db, user.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load alerts", "success": false})
		return
	}

	var reviewed []types.ReviewedAlert
	err = db.Table("user_posts").
		Select("user_posts.id AS post_id, user_posts.content, alerts.admin_username, alerts.comment, alerts.updated_at AS reviewed_on").
		Joins("JOIN alerts ON alerts.post_id = user_posts.id").
		Where("user_posts.user_id = ?", user.UserID).
		Order("alerts.updated_at DESC").
		Scan(&reviewed).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load alerts", "success": false})
		return
	}

	for i := range reviewed {
		reviewed[i].Encouragement = sentiment.Encouragement(reviewed[i].Content)
	}
	if pending == nil {
		pending = []types.FlaggedPost{}
	}
	if reviewed == nil {
		reviewed = []types.ReviewedAlert{}
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    types.UserAlerts{Pending: pending, Reviewed: reviewed},
	})
}
