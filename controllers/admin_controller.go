package controllers

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sentiment-health/api-go/reports"
	"github.com/sentiment-health/api-go/types"
	"github.com/sirupsen/logrus"
)

type AdminController struct {
	Reporter *reports.Reporter
	Log      *logrus.Logger
}

func NewAdminController(reporter *reports.Reporter, log *logrus.Logger) *AdminController {
	return &AdminController{Reporter: reporter, Log: log}
}

func (ac *AdminController) fail(c *gin.Context, err error) {
	ac.Log.WithError(err).Error("admin report failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics", "success": false})
}

func (ac *AdminController) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	days, err := strconv.Atoi(c.DefaultQuery("days", "10"))
	if err != nil || days < 1 || days > 365 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 365", "success": false})
		return
	}

	now := time.Now()
	since := now.UTC().AddDate(0, 0, -(days - 1))
	since = time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, time.UTC)

	out := types.AdminDashboard{Days: days}
	if out.TotalUsers, err = ac.Reporter.TotalUsers(ctx); err != nil {
		ac.fail(c, err)
		return
	}
	if out.FlaggedPosts, err = ac.Reporter.FlaggedCount(ctx); err != nil {
		ac.fail(c, err)
		return
	}
	if out.Distribution, err = ac.Reporter.SentimentBreakdown(ctx, 0); err != nil {
		ac.fail(c, err)
		return
	}

	posts, err := ac.Reporter.PostsPerDay(ctx, since)
	if err != nil {
		ac.fail(c, err)
		return
	}
	out.PostsPerDay = reports.FillDays(posts, since, now)

	var windowPosts int64
	for _, d := range out.PostsPerDay {
		windowPosts += d.Count
	}
	out.AvgPostsPerDay = math.Round(float64(windowPosts)/float64(days)*100) / 100

	reviews, err := ac.Reporter.ReviewsPerDay(ctx, since)
	if err != nil {
		ac.fail(c, err)
		return
	}
	out.UsersHelped = reports.Cumulative(reports.FillDays(reviews, since, now))

	signups, err := ac.Reporter.SignupsPerDay(ctx, since)
	if err != nil {
		ac.fail(c, err)
		return
	}
	growth := reports.Cumulative(reports.FillDays(signups, since, now))
	if len(growth) > 0 {
		// shift so the series ends at the current user total
		base := out.TotalUsers - growth[len(growth)-1].Count
		for i := range growth {
			growth[i].Count += base
		}
	}
	out.UserGrowth = growth

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: out})
}

func (ac *AdminController) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	analysis, err := ac.Reporter.AnalysisStats(ctx)
	if err != nil {
		ac.fail(c, err)
		return
	}
	system, err := ac.Reporter.SystemStats(ctx)
	if err != nil {
		ac.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: gin.H{
			"analysis": analysis,
			"system":   system,
		},
	})
}
