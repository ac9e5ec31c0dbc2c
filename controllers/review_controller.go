package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sentiment-health/api-go/review"
	"github.com/sentiment-health/api-go/utils"
	"github.com/sirupsen/logrus"
)

type ReviewController struct {
	Service *review.Service
	Log     *logrus.Logger
}

func NewReviewController(svc *review.Service, log *logrus.Logger) *ReviewController {
	return &ReviewController{Service: svc, Log: log}
}

func (rc *ReviewController) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, review.ErrPostNotFound), errors.Is(err, review.ErrNotReviewed):
		status = http.StatusNotFound
	case errors.Is(err, review.ErrAlreadyReviewed):
		status = http.StatusConflict
	case errors.Is(err, review.ErrNotFlagged), errors.Is(err, review.ErrNoRecipient), errors.Is(err, review.ErrEmptyComment):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		rc.Log.WithError(err).Error("review action failed")
		c.JSON(status, gin.H{"error": "Review action failed", "success": false})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "success": false})
}

func (rc *ReviewController) ListFlagged(c *gin.Context) {
	hideReviewed, _ := strconv.ParseBool(c.DefaultQuery("hideReviewed", "false"))
	sort := c.DefaultQuery("sort", review.SortUnreviewedFirst)
	if sort != review.SortReviewedFirst && sort != review.SortUnreviewedFirst {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sort must be reviewed_first or unreviewed_first", "success": false})
		return
	}

	list, err := rc.Service.ListFlagged(c.Request.Context(), hideReviewed, sort)
	if err != nil {
		rc.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    list.Posts,
		Meta: gin.H{
			"reviewedCount": list.ReviewedCount,
			"pendingCount":  list.PendingCount,
		},
	})
}

func (rc *ReviewController) Review(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input struct {
		Comment string `json:"comment" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment is required", "success": false})
		return
	}

	alert, err := rc.Service.ManualReview(c.Request.Context(), id, utils.GetUser(c).Username, input.Comment)
	if err != nil {
		rc.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, StandardResponse{Success: true, Data: alert, Message: "Comment saved and post marked reviewed"})
}

func (rc *ReviewController) AutoReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input struct {
		Recipient string `json:"recipient" binding:"omitempty,email"`
		SendEmail bool   `json:"sendEmail"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength != 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	res, err := rc.Service.AutoReview(c.Request.Context(), id, utils.GetUser(c).Username, input.Recipient, input.SendEmail)
	if err != nil {
		rc.respondError(c, err)
		return
	}

	message := "Auto review saved"
	if res.Emailed {
		message = "Auto review saved and email sent"
	} else if res.EmailError != "" {
		message = "Auto review saved but email failed"
	}
	c.JSON(http.StatusCreated, StandardResponse{Success: true, Data: res, Message: message})
}

func (rc *ReviewController) AutoReviewAll(c *gin.Context) {
	var input struct {
		SendEmail bool `json:"sendEmail"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength != 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	sum, err := rc.Service.AutoReviewAll(c.Request.Context(), utils.GetUser(c).Username, input.SendEmail)
	if err != nil {
		rc.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: sum})
}

func (rc *ReviewController) UpdateComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input struct {
		Comment string `json:"comment" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment is required", "success": false})
		return
	}

	alert, err := rc.Service.UpdateComment(c.Request.Context(), id, input.Comment)
	if err != nil {
		rc.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: alert, Message: "Comment updated"})
}

func (rc *ReviewController) SendEmail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input struct {
		To   string `json:"to" binding:"omitempty,email"`
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	to, err := rc.Service.SendManualEmail(c.Request.Context(), id, input.To, input.Body)
	if err != nil {
		if errors.Is(err, review.ErrPostNotFound) || errors.Is(err, review.ErrNoRecipient) {
			rc.respondError(c, err)
			return
		}
		rc.Log.WithError(err).WithField("post_id", id).Warn("manual email failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send email", "success": false})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: gin.H{"to": to}, Message: "Email sent to " + to})
}
