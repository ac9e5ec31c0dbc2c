package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sentiment-health/api-go/metrics"
	"github.com/sentiment-health/api-go/models"
	"github.com/sentiment-health/api-go/sentiment"
	"github.com/sentiment-health/api-go/storage"
	"github.com/sentiment-health/api-go/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const flaggedMessage = "Admin has been notified of the negative sentiment!"

type PostController struct {
	DB            *gorm.DB
	Analyzer      sentiment.Analyzer
	Store         storage.ImageStore
	Metrics       *metrics.Metrics
	Log           *logrus.Logger
	MaxImageBytes int64
}

type CreatePostRequest struct {
	Text string `json:"text" form:"text"`
}

type AnalyzeRequest struct {
	Text   string `json:"text" binding:"required"`
	Engine string `json:"engine"`
}

type PostResult struct {
	Post       *models.Post    `json:"post"`
	Label      sentiment.Label `json:"label"`
	Confidence float64         `json:"confidence"`
	Emoji      string          `json:"emoji"`
	Flagged    bool            `json:"flagged"`
}

func NewPostController(db *gorm.DB, analyzer sentiment.Analyzer, store storage.ImageStore, m *metrics.Metrics, log *logrus.Logger, maxImageBytes int64) *PostController {
	return &PostController{
		DB:            db,
		Analyzer:      analyzer,
		Store:         store,
		Metrics:       m,
		Log:           log,
		MaxImageBytes: maxImageBytes,
	}
}

// CreatePost godoc
// @Summary Submit a post
// @Description Stores a text and/or image post together with its sentiment
// @Tags posts
// @Accept json,mpfd
// @Produce json
// @Param post body CreatePostRequest true "Post text"
// @Success 201 {object} PostResult
// @Router /posts [post]
func (pc *PostController) CreatePost(c *gin.Context) {
	user := utils.GetUser(c)
	ctx := c.Request.Context()

	var req CreatePostRequest
	var imageName, imageKey string

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		req.Text = c.PostForm("text")

		file, header, err := c.Request.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image upload", "success": false})
			return
		default:
			defer file.Close()

			contentType, body, err := storage.DetectImage(file, header.Size, pc.MaxImageBytes)
			if err != nil {
				pc.imageError(c, err)
				return
			}

			imageKey = storage.GenerateImageKey(user.UserID, contentType)
			imageName = header.Filename
			if err := pc.Store.Save(ctx, imageKey, body, header.Size, contentType); err != nil {
				pc.Log.WithError(err).Error("image upload failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image", "success": false})
				return
			}
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" && imageKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter some text or upload an image", "success": false})
		return
	}

	result := sentiment.ImageResult()
	if text != "" {
		result = pc.Analyzer.Analyze(text)
	}

	post := models.Post{
		UserID:     user.UserID,
		Username:   user.Username,
		Content:    text,
		ImageKey:   imageKey,
		ImageName:  imageName,
		Sentiment:  string(result.Label),
		Confidence: result.Confidence,
	}

	tx := pc.DB.WithContext(ctx).Begin()
	if err := tx.Create(&post).Error; err != nil {
		tx.Rollback()
		pc.discardImage(c, imageKey)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save post", "success": false})
		return
	}

	record := models.AnalysisRecord{
		DataType:   models.DataTypePost,
		PostID:     &post.ID,
		Sentiment:  post.Sentiment,
		Confidence: post.Confidence,
	}
	if err := tx.Create(&record).Error; err != nil {
		tx.Rollback()
		pc.discardImage(c, imageKey)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save analysis", "success": false})
		return
	}

	if err := tx.Commit().Error; err != nil {
		pc.discardImage(c, imageKey)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save post", "success": false})
		return
	}
	pc.Metrics.Analyzed(post.Sentiment)

	res := PostResult{
		Post:       &post,
		Label:      result.Label,
		Confidence: result.Confidence,
		Emoji:      sentiment.Emoji(post.Sentiment),
		Flagged:    post.IsFlagged(),
	}
	message := "Post submitted successfully!"
	if res.Flagged {
		message = flaggedMessage
	}

	c.JSON(http.StatusCreated, StandardResponse{
		Success: true,
		Data:    res,
		Message: message,
	})
}

func (pc *PostController) imageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrImageTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image exceeds the size limit", "success": false})
	case errors.Is(err, storage.ErrUnsupportedImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only JPEG, PNG and WebP images are supported", "success": false})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image upload", "success": false})
	}
}

func (pc *PostController) discardImage(c *gin.Context, key string) {
	if key == "" {
		return
	}
	if err := pc.Store.Delete(c.Request.Context(), key); err != nil {
		pc.Log.WithError(err).WithField("key", key).Warn("failed to remove orphaned image")
	}
}

// Analyze scores text without creating a post.
func (pc *PostController) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter some text", "success": false})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter some text", "success": false})
		return
	}

	analyzer := pc.Analyzer
	if req.Engine != "" {
		var err error
		if analyzer, err = sentiment.NewAnalyzer(req.Engine); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
			return
		}
	}

	result := analyzer.Analyze(text)
	record := models.AnalysisRecord{
		DataType:   models.DataTypeText,
		Sentiment:  string(result.Label),
		Confidence: result.Confidence,
	}
	if err := pc.DB.WithContext(c.Request.Context()).Create(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save analysis", "success": false})
		return
	}
	pc.Metrics.Analyzed(record.Sentiment)

	data := gin.H{
		"label":      result.Label,
		"confidence": result.Confidence,
		"score":      result.Score,
		"emoji":      sentiment.Emoji(string(result.Label)),
	}
	if sa, ok := analyzer.(*sentiment.SentenceAnalyzer); ok {
		data["sentences"] = sa.Sentences(text)
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: data})
}

func (pc *PostController) ListPosts(c *gin.Context) {
	user := utils.GetUser(c)
	page, pageSize := utils.ParsePagination(c, 20)
	db := pc.DB.WithContext(c.Request.Context())

	var total int64
	if err := db.Model(&models.Post{}).Where("user_id = ?", user.UserID).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts", "success": false})
		return
	}

	var posts []models.Post
	err := db.Preload("Alert").
		Where("user_id = ?", user.UserID).
		Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts", "success": false})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    posts,
		Pagination: &PaginationMeta{
			CurrentPage: page,
			PageSize:    pageSize,
			TotalItems:  total,
			TotalPages:  utils.TotalPages(total, pageSize),
		},
	})
}

// visiblePost loads a post the caller may see: their own, or any for admins.
func (pc *PostController) visiblePost(c *gin.Context) (*models.Post, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}

	user := utils.GetUser(c)
	var post models.Post
	if err := pc.DB.WithContext(c.Request.Context()).Preload("Alert").First(&post, id).Error; err != nil || (post.UserID != user.UserID && !user.IsAdmin()) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found", "success": false})
		return nil, false
	}
	return &post, true
}

func (pc *PostController) GetPost(c *gin.Context) {
	post, ok := pc.visiblePost(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: gin.H{
			"post":  post,
			"emoji": sentiment.Emoji(post.Sentiment),
		},
	})
}

func (pc *PostController) GetPostImage(c *gin.Context) {
	post, ok := pc.visiblePost(c)
	if !ok {
		return
	}
	if !post.HasImage() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post has no image", "success": false})
		return
	}

	rc, contentType, err := pc.Store.Open(c.Request.Context(), post.ImageKey)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found", "success": false})
		return
	}
	if err != nil {
		pc.Log.WithError(err).Error("image read failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image", "success": false})
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}
