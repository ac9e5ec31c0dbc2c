// Package review records admin and automatic reviews of flagged posts and
// notifies their authors.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sentiment-health/api-go/mailer"
	"github.com/sentiment-health/api-go/metrics"
	"github.com/sentiment-health/api-go/models"
	"github.com/sentiment-health/api-go/sentiment"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrNotFlagged      = errors.New("post is not flagged as negative")
	ErrAlreadyReviewed = errors.New("post has already been reviewed")
	ErrNotReviewed     = errors.New("post has not been reviewed")
	ErrNoRecipient     = errors.New("no recipient email for post author")
	ErrEmptyComment    = errors.New("comment is required")
)

const (
	SortReviewedFirst   = "reviewed_first"
	SortUnreviewedFirst = "unreviewed_first"
)

type Service struct {
	DB        *gorm.DB
	Sentences *sentiment.SentenceAnalyzer
	Mailer    mailer.Mailer
	Metrics   *metrics.Metrics
	Log       *logrus.Logger
	AppURL    string
}

func NewService(db *gorm.DB, m mailer.Mailer, mt *metrics.Metrics, log *logrus.Logger, appURL string) *Service {
	return &Service{
		DB:        db,
		Sentences: sentiment.NewSentenceAnalyzer(),
		Mailer:    m,
		Metrics:   mt,
		Log:       log,
		AppURL:    strings.TrimSuffix(appURL, "/"),
	}
}

// Summary counts the outcome of a batch review run.
type Summary struct {
	Pending     int `json:"pending"`
	Reviewed    int `json:"reviewed"`
	Skipped     int `json:"skipped"`
	Emailed     int `json:"emailed"`
	EmailFailed int `json:"emailFailed"`
}

type AutoReviewResult struct {
	Alert      *models.Alert `json:"alert"`
	Recipient  string        `json:"recipient,omitempty"`
	Emailed    bool          `json:"emailed"`
	EmailError string        `json:"emailError,omitempty"`
}

type FlaggedList struct {
	Posts         []models.Post `json:"posts"`
	ReviewedCount int64         `json:"reviewedCount"`
	PendingCount  int64         `json:"pendingCount"`
}

func (s *Service) pendingQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Post{}).
		Joins("LEFT JOIN alerts ON alerts.post_id = user_posts.id").
		Where("user_posts.sentiment = ? AND alerts.id IS NULL", models.SentimentNegative)
}

// PendingFlagged lists negative posts without an alert, oldest first.
func (s *Service) PendingFlagged(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := s.pendingQuery(s.DB.WithContext(ctx)).
		Order("user_posts.created_at ASC, user_posts.id ASC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list pending posts: %w", err)
	}
	return posts, nil
}

func (s *Service) ListFlagged(ctx context.Context, hideReviewed bool, sort string) (*FlaggedList, error) {
	db := s.DB.WithContext(ctx)
	out := &FlaggedList{}

	if err := s.pendingQuery(db).Count(&out.PendingCount).Error; err != nil {
		return nil, fmt.Errorf("count pending posts: %w", err)
	}
	err := db.Model(&models.Post{}).
		Joins("JOIN alerts ON alerts.post_id = user_posts.id").
		Where("user_posts.sentiment = ?", models.SentimentNegative).
		Count(&out.ReviewedCount).Error
	if err != nil {
		return nil, fmt.Errorf("count reviewed posts: %w", err)
	}

	q := db.Preload("Alert").Where("sentiment = ?", models.SentimentNegative)
	if hideReviewed {
		q = q.Where("reviewed = ?", false)
	}
	switch sort {
	case SortReviewedFirst:
		q = q.Order("reviewed DESC")
	case SortUnreviewedFirst:
		q = q.Order("reviewed ASC")
	}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&out.Posts).Error; err != nil {
		return nil, fmt.Errorf("list flagged posts: %w", err)
	}
	return out, nil
}

func (s *Service) loadPost(ctx context.Context, postID uint) (*models.Post, error) {
	var post models.Post
	err := s.DB.WithContext(ctx).Preload("Alert").First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load post %d: %w", postID, err)
	}
	return &post, nil
}

// authorEmail resolves the author of a post; deleted accounts have no recipient.
func (s *Service) authorEmail(ctx context.Context, post *models.Post) (string, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Select("email").First(&user, post.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && user.Email == "") {
		return "", ErrNoRecipient
	}
	if err != nil {
		return "", fmt.Errorf("look up author of post %d: %w", post.ID, err)
	}
	return user.Email, nil
}

// createAlert inserts the alert and marks the post reviewed atomically.
// A second alert for the same post returns ErrAlreadyReviewed.
func (s *Service) createAlert(ctx context.Context, alert *models.Alert) error {
	tx := s.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}},
		DoNothing: true,
	}).Create(alert)
	if res.Error != nil {
		tx.Rollback()
		return fmt.Errorf("create alert: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return ErrAlreadyReviewed
	}

	if err := tx.Model(&models.Post{}).Where("id = ?", alert.PostID).Update("reviewed", true).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("mark post reviewed: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}
	s.Metrics.AlertCreated(alert.Source)
	return nil
}

func (s *Service) flaggedPost(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsFlagged() {
		return nil, ErrNotFlagged
	}
	if post.Alert != nil {
		return nil, ErrAlreadyReviewed
	}
	return post, nil
}

func (s *Service) ManualReview(ctx context.Context, postID uint, admin, comment string) (*models.Alert, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, ErrEmptyComment
	}
	if _, err := s.flaggedPost(ctx, postID); err != nil {
		return nil, err
	}

	alert := &models.Alert{
		PostID:        postID,
		AdminUsername: admin,
		Comment:       comment,
		Source:        models.AlertSourceManual,
	}
	if err := s.createAlert(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// AutoReview writes a tone comment for the post and optionally emails its author.
// recipient overrides the author's address.
func (s *Service) AutoReview(ctx context.Context, postID uint, admin, recipient string, sendEmail bool) (*AutoReviewResult, error) {
	post, err := s.flaggedPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if sendEmail && recipient == "" {
		if recipient, err = s.authorEmail(ctx, post); err != nil {
			return nil, err
		}
	}

	comment := sentiment.ToneComment(s.Sentences.Polarity(post.Content))
	alert := &models.Alert{
		PostID:        post.ID,
		AdminUsername: admin,
		Comment:       comment,
		Source:        models.AlertSourceAuto,
	}
	if err := s.createAlert(ctx, alert); err != nil {
		return nil, err
	}

	result := &AutoReviewResult{Alert: alert}
	if !sendEmail {
		return result, nil
	}

	result.Recipient = recipient
	msg, err := mailer.AutoReview(post.Username, post.Content, comment)
	if err == nil {
		err = s.send(ctx, recipient, msg)
	}
	if err != nil {
		result.EmailError = err.Error()
	} else {
		result.Emailed = true
	}
	return result, nil
}

func (s *Service) AutoReviewAll(ctx context.Context, admin string, sendEmail bool) (Summary, error) {
	pending, err := s.PendingFlagged(ctx)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Pending: len(pending)}
	for _, post := range pending {
		res, err := s.AutoReview(ctx, post.ID, admin, "", sendEmail)
		switch {
		case errors.Is(err, ErrAlreadyReviewed), errors.Is(err, ErrNoRecipient):
			sum.Skipped++
			continue
		case err != nil:
			return sum, err
		}

		sum.Reviewed++
		if res.Emailed {
			sum.Emailed++
		} else if res.EmailError != "" {
			sum.EmailFailed++
		}
	}
	return sum, nil
}

// UpdateComment edits an existing review comment and refreshes its review time.
func (s *Service) UpdateComment(ctx context.Context, postID uint, comment string) (*models.Alert, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, ErrEmptyComment
	}

	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Alert == nil {
		return nil, ErrNotReviewed
	}

	alert := post.Alert
	now := time.Now()
	err = s.DB.WithContext(ctx).Model(alert).Updates(map[string]interface{}{
		"comment":    comment,
		"updated_at": now,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update alert comment: %w", err)
	}
	alert.Comment = comment
	alert.UpdatedAt = now
	return alert, nil
}

// SendManualEmail sends a review notification built from body; to defaults to the author.
func (s *Service) SendManualEmail(ctx context.Context, postID uint, to, body string) (string, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(body) == "" {
		return "", errors.New("email body is required")
	}
	if to == "" {
		if to, err = s.authorEmail(ctx, post); err != nil {
			return "", err
		}
	}

	msg, err := mailer.Review(post.Username, body)
	if err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return to, s.send(ctx, to, msg)
}

// ProcessFlagged reviews every pending post with a dynamic comment and asks its
// author to edit it. Posts reviewed concurrently are skipped.
func (s *Service) ProcessFlagged(ctx context.Context) (Summary, error) {
	pending, err := s.PendingFlagged(ctx)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Pending: len(pending)}
	for i := range pending {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		post := &pending[i]
		entry := s.Log.WithField("post_id", post.ID)

		email, err := s.authorEmail(ctx, post)
		if err != nil {
			if !errors.Is(err, ErrNoRecipient) {
				entry.WithError(err).Error("auto review: author lookup failed")
			}
			sum.Skipped++
			continue
		}

		comment := sentiment.DynamicComment(s.Sentences.Sentences(post.Content))
		alert := &models.Alert{
			PostID:        post.ID,
			AdminUsername: models.SystemReviewer,
			Comment:       comment,
			Source:        models.AlertSourceSystem,
		}
		if err := s.createAlert(ctx, alert); err != nil {
			if !errors.Is(err, ErrAlreadyReviewed) {
				entry.WithError(err).Error("auto review: create alert failed")
			}
			sum.Skipped++
			continue
		}
		sum.Reviewed++

		msg, err := mailer.ActionRequired(post.Username, post.Content, comment, s.EditURL(post.ID))
		if err == nil {
			err = s.send(ctx, email, msg)
		}
		if err != nil {
			entry.WithError(err).Warn("auto review: email failed")
			sum.EmailFailed++
			continue
		}
		sum.Emailed++
	}
	return sum, nil
}

func (s *Service) EditURL(postID uint) string {
	return fmt.Sprintf("%s/posts/%d/edit", s.AppURL, postID)
}

func (s *Service) send(ctx context.Context, to string, msg mailer.Message) error {
	msg.To = to
	err := s.Mailer.Send(ctx, msg)
	s.Metrics.EmailResult(err)
	return err
}
