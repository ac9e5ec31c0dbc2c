package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sentiment-health/api-go/models"
	"gorm.io/gorm"
)

var (
	usernamePattern  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
	leadingLetter    = regexp.MustCompile(`^[a-zA-Z]`)
	nonUsernameChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	reservedNames    = []string{"admin", "root", "api", "www", "mail", "ftp", "test", "demo", "user", "guest", "null", "undefined", "system"}
)

// validateUsernamePattern validates username format and constraints
func validateUsernamePattern(username string) error {
	trimmed := strings.TrimSpace(username)

	if len(trimmed) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}
	if len(trimmed) > 20 {
		return fmt.Errorf("username must be no more than 20 characters long")
	}
	if !leadingLetter.MatchString(trimmed) {
		return fmt.Errorf("username must start with a letter")
	}
	if !usernamePattern.MatchString(trimmed) {
		return fmt.Errorf("username can only contain letters, numbers, and underscores")
	}

	for _, reserved := range reservedNames {
		if strings.EqualFold(trimmed, reserved) {
			return fmt.Errorf("this username is reserved and cannot be used")
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type ValidationController struct {
	DB *gorm.DB
}

func NewValidationController(db *gorm.DB) *ValidationController {
	return &ValidationController{DB: db}
}

// exists includes soft-deleted accounts; their names stay taken.
func exists(db *gorm.DB, column, value string, excludeID uint) (bool, error) {
	q := db.Unscoped().Model(&models.User{}).Where(column+" = ?", value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var user models.User
	err := q.Select("id").First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (vc *ValidationController) ValidateUsername(c *gin.Context) {
	found, err := exists(vc.DB.WithContext(c.Request.Context()), "username", strings.TrimSpace(c.Param("username")), 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check username", "success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": found})
}

func (vc *ValidationController) ValidateEmail(c *gin.Context) {
	found, err := exists(vc.DB.WithContext(c.Request.Context()), "email", normalizeEmail(c.Param("email")), 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check email", "success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": found})
}
