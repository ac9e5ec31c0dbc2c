// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sentiment-health/api-go/config"
	"github.com/sentiment-health/api-go/models"
	"github.com/sentiment-health/api-go/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewTestDB returns a migrated in-memory sqlite database private to the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := config.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name))
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, username, role string) models.User {
	t.Helper()

	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)

	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: &hash,
		Role:     role,
		Provider: models.ProviderEmail,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func CreatePost(t *testing.T, db *gorm.DB, user models.User, content, sentiment string) models.Post {
	t.Helper()

	post := models.Post{
		UserID:     user.ID,
		Username:   user.Username,
		Content:    content,
		Sentiment:  sentiment,
		Confidence: 0.5,
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}
