// Package storage keeps uploaded post images on disk or in an S3 compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sentiment-health/api-go/config"
)

var ErrNotFound = errors.New("image not found")

type ImageStore interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}

// NewImageStore picks the bucket store when a bucket is configured.
func NewImageStore(cfg config.StorageConfig) (ImageStore, error) {
	if cfg.UsesBucket() {
		return NewS3Store(cfg), nil
	}
	store, err := NewLocalStore(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("init local image store: %w", err)
	}
	return store, nil
}

// GenerateImageKey has the form uploads/images/{userID}/{timestamp}_{uuid}{ext}.
// The extension comes from the sniffed content type, never the client's file name.
func GenerateImageKey(userID uint, contentType string) string {
	var ext string
	if mt := mimetype.Lookup(contentType); mt != nil {
		ext = mt.Extension()
	}
	return fmt.Sprintf("uploads/images/%d/%d_%s%s", userID, time.Now().Unix(), uuid.New().String(), ext)
}
