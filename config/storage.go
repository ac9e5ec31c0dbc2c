package config

import (
	"os"
	"path/filepath"
)

// StorageConfig selects between a local upload directory and an S3 compatible bucket
// (AWS S3 or Cloudflare R2).
type StorageConfig struct {
	UploadDir       string
	MaxImageBytes   int64
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

func GetStorageConfig() StorageConfig {
	cfg := StorageConfig{
		UploadDir:       getEnv("UPLOAD_DIR", filepath.Join("data", "uploads")),
		MaxImageBytes:   int64(getInt("MAX_IMAGE_MB", 10)) * 1024 * 1024,
		Bucket:          os.Getenv("S3_BUCKET"),
		Endpoint:        os.Getenv("S3_ENDPOINT"),
		Region:          getEnv("S3_REGION", "auto"),
		AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		UsePathStyle:    getBool("S3_USE_PATH_STYLE", false),
	}

	// Cloudflare R2 only needs the account id to derive its endpoint.
	if cfg.Endpoint == "" {
		if account := os.Getenv("CLOUDFLARE_ACCOUNT_ID"); account != "" {
			cfg.Endpoint = "https://" + account + ".r2.cloudflarestorage.com"
		}
	}
	return cfg
}

func (c StorageConfig) UsesBucket() bool {
	return c.Bucket != ""
}
