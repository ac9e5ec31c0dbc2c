package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port            string
	Mode            string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	LogLevel        string
	AppURL          string

	Database DatabaseConfig
	Storage  StorageConfig
	SMTP     SMTPConfig
	Admin    AdminSeed

	SentimentEngine    string
	AutoReviewEnabled  bool
	AutoReviewInterval time.Duration
}

type AdminSeed struct {
	Username string
	Email    string
	Password string
}

// Load reads .env when present and then the process environment.
func Load() *AppConfig {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return &AppConfig{
		Port:            getEnv("PORT", "8080"),
		Mode:            getEnv("GIN_MODE", "debug"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		AppURL:          strings.TrimSuffix(getEnv("APP_URL", "http://localhost:8080"), "/"),

		Database: GetDatabaseConfig(),
		Storage:  GetStorageConfig(),
		SMTP:     GetSMTPConfig(),
		Admin: AdminSeed{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Email:    getEnv("ADMIN_EMAIL", "admin@localhost"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},

		SentimentEngine:    getEnv("SENTIMENT_ENGINE", "vader"),
		AutoReviewEnabled:  getBool("AUTO_REVIEW_ENABLED", true),
		AutoReviewInterval: getDuration("AUTO_REVIEW_INTERVAL", 3*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
