package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sentiment-health/api-go/models"
	"github.com/sentiment-health/api-go/utils"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DatabaseConfig struct {
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Path:     getEnv("DATABASE", filepath.Join("data", "app_database.db")),
		Host:     os.Getenv("DB_HOST"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

// UsesPostgres is true when a remote host is configured; otherwise the SQLite file is used.
func (c DatabaseConfig) UsesPostgres() bool {
	return c.Host != ""
}

func (c DatabaseConfig) postgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

func sqliteDSN(path string) string {
	return path + "?_busy_timeout=5000&_foreign_keys=on"
}

// OpenDatabase connects to postgres or sqlite and runs the migrations.
func OpenDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	if cfg.UsesPostgres() {
		db, err = gorm.Open(postgres.Open(cfg.postgresDSN()), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	} else {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		db, err = OpenSQLite(sqliteDSN(cfg.Path))
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenSQLite opens a sqlite database with a single pooled connection.
// SQLite serializes writers anyway and one connection keeps in-memory databases alive.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Post{},
		&models.AnalysisRecord{},
		&models.Alert{},
	); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// SeedAdmin creates the bootstrap admin account unless one with the same username exists.
func SeedAdmin(db *gorm.DB, seed AdminSeed) (bool, error) {
	if seed.Username == "" || seed.Password == "" {
		return false, nil
	}

	var existing models.User
	err := db.Unscoped().Where("username = ?", seed.Username).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("look up admin: %w", err)
	}

	hash, err := utils.HashPassword(seed.Password)
	if err != nil {
		return false, err
	}

	admin := models.User{
		Username: seed.Username,
		Email:    seed.Email,
		Password: &hash,
		Role:     models.RoleAdmin,
		Provider: models.ProviderEmail,
	}
	if err := db.Create(&admin).Error; err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
