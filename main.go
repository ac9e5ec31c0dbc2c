package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sentiment-health/api-go/config"
	"github.com/sentiment-health/api-go/jobs"
	"github.com/sentiment-health/api-go/mailer"
	"github.com/sentiment-health/api-go/metrics"
	"github.com/sentiment-health/api-go/middleware"
	"github.com/sentiment-health/api-go/reports"
	"github.com/sentiment-health/api-go/review"
	"github.com/sentiment-health/api-go/routes"
	"github.com/sentiment-health/api-go/sentiment"
	"github.com/sentiment-health/api-go/storage"
	"github.com/sentiment-health/api-go/utils"
)

func main() {
	cfg := config.Load()
	utils.InitLogger(cfg.LogLevel)
	logger := utils.Logger

	gin.SetMode(cfg.Mode)
	if cfg.JWTSecret == "" {
		if cfg.Mode == gin.ReleaseMode {
			logger.Fatal("JWT_SECRET is required in release mode")
		}
		logger.Warn("JWT_SECRET not set, using an insecure development secret")
		cfg.JWTSecret = "dev-secret-change-me"
	}

	// Initialize database
	db, err := config.OpenDatabase(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("database init failed")
	}

	created, err := config.SeedAdmin(db, cfg.Admin)
	if err != nil {
		logger.WithError(err).Fatal("admin bootstrap failed")
	}
	if created {
		logger.WithField("username", cfg.Admin.Username).Info("admin account created")
	} else if cfg.Admin.Password == "" {
		logger.Warn("ADMIN_PASSWORD not set, no admin account seeded")
	}

	analyzer, err := sentiment.NewAnalyzer(cfg.SentimentEngine)
	if err != nil {
		logger.WithError(err).WithField("engine", cfg.SentimentEngine).Fatal("invalid sentiment engine")
	}

	store, err := storage.NewImageStore(cfg.Storage)
	if err != nil {
		logger.WithError(err).Fatal("image store init failed")
	}

	reporter, err := reports.NewReporter(db)
	if err != nil {
		logger.WithError(err).Fatal("reporter init failed")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(registry)

	mail := mailer.New(cfg.SMTP, logger)
	reviewService := review.NewService(db, mail, appMetrics, logger, cfg.AppURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var scheduler *jobs.Scheduler
	if cfg.AutoReviewEnabled {
		scheduler = jobs.NewScheduler(reviewService, cfg.AutoReviewInterval, logger)
		if err := scheduler.Start(ctx); err != nil {
			logger.WithError(err).Fatal("scheduler start failed")
		}
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.RequestMetrics(appMetrics))

	routes.SetupRoutes(r, routes.Dependencies{
		DB:            db,
		Tokens:        utils.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Google:        config.NewGoogleConfig(),
		Analyzer:      analyzer,
		Store:         store,
		Reporter:      reporter,
		Review:        reviewService,
		Metrics:       appMetrics,
		Gatherer:      registry,
		Log:           logger,
		MaxImageBytes: cfg.Storage.MaxImageBytes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
