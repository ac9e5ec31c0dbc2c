package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sentiment-health/api-go/config"
	"github.com/sentiment-health/api-go/controllers"
	"github.com/sentiment-health/api-go/metrics"
	"github.com/sentiment-health/api-go/middleware"
	"github.com/sentiment-health/api-go/reports"
	"github.com/sentiment-health/api-go/review"
	"github.com/sentiment-health/api-go/sentiment"
	"github.com/sentiment-health/api-go/storage"
	"github.com/sentiment-health/api-go/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Dependencies struct {
	DB            *gorm.DB
	Tokens        *utils.TokenIssuer
	Google        *config.GoogleConfig
	Analyzer      sentiment.Analyzer
	Store         storage.ImageStore
	Reporter      *reports.Reporter
	Review        *review.Service
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
	Log           *logrus.Logger
	MaxImageBytes int64
}

func SetupRoutes(r *gin.Engine, deps Dependencies) {
	// Initialize controllers
	authController := controllers.NewAuthController(deps.DB, deps.Google, deps.Tokens, deps.Log)
	validationController := controllers.NewValidationController(deps.DB)
	postController := controllers.NewPostController(deps.DB, deps.Analyzer, deps.Store, deps.Metrics, deps.Log, deps.MaxImageBytes)
	dashboardController := controllers.NewDashboardController(deps.DB, deps.Reporter, deps.Log)
	adminController := controllers.NewAdminController(deps.Reporter, deps.Log)
	userController := controllers.NewUserController(deps.DB, deps.Log)
	reviewController := controllers.NewReviewController(deps.Review, deps.Log)
	exportController := controllers.NewExportController(deps.Reporter, deps.Log)

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := deps.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Public routes
	public := r.Group("/api")
	{
		public.POST("/register", authController.Register)
		public.POST("/login", authController.Login)
		public.POST("/refresh-token", authController.RefreshToken)
		public.POST("/auth/google", authController.GoogleLogin)
		SetupValidationRoutes(public, validationController)
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(deps.Tokens, deps.DB))
	{
		protected.POST("/logout", authController.Logout)
		protected.GET("/profile", authController.GetProfile)

		SetupPostRoutes(protected, postController)
		SetupDashboardRoutes(protected, dashboardController)
	}

	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnly())
	SetupAdminRoutes(admin, adminController, userController, reviewController, exportController)
}
