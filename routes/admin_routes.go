package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sentiment-health/api-go/controllers"
)

func SetupAdminRoutes(
	admin *gin.RouterGroup,
	adminController *controllers.AdminController,
	userController *controllers.UserController,
	reviewController *controllers.ReviewController,
	exportController *controllers.ExportController,
) {
	admin.GET("/dashboard", adminController.Dashboard)
	admin.GET("/stats", adminController.Stats)
	admin.GET("/export", exportController.Export)

	users := admin.Group("/users")
	{
		users.GET("", userController.ListUsers)
		users.GET("/deleted", userController.ListDeletedUsers)
		users.PUT("/:id", userController.UpdateUser)
		users.DELETE("/:id", userController.DeleteUser)
	}

	flagged := admin.Group("/flagged")
	{
		flagged.GET("", reviewController.ListFlagged)
		flagged.POST("/auto-review-all", reviewController.AutoReviewAll)
		flagged.POST("/:id/review", reviewController.Review)
		flagged.POST("/:id/auto-review", reviewController.AutoReview)
		flagged.PUT("/:id/comment", reviewController.UpdateComment)
		flagged.POST("/:id/email", reviewController.SendEmail)
	}
}
