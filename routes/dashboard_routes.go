package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sentiment-health/api-go/controllers"
)

func SetupDashboardRoutes(protected *gin.RouterGroup, dashboardController *controllers.DashboardController) {
	protected.GET("/dashboard", dashboardController.Dashboard)
	protected.GET("/alerts", dashboardController.Alerts)
}
