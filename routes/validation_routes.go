package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sentiment-health/api-go/controllers"
)

func SetupValidationRoutes(group *gin.RouterGroup, validationController *controllers.ValidationController) {
	validation := group.Group("/validation")
	{
		validation.GET("/username/:username", validationController.ValidateUsername)
		validation.GET("/email/:email", validationController.ValidateEmail)
	}
}
