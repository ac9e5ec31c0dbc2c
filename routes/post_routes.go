package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sentiment-health/api-go/controllers"
)

func SetupPostRoutes(protected *gin.RouterGroup, postController *controllers.PostController) {
	posts := protected.Group("/posts")
	{
		posts.POST("", postController.CreatePost)
		posts.GET("", postController.ListPosts)
		posts.GET("/:id", postController.GetPost)
		posts.GET("/:id/image", postController.GetPostImage)
	}

	protected.POST("/analyze", postController.Analyze)
}
