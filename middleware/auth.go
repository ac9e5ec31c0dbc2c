package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sentiment-health/api-go/models"
	"github.com/sentiment-health/api-go/utils"
	"gorm.io/gorm"
)

// AuthMiddleware accepts a valid bearer token only while its user still exists;
// soft-deleted users are rejected before their token expires.
func AuthMiddleware(tokens *utils.TokenIssuer, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "success": false})
			c.Abort()
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || !strings.EqualFold(bearerToken[0], "Bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format", "success": false})
			c.Abort()
			return
		}

		claims, err := tokens.Parse(bearerToken[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token", "success": false})
			c.Abort()
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).Select("id").Where("id = ?", claims.UserID).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found", "success": false})
			c.Abort()
			return
		}

		utils.SetUser(c, claims)
		c.Next()
	}
}

// AdminOnly must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !utils.GetUser(c).IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required", "success": false})
			c.Abort()
			return
		}
		c.Next()
	}
}
