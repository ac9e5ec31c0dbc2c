package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/sentiment-health/api-go/models"
)

type UserClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (u *UserClaims) IsAdmin() bool {
	return u != nil && u.Role == models.RoleAdmin
}

type contextKey string

const UserContextKey contextKey = "user"

func SetUser(c *gin.Context, claims *UserClaims) {
	c.Set(string(UserContextKey), claims)
}

func GetUser(c *gin.Context) *UserClaims {
	user, exists := c.Get(string(UserContextKey))
	if !exists {
		return nil
	}
	if userClaims, ok := user.(*UserClaims); ok {
		return userClaims
	}
	return nil
}
