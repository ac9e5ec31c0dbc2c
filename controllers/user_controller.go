package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sentiment-health/api-go/models"
	"github.com/sentiment-health/api-go/types"
	"github.com/sentiment-health/api-go/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const usersPerPage = 5

type UserController struct {
	DB  *gorm.DB
	Log *logrus.Logger
}

func NewUserController(db *gorm.DB, log *logrus.Logger) *UserController {
	return &UserController{DB: db, Log: log}
}

func (uc *UserController) ListUsers(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.Query("q")))
	page, pageSize := utils.ParsePagination(c, usersPerPage)
	db := uc.DB.WithContext(c.Request.Context())

	q := db.Model(&models.User{})
	if query != "" {
		searchPattern := "%" + query + "%"
		q = q.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", searchPattern, searchPattern)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users", "success": false})
		return
	}

	var users []models.User
	err := q.Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users", "success": false})
		return
	}

	data := make([]gin.H, 0, len(users))
	for i := range users {
		data = append(data, userJSON(&users[i]))
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    data,
		Meta:    gin.H{"query": query},
		Pagination: &PaginationMeta{
			CurrentPage: page,
			PageSize:    pageSize,
			TotalItems:  total,
			TotalPages:  utils.TotalPages(total, pageSize),
		},
	})
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input struct {
		Username *string `json:"username"`
		Email    *string `json:"email" binding:"omitempty,email"`
		Password *string `json:"password" binding:"omitempty,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	db := uc.DB.WithContext(c.Request.Context())
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found", "success": false})
		return
	}

	updates := map[string]interface{}{}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username != "" && username != user.Username {
			if err := validateUsernamePattern(username); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
				return
			}
			taken, err := exists(db, "username", username, user.ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user", "success": false})
				return
			}
			if taken {
				c.JSON(http.StatusConflict, gin.H{"error": "Username already exists", "success": false})
				return
			}
			updates["username"] = username
		}
	}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email != "" && email != user.Email {
			taken, err := exists(db, "email", email, user.ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user", "success": false})
				return
			}
			if taken {
				c.JSON(http.StatusConflict, gin.H{"error": "Email already exists", "success": false})
				return
			}
			updates["email"] = email
		}
	}

	if input.Password != nil && *input.Password != "" {
		hash, err := utils.HashPassword(*input.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password", "success": false})
			return
		}
		updates["password"] = hash
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, StandardResponse{Success: true, Data: userJSON(&user), Message: "No changes detected"})
		return
	}

	tx := db.Begin()
	if err := tx.Model(&user).Updates(updates).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists", "success": false})
		return
	}
	// keep the denormalized author name on posts in sync
	if username, ok := updates["username"]; ok {
		if err := tx.Model(&models.Post{}).Where("user_id = ?", user.ID).Update("username", username).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user", "success": false})
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user", "success": false})
		return
	}

	if err := db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user", "success": false})
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: userJSON(&user), Message: "User updated successfully"})
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	db := uc.DB.WithContext(c.Request.Context())
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found", "success": false})
		return
	}
	if user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin accounts cannot be deleted", "success": false})
		return
	}

	tx := db.Begin()
	if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.RefreshToken{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user", "success": false})
		return
	}
	if err := tx.Delete(&user).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user", "success": false})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user", "success": false})
		return
	}

	uc.Log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
		"by":       utils.GetUser(c).Username,
	}).Info("user deleted")

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted successfully"})
}

func (uc *UserController) ListDeletedUsers(c *gin.Context) {
	var users []types.DeletedUser
	err := uc.DB.WithContext(c.Request.Context()).Unscoped().
		Model(&models.User{}).
		Select("id, username, email, deleted_at").
		Where("deleted_at IS NOT NULL").
		Order("deleted_at DESC").
		Limit(20).
		Scan(&users).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deleted users", "success": false})
		return
	}
	if users == nil {
		users = []types.DeletedUser{}
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: users})
}
