package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sentiment-health/api-go/config"
	"github.com/sentiment-health/api-go/models"
	"github.com/sentiment-health/api-go/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuthController struct {
	DB           *gorm.DB
	GoogleConfig *config.GoogleConfig
	Tokens       *utils.TokenIssuer
	Log          *logrus.Logger
}

func NewAuthController(db *gorm.DB, google *config.GoogleConfig, tokens *utils.TokenIssuer, log *logrus.Logger) *AuthController {
	return &AuthController{
		DB:           db,
		GoogleConfig: google,
		Tokens:       tokens,
		Log:          log,
	}
}

func (ac *AuthController) Register(c *gin.Context) {
	var input struct {
		Username     string `json:"username" binding:"required"`
		Email        string `json:"email" binding:"required,email"`
		ConfirmEmail string `json:"confirmEmail" binding:"required"`
		Password     string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	email := normalizeEmail(input.Email)
	if email != normalizeEmail(input.ConfirmEmail) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Emails do not match", "success": false})
		return
	}

	username := strings.TrimSpace(input.Username)
	if err := validateUsernamePattern(username); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	db := ac.DB.WithContext(c.Request.Context())
	if taken, err := exists(db, "username", username, 0); err != nil || taken {
		ac.conflictOrFail(c, err, "Username already exists")
		return
	}
	if taken, err := exists(db, "email", email, 0); err != nil || taken {
		ac.conflictOrFail(c, err, "Email already exists")
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password", "success": false})
		return
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: &hashedPassword,
		Role:     models.RoleUser,
		Provider: models.ProviderEmail,
	}

	// unique indexes catch a concurrent signup with the same name
	if err := db.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists", "success": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Account created successfully! Please log in.",
		"user":    userJSON(&user),
	})
}

func (ac *AuthController) conflictOrFail(c *gin.Context, err error, msg string) {
	if err != nil {
		ac.Log.WithError(err).Error("signup uniqueness check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create account", "success": false})
		return
	}
	c.JSON(http.StatusConflict, gin.H{"error": msg, "success": false})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	var user models.User
	if err := ac.DB.WithContext(c.Request.Context()).Where("email = ?", normalizeEmail(input.Email)).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials", "success": false})
		return
	}

	if user.Password == nil || !utils.CheckPassword(*user.Password, input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials", "success": false})
		return
	}

	ac.issueTokens(c, &user)
}

func (ac *AuthController) RefreshToken(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	db := ac.DB.WithContext(c.Request.Context())

	// Find the refresh token in the database
	var refreshToken models.RefreshToken
	if err := db.Where("token = ?", input.RefreshToken).First(&refreshToken).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token", "success": false})
		return
	}

	if time.Now().After(refreshToken.ExpirationDate) {
		db.Unscoped().Delete(&refreshToken)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expired", "success": false})
		return
	}

	var user models.User
	if err := db.First(&user, refreshToken.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found", "success": false})
		return
	}

	accessToken, err := ac.Tokens.AccessToken(claimsFor(&user))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate access token", "success": false})
		return
	}

	newRefreshToken, expiresAt, err := ac.Tokens.RefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate refresh token", "success": false})
		return
	}

	refreshToken.Token = newRefreshToken
	refreshToken.ExpirationDate = expiresAt
	if err := db.Save(&refreshToken).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not store refresh token", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token_type":    "Bearer",
		"access_token":  accessToken,
		"refresh_token": newRefreshToken,
		"user":          userJSON(&user),
		"success":       true,
	})
}

func (ac *AuthController) GetProfile(c *gin.Context) {
	claims := utils.GetUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context", "success": false})
		return
	}

	var user models.User
	if err := ac.DB.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": userJSON(&user)})
}

func (ac *AuthController) Logout(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	claims := utils.GetUser(c)
	result := ac.DB.WithContext(c.Request.Context()).Unscoped().
		Where("token = ? AND user_id = ?", input.RefreshToken, claims.UserID).
		Delete(&models.RefreshToken{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout", "success": false})
		return
	}

	// Unknown tokens still count as logged out
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully", "success": true})
}

func (ac *AuthController) GoogleLogin(c *gin.Context) {
	if ac.GoogleConfig == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google sign-in is not configured", "success": false})
		return
	}

	var input struct {
		IDToken     string `json:"id_token"`
		AccessToken string `json:"access_token"`
		Code        string `json:"code"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	ctx := c.Request.Context()
	var (
		userInfo *config.GoogleUserInfo
		err      error
	)

	switch {
	case input.Code != "":
		token, exErr := ac.GoogleConfig.ExchangeCode(ctx, input.Code)
		if exErr != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Failed to exchange code for token", "success": false})
			return
		}
		userInfo, err = ac.GoogleConfig.GetUserInfo(ctx, token.AccessToken)
	case input.IDToken != "":
		userInfo, err = ac.GoogleConfig.VerifyIDToken(ctx, input.IDToken)
	case input.AccessToken != "":
		userInfo, err = ac.GoogleConfig.GetUserInfo(ctx, input.AccessToken)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either code, id_token, or access_token is required", "success": false})
		return
	}

	if err != nil || userInfo.ID == "" || userInfo.Email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Google token", "success": false})
		return
	}

	// unverified addresses must not link or create accounts
	if !userInfo.VerifiedEmail {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google email is not verified", "success": false})
		return
	}

	user, err := ac.findOrCreateGoogleUser(ctx, userInfo)
	if errors.Is(err, errAccountDeleted) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This account has been deleted", "success": false})
		return
	}
	if err != nil {
		ac.Log.WithError(err).Error("google login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user", "success": false})
		return
	}

	ac.issueTokens(c, user)
}

var errAccountDeleted = errors.New("account deleted")

func (ac *AuthController) findOrCreateGoogleUser(ctx context.Context, info *config.GoogleUserInfo) (*models.User, error) {
	db := ac.DB.WithContext(ctx)
	email := normalizeEmail(info.Email)

	var user models.User
	err := db.Unscoped().Where("google_id = ? OR email = ?", info.ID, email).First(&user).Error
	if err == nil {
		if user.DeletedAt.Valid {
			return nil, errAccountDeleted
		}
		if user.GoogleID == nil || *user.GoogleID == "" {
			user.GoogleID = &info.ID
			if err := db.Model(&user).Update("google_id", info.ID).Error; err != nil {
				return nil, err
			}
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Generate unique username from the email local part
	base := nonUsernameChars.ReplaceAllString(strings.SplitN(email, "@", 2)[0], "_")
	if base == "" || !leadingLetter.MatchString(base) {
		base = "user_" + base
	}
	if len(base) > 16 {
		base = base[:16]
	}

	username := base
	for counter := 1; ; counter++ {
		taken, err := exists(db, "username", username, 0)
		if err != nil {
			return nil, err
		}
		if !taken {
			break
		}
		username = base + strconv.Itoa(counter)
	}

	user = models.User{
		Username: username,
		Email:    email,
		GoogleID: &info.ID,
		Role:     models.RoleUser,
		Provider: models.ProviderGoogle,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ac *AuthController) issueTokens(c *gin.Context, user *models.User) {
	accessToken, err := ac.Tokens.AccessToken(claimsFor(user))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token", "success": false})
		return
	}

	refreshToken, expiresAt, err := ac.Tokens.RefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token", "success": false})
		return
	}

	err = ac.DB.WithContext(c.Request.Context()).Create(&models.RefreshToken{
		UserID:         user.ID,
		Token:          refreshToken,
		ExpirationDate: expiresAt,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not store refresh token", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token_type":    "Bearer",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    int(ac.Tokens.AccessTTL.Seconds()),
		"user":          userJSON(user),
		"success":       true,
	})
}

func claimsFor(user *models.User) utils.UserClaims {
	return utils.UserClaims{UserID: user.ID, Username: user.Username, Role: user.Role}
}

func userJSON(user *models.User) gin.H {
	return gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"role":      user.Role,
		"provider":  user.Provider,
		"createdAt": user.CreatedAt,
	}
}
