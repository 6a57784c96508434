package handler

import (
	"errors"
	"net/http"
	"strconv"
	"vinolog/backend/internal/database"
	"vinolog/backend/internal/models"
	"vinolog/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	DisplayName string `json:"display_name" binding:"required" example:"corkdork"`
	Email       string `json:"email" binding:"required,email" example:"test@example.com"`
	Password    string `json:"password" binding:"required,min=8" example:"password123"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Login    string `json:"login" binding:"required" example:"corkdork"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// PublicUserResponse defines the structure for a user's public profile.
type PublicUserResponse struct {
	ID           uint                     `json:"id" example:"1"`
	DisplayName  string                   `json:"display_name" example:"corkdork"`
	AvatarURL    string                   `json:"avatar_url,omitempty"`
	FriendsCount int64                    `json:"friends_count"`
	RelationToMe *models.FriendshipStatus `json:"relation_to_me,omitempty"`
	MeToRelation *models.FriendshipStatus `json:"me_to_relation,omitempty"`
}

// PrivateUserResponse defines the structure for the authenticated user's own profile.
type PrivateUserResponse struct {
	ID           uint   `json:"id" example:"1"`
	DisplayName  string `json:"display_name" example:"corkdork"`
	Email        string `json:"email" example:"test@example.com"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	FriendsCount int64  `json:"friends_count"`
	EntriesCount int64  `json:"entries_count"`
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// endregion

// region --- Auth Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new user and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existingUser models.User
	if err := database.DB.Where("display_name = ? OR email = ?", input.DisplayName, input.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Display name or email already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		DisplayName:  input.DisplayName,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
	}
	if err := database.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Authenticates a user with display name/email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Failure      500  {object}  ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("display_name = ? OR email = ?", input.Login, input.Login).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// endregion

// region --- User Handlers ---

// SearchUsers godoc
// @Summary      Search for users
// @Description  Searches for users by display name with pagination.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q     query     string  false  "Search query for display name"
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedResponse[PublicUserResponse]
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /users [get]
func SearchUsers(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	searchQuery := c.Query("q")

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100 // Max limit
	}

	query := database.DB.Where("id <> ?", viewerID.(uint))
	if searchQuery != "" {
		query = query.Where("display_name ILIKE ?", "%"+searchQuery+"%")
	}

	result, err := Paginate[models.User](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	userResponses := make([]PublicUserResponse, 0, len(result.Data))
	for _, user := range result.Data {
		userResponses = append(userResponses, buildPublicUserResponse(c, user, viewerID.(uint)))
	}

	c.JSON(http.StatusOK, PaginatedResponse[PublicUserResponse]{
		Data: userResponses,
		Meta: result.Meta,
	})
}

// GetUserByID godoc
// @Summary      Get user by ID
// @Description  Retrieves the public profile for a specific user by their ID, including relationship data.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  PublicUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func GetUserByID(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	// If target is the same as viewer, redirect to /me
	if viewerID.(uint) == uint(targetUserID) {
		GetMe(c)
		return
	}

	var targetUser models.User
	if err := database.DB.First(&targetUser, uint(targetUserID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, buildPublicUserResponse(c, targetUser, viewerID.(uint)))
}

// GetMe godoc
// @Summary      Get current user's info
// @Description  Retrieves the private profile for the currently authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PrivateUserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func GetMe(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var user models.User
	if err := database.DB.First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var friendsCount, entriesCount int64
	database.DB.Model(&models.UserRelation{}).
		Where("(from_user_id = ? OR to_user_id = ?) AND status = ?", user.ID, user.ID, models.StatusAccepted).
		Count(&friendsCount)
	database.DB.Model(&models.Entry{}).Where("owner_id = ?", user.ID).Count(&entriesCount)

	c.JSON(http.StatusOK, PrivateUserResponse{
		ID:           user.ID,
		DisplayName:  user.DisplayName,
		Email:        user.Email,
		AvatarURL:    signPath(c, user.AvatarPath),
		FriendsCount: friendsCount,
		EntriesCount: entriesCount,
	})
}

// endregion

// region --- Helpers ---

func buildPublicUserResponse(c *gin.Context, targetUser models.User, viewerID uint) PublicUserResponse {
	var friendsCount int64
	database.DB.Model(&models.UserRelation{}).
		Where("(from_user_id = ? OR to_user_id = ?) AND status = ?", targetUser.ID, targetUser.ID, models.StatusAccepted).
		Count(&friendsCount)

	// Get relationship status between viewer and target
	var relationToMe, meToRelation models.UserRelation
	var relationToMeStatus, meToRelationStatus *models.FriendshipStatus

	err := database.DB.Where("from_user_id = ? AND to_user_id = ?", targetUser.ID, viewerID).First(&relationToMe).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		relationToMeStatus = &relationToMe.Status
	}

	err = database.DB.Where("from_user_id = ? AND to_user_id = ?", viewerID, targetUser.ID).First(&meToRelation).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		meToRelationStatus = &meToRelation.Status
	}

	return PublicUserResponse{
		ID:           targetUser.ID,
		DisplayName:  targetUser.DisplayName,
		AvatarURL:    signPath(c, targetUser.AvatarPath),
		FriendsCount: friendsCount,
		RelationToMe: relationToMeStatus,
		MeToRelation: meToRelationStatus,
	}
}

// signPath resolves a stored object key to a URL, degrading to empty on failure.
func signPath(c *gin.Context, path string) string {
	if path == "" || signer == nil {
		return ""
	}
	url, err := signer.Sign(c.Request.Context(), path)
	if err != nil {
		log.Warn("avatar signing failed", "error", err)
		return ""
	}
	return url
}

// endregion
