package handler

import (
	"net/http"
	"strconv"
	"time"
	"vinolog/backend/internal/database"
	"vinolog/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type GrapeInput struct {
	Name string `json:"name" binding:"required"`
}

type GrapeResponse struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `json:"name"`
}

func newGrapeResponse(grape models.Grape) GrapeResponse {
	return GrapeResponse{
		ID:        grape.ID,
		CreatedAt: grape.CreatedAt,
		UpdatedAt: grape.UpdatedAt,
		Name:      grape.Name,
	}
}

// CreateGrape godoc
// @Summary      Create a new grape variety
// @Description  Creates a new grape variety for tagging entries.
// @Tags         admin-grapes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body GrapeInput true "Grape Info"
// @Success      201  {object}  GrapeResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      409  {object}  ErrorResponse "Grape already exists"
// @Router       /admin/grapes [post]
func CreateGrape(c *gin.Context) {
	var input GrapeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grape := models.Grape{Name: input.Name}
	if err := database.DB.Create(&grape).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Grape already exists or another error occurred"})
		return
	}

	c.JSON(http.StatusCreated, newGrapeResponse(grape))
}

// GetGrapes godoc
// @Summary      Get all grape varieties
// @Description  Retrieves a list of all available grape varieties.
// @Tags         admin-grapes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   GrapeResponse
// @Router       /admin/grapes [get]
func GetGrapes(c *gin.Context) {
	var grapes []models.Grape
	database.DB.Order("name ASC").Find(&grapes)

	var response []GrapeResponse
	for _, grape := range grapes {
		response = append(response, newGrapeResponse(grape))
	}
	c.JSON(http.StatusOK, response)
}

// UpdateGrape godoc
// @Summary      Update a grape variety
// @Tags         admin-grapes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int        true "Grape ID"
// @Param        input body GrapeInput true "Grape Info"
// @Success      200  {object}  GrapeResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/grapes/{id} [put]
func UpdateGrape(c *gin.Context) {
	grapeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid grape ID"})
		return
	}

	var input GrapeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var grape models.Grape
	if err := database.DB.First(&grape, uint(grapeID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Grape not found"})
		return
	}

	if err := database.DB.Model(&grape).Update("name", input.Name).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Failed to update grape"})
		return
	}

	c.JSON(http.StatusOK, newGrapeResponse(grape))
}

// DeleteGrape godoc
// @Summary      Delete a grape variety
// @Tags         admin-grapes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Grape ID"
// @Success      200  {object}  map[string]string "{"message": "Grape deleted"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/grapes/{id} [delete]
func DeleteGrape(c *gin.Context) {
	grapeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid grape ID"})
		return
	}

	result := database.DB.Delete(&models.Grape{}, uint(grapeID))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete grape"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Grape not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Grape deleted"})
}
