package handler

import (
	"net/http"
	"strconv"
	"time"
	"vinolog/backend/internal/database"
	"vinolog/backend/internal/feed"
	"vinolog/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

// EntryInput defines the structure for creating a tasting entry.
type EntryInput struct {
	WineName string `json:"wine_name" binding:"required" example:"Barolo Riserva"`
	Vintage  int    `json:"vintage" example:"2016"`
	Region   string `json:"region" example:"Piedmont"`
	Rating   int    `json:"rating" binding:"min=0,max=100" example:"92"`
	Notes    string `json:"notes"`

	EntryPrivacy    string  `json:"entry_privacy" example:"friends"`
	ReactionPrivacy *string `json:"reaction_privacy,omitempty"`
	CommentsPrivacy *string `json:"comments_privacy,omitempty"`

	GrapeIDs   []uint   `json:"grape_ids"`
	PhotoPaths []string `json:"photo_paths"`

	// TaggedUserIDs are accepted friends who shared the tasting; each gets their
	// own copy of the entry linked back to this one.
	TaggedUserIDs []uint `json:"tagged_user_ids"`
}

// EntryUpdateInput defines the mutable fields of an entry. Only the owner may apply it.
type EntryUpdateInput struct {
	WineName *string `json:"wine_name,omitempty"`
	Vintage  *int    `json:"vintage,omitempty"`
	Region   *string `json:"region,omitempty"`
	Rating   *int    `json:"rating,omitempty"`
	Notes    *string `json:"notes,omitempty"`

	EntryPrivacy    *string `json:"entry_privacy,omitempty"`
	ReactionPrivacy *string `json:"reaction_privacy,omitempty"`
	CommentsPrivacy *string `json:"comments_privacy,omitempty"`
	IsFeedVisible   *bool   `json:"is_feed_visible,omitempty"`
}

// EntryResponse is the owner-facing view of an entry.
type EntryResponse struct {
	ID              uint      `json:"id"`
	OwnerID         uint      `json:"owner_id"`
	RootEntryID     *uint     `json:"root_entry_id,omitempty"`
	WineName        string    `json:"wine_name"`
	Vintage         int       `json:"vintage,omitempty"`
	Region          string    `json:"region,omitempty"`
	Rating          int       `json:"rating"`
	Notes           string    `json:"notes,omitempty"`
	EntryPrivacy    string    `json:"entry_privacy"`
	ReactionPrivacy *string   `json:"reaction_privacy,omitempty"`
	CommentsPrivacy *string   `json:"comments_privacy,omitempty"`
	IsFeedVisible   *bool     `json:"is_feed_visible,omitempty"`
	Grapes          []string  `json:"grapes"`
	PhotoURLs       []string  `json:"photo_urls"`
	CreatedAt       time.Time `json:"created_at"`
}

// endregion

// CreateEntry godoc
// @Summary      Log a tasting
// @Description  Creates a tasting entry. Tagged accepted friends each receive a
// linked copy under their own name, which feeds collapse back into one event.
// @Tags         entries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body EntryInput true "Entry Info"
// @Success      201  {object}  EntryResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /entries [post]
func CreateEntry(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input EntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.EntryPrivacy == "" {
		input.EntryPrivacy = string(feed.PrivacyPublic)
	}
	for _, p := range []*string{&input.EntryPrivacy, input.ReactionPrivacy, input.CommentsPrivacy} {
		if p != nil && *p != "" && !feed.KnownPrivacy(*p) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown privacy level: " + *p})
			return
		}
	}

	entry := models.Entry{
		OwnerID:         viewerID.(uint),
		WineName:        input.WineName,
		Vintage:         input.Vintage,
		Region:          input.Region,
		Rating:          input.Rating,
		Notes:           input.Notes,
		EntryPrivacy:    input.EntryPrivacy,
		ReactionPrivacy: input.ReactionPrivacy,
		CommentsPrivacy: input.CommentsPrivacy,
	}
	for i, path := range input.PhotoPaths {
		entry.Photos = append(entry.Photos, models.EntryPhoto{Path: path, Position: i})
	}
	if len(input.GrapeIDs) > 0 {
		var grapes []*models.Grape
		if err := database.DB.Where("id IN ?", input.GrapeIDs).Find(&grapes).Error; err == nil {
			entry.Grapes = grapes
		}
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		for _, taggedID := range input.TaggedUserIDs {
			if taggedID == viewerID.(uint) || !isAcceptedFriend(viewerID.(uint), taggedID) {
				continue
			}
			copyRow := models.Entry{
				OwnerID:         taggedID,
				RootEntryID:     &entry.ID,
				WineName:        entry.WineName,
				Vintage:         entry.Vintage,
				Region:          entry.Region,
				Rating:          entry.Rating,
				Notes:           entry.Notes,
				EntryPrivacy:    entry.EntryPrivacy,
				ReactionPrivacy: entry.ReactionPrivacy,
				CommentsPrivacy: entry.CommentsPrivacy,
			}
			for i, path := range input.PhotoPaths {
				copyRow.Photos = append(copyRow.Photos, models.EntryPhoto{Path: path, Position: i})
			}
			if err := tx.Create(&copyRow).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create entry"})
		return
	}

	c.JSON(http.StatusCreated, buildEntryResponse(c, entry))
}

// GetMyEntries godoc
// @Summary      List the viewer's entries
// @Tags         entries
// @Produce      json
// @Security     BearerAuth
// @Param        page  query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(10)
// @Success      200  {object}  PaginatedResponse[EntryResponse]
// @Failure      401  {object}  ErrorResponse
// @Router       /entries [get]
func GetMyEntries(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}

	query := database.DB.Preload("Photos").Preload("Grapes").
		Where("owner_id = ?", viewerID.(uint)).
		Order("created_at DESC")

	result, err := Paginate[models.Entry](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve entries"})
		return
	}

	responses := make([]EntryResponse, 0, len(result.Data))
	for _, e := range result.Data {
		responses = append(responses, buildEntryResponse(c, e))
	}
	c.JSON(http.StatusOK, PaginatedResponse[EntryResponse]{Data: responses, Meta: result.Meta})
}

// GetEntryByID godoc
// @Summary      Get one entry
// @Description  Retrieves an entry if the viewer passes its visibility policy.
// Works without a token too; anonymous viewers see only public entries.
// A denied entry is indistinguishable from a missing one.
// @Tags         entries
// @Produce      json
// @Param        id   path      int  true  "Entry ID"
// @Success      200  {object}  EntryResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /entries/{id} [get]
func GetEntryByID(c *gin.Context) {
	viewer := viewerFrom(c)

	entry, ok := loadEntry(c)
	if !ok {
		return
	}

	allowed, err := feedService.CanView(c.Request.Context(), viewer, entry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check entry visibility"})
		return
	}
	if !allowed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	c.JSON(http.StatusOK, buildEntryResponse(c, entry))
}

// UpdateEntry godoc
// @Summary      Update an entry
// @Description  Updates entry fields, including its privacy settings. Owner only.
// @Tags         entries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int              true "Entry ID"
// @Param        input body EntryUpdateInput true "Fields to update"
// @Success      200  {object}  EntryResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /entries/{id} [put]
func UpdateEntry(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	entry, ok := loadEntry(c)
	if !ok {
		return
	}
	if entry.OwnerID != viewerID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can update an entry"})
		return
	}

	var input EntryUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, p := range []*string{input.EntryPrivacy, input.ReactionPrivacy, input.CommentsPrivacy} {
		if p != nil && !feed.KnownPrivacy(*p) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown privacy level: " + *p})
			return
		}
	}

	updates := map[string]interface{}{}
	if input.WineName != nil {
		updates["wine_name"] = *input.WineName
	}
	if input.Vintage != nil {
		updates["vintage"] = *input.Vintage
	}
	if input.Region != nil {
		updates["region"] = *input.Region
	}
	if input.Rating != nil {
		updates["rating"] = *input.Rating
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.EntryPrivacy != nil {
		updates["entry_privacy"] = *input.EntryPrivacy
	}
	if input.ReactionPrivacy != nil {
		updates["reaction_privacy"] = *input.ReactionPrivacy
	}
	if input.CommentsPrivacy != nil {
		// The new-style setting supersedes the legacy scope from here on.
		updates["comments_privacy"] = *input.CommentsPrivacy
		updates["comments_scope"] = nil
	}
	if input.IsFeedVisible != nil {
		updates["is_feed_visible"] = *input.IsFeedVisible
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&entry).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update entry"})
			return
		}
	}

	reloaded, _ := loadEntryByID(entry.ID)
	c.JSON(http.StatusOK, buildEntryResponse(c, reloaded))
}

// DeleteEntry godoc
// @Summary      Delete an entry
// @Description  Deletes an entry. Deleting a root also deletes its shared copies.
// @Tags         entries
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Entry ID"
// @Success      200  {object}  map[string]string "{"message": "Entry deleted"}"
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /entries/{id} [delete]
func DeleteEntry(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	entry, ok := loadEntry(c)
	if !ok {
		return
	}
	if entry.OwnerID != viewerID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can delete an entry"})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if entry.RootEntryID == nil {
			if err := tx.Where("root_entry_id = ?", entry.ID).Delete(&models.Entry{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&entry).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete entry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Entry deleted"})
}

// region --- Helpers ---

func loadEntry(c *gin.Context) (models.Entry, bool) {
	entryID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry ID"})
		return models.Entry{}, false
	}
	entry, err := loadEntryByID(uint(entryID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return models.Entry{}, false
	}
	return entry, true
}

func loadEntryByID(id uint) (models.Entry, error) {
	var entry models.Entry
	err := database.DB.Preload("Photos").Preload("Grapes").First(&entry, id).Error
	return entry, err
}

func isAcceptedFriend(a, b uint) bool {
	var count int64
	database.DB.Model(&models.UserRelation{}).
		Where("((from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)) AND status = ?",
			a, b, b, a, models.StatusAccepted).
		Count(&count)
	return count > 0
}

func buildEntryResponse(c *gin.Context, e models.Entry) EntryResponse {
	resp := EntryResponse{
		ID:              e.ID,
		OwnerID:         e.OwnerID,
		RootEntryID:     e.RootEntryID,
		WineName:        e.WineName,
		Vintage:         e.Vintage,
		Region:          e.Region,
		Rating:          e.Rating,
		Notes:           e.Notes,
		EntryPrivacy:    e.EntryPrivacy,
		ReactionPrivacy: e.ReactionPrivacy,
		CommentsPrivacy: e.CommentsPrivacy,
		IsFeedVisible:   e.IsFeedVisible,
		Grapes:          []string{},
		PhotoURLs:       []string{},
		CreatedAt:       e.CreatedAt,
	}
	for _, g := range e.Grapes {
		resp.Grapes = append(resp.Grapes, g.Name)
	}
	for _, p := range e.Photos {
		if url := signPath(c, p.Path); url != "" {
			resp.PhotoURLs = append(resp.PhotoURLs, url)
		}
	}
	return resp
}

// endregion
