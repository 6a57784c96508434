package handler

import (
	"net/http"
	"strconv"
	"vinolog/backend/internal/database"
	"vinolog/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// CommentInput defines the structure for posting a comment.
type CommentInput struct {
	Body            string `json:"body" binding:"required"`
	ParentCommentID *uint  `json:"parent_comment_id,omitempty"`
}

// ReactionInput defines the structure for toggling a reaction.
type ReactionInput struct {
	Emoji string `json:"emoji" binding:"required" example:"🍷"`
}

// GetEntryComments godoc
// @Summary      Get an entry's comment thread
// @Description  Returns top-level comments oldest first, each with its replies.
// Works without a token too. A viewer the comments policy denies gets an empty thread.
// @Tags         comments
// @Produce      json
// @Param        id   path      int  true  "Entry ID"
// @Success      200  {array}   feed.ThreadComment
// @Failure      404  {object}  ErrorResponse
// @Router       /entries/{id}/comments [get]
func GetEntryComments(c *gin.Context) {
	viewer := viewerFrom(c)

	entry, ok := loadEntry(c)
	if !ok {
		return
	}

	// The entry itself must be visible before its comments are even considered.
	allowed, err := feedService.CanView(c.Request.Context(), viewer, entry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check entry visibility"})
		return
	}
	if !allowed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	thread, err := feedService.Thread(c.Request.Context(), viewer, entry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load comments"})
		return
	}

	c.JSON(http.StatusOK, thread)
}

// CreateComment godoc
// @Summary      Comment on an entry
// @Description  Posts a comment or a single-level reply. The comments policy is
// re-checked server-side; a stale client that believed it could comment is rejected.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int          true "Entry ID"
// @Param        input body CommentInput true "Comment Info"
// @Success      201  {object}  map[string]uint "{"id": 1}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Comments not allowed for this viewer"
// @Failure      404  {object}  ErrorResponse
// @Router       /entries/{id}/comments [post]
func CreateComment(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	entry, ok := loadEntry(c)
	if !ok {
		return
	}

	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allowed, err := feedService.CanComment(c.Request.Context(), viewerID.(uint), entry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check comment policy"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "Comments are not allowed on this entry"})
		return
	}

	if input.ParentCommentID != nil {
		var parent models.Comment
		if err := database.DB.First(&parent, *input.ParentCommentID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Parent comment not found"})
			return
		}
		if parent.EntryID != entry.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parent comment belongs to a different entry"})
			return
		}
		// Replies stay one level deep.
		if parent.ParentCommentID != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot reply to a reply"})
			return
		}
	}

	comment := models.Comment{
		EntryID:         entry.ID,
		UserID:          viewerID.(uint),
		ParentCommentID: input.ParentCommentID,
		Body:            input.Body,
	}
	if err := database.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	if entry.OwnerID != viewerID.(uint) {
		entryID := entry.ID
		notify(c, entry.OwnerID, viewerID.(uint), models.NotificationComment, &entryID, "commented on your tasting")
	}

	c.JSON(http.StatusCreated, gin.H{"id": comment.ID})
}

// DeleteComment godoc
// @Summary      Delete a comment
// @Description  Soft-deletes the viewer's own comment. The row stays so replies
// keep their place; readers see it redacted.
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Comment ID"
// @Success      200  {object}  map[string]string "{"message": "Comment deleted"}"
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /comments/{id} [delete]
func DeleteComment(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	var comment models.Comment
	if err := database.DB.First(&comment, uint(commentID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if comment.UserID != viewerID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can delete a comment"})
		return
	}

	if err := database.DB.Delete(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// ToggleReaction godoc
// @Summary      Toggle a reaction
// @Description  Adds the emoji reaction if the viewer hasn't used it on this entry,
// removes it if they have. The reactions policy is re-checked server-side.
// @Tags         reactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int           true "Entry ID"
// @Param        input body ReactionInput true "Reaction Info"
// @Success      200  {object}  map[string]bool "{"reacted": true}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Reactions not allowed for this viewer"
// @Failure      404  {object}  ErrorResponse
// @Router       /entries/{id}/reactions [post]
func ToggleReaction(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	entry, ok := loadEntry(c)
	if !ok {
		return
	}

	var input ReactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allowed, err := feedService.CanReact(c.Request.Context(), viewerID.(uint), entry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check reaction policy"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "Reactions are not allowed on this entry"})
		return
	}

	result := database.DB.
		Where("entry_id = ? AND user_id = ? AND emoji = ?", entry.ID, viewerID.(uint), input.Emoji).
		Delete(&models.Reaction{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle reaction"})
		return
	}
	if result.RowsAffected > 0 {
		c.JSON(http.StatusOK, gin.H{"reacted": false})
		return
	}

	reaction := models.Reaction{
		EntryID: entry.ID,
		UserID:  viewerID.(uint),
		Emoji:   input.Emoji,
	}
	if err := database.DB.Create(&reaction).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle reaction"})
		return
	}

	if entry.OwnerID != viewerID.(uint) {
		entryID := entry.ID
		notify(c, entry.OwnerID, viewerID.(uint), models.NotificationReaction, &entryID, "reacted to your tasting")
	}

	c.JSON(http.StatusOK, gin.H{"reacted": true})
}
