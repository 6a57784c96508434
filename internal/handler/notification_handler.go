package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"
	"vinolog/backend/internal/database"
	"vinolog/backend/internal/hub"
	"vinolog/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// NotificationResponse defines the structure of a stored notification.
type NotificationResponse struct {
	ID        uint                    `json:"id"`
	CreatedAt time.Time               `json:"created_at"`
	Type      models.NotificationType `json:"type"`
	EntryID   *uint                   `json:"entry_id,omitempty"`
	Body      string                  `json:"body"`
	ReadAt    *time.Time              `json:"read_at,omitempty"`
	Actor     *PublicUserResponse     `json:"actor,omitempty"`
}

// GetNotifications godoc
// @Summary      List notifications
// @Description  Returns the viewer's notifications, newest first, with pagination.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(20)
// @Success      200   {object}  PaginatedResponse[NotificationResponse]
// @Failure      401   {object}  ErrorResponse
// @Router       /notifications [get]
func GetNotifications(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	query := database.DB.
		Where("user_id = ?", viewerID.(uint)).
		Preload("Actor").
		Order("created_at DESC")

	result, err := Paginate[models.Notification](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	responses := make([]NotificationResponse, 0, len(result.Data))
	for _, n := range result.Data {
		resp := NotificationResponse{
			ID:        n.ID,
			CreatedAt: n.CreatedAt,
			Type:      n.Type,
			EntryID:   n.EntryID,
			Body:      n.Body,
			ReadAt:    n.ReadAt,
		}
		if n.Actor.ID != 0 {
			actor := buildPublicUserResponse(c, n.Actor, viewerID.(uint))
			resp.Actor = &actor
		}
		responses = append(responses, resp)
	}

	c.JSON(http.StatusOK, PaginatedResponse[NotificationResponse]{
		Data: responses,
		Meta: result.Meta,
	})
}

// MarkNotificationRead godoc
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Notification ID"
// @Success      200  {object}  map[string]string "{"message": "Notification marked as read"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /notifications/{id}/read [post]
func MarkNotificationRead(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	now := time.Now()
	result := database.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", uint(notificationID), viewerID.(uint)).
		Update("read_at", &now)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification as read"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found or already read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// StreamEvents godoc
// @Summary      Subscribe to live events
// @Description  Opens a Server-Sent Events stream that pushes the viewer's
// notifications as they happen.
// @Tags         notifications
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200  {string}  string  "event stream"
// @Failure      401  {object}  ErrorResponse
// @Router       /events [get]
func StreamEvents(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	client := make(hub.Client, 16)
	hub.GlobalHub.Subscribe(viewerID.(uint), client)
	defer hub.GlobalHub.Unsubscribe(viewerID.(uint), client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case payload, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(payload))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
