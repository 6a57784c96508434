package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"
	"vinolog/backend/internal/feed"

	"github.com/gin-gonic/gin"
)

// GetFeed godoc
// @Summary      Fetch a feed page
// @Description  Returns one page of the viewer's feed, newest first. Pass next_cursor
// back to fetch older pages. A page may come back shorter than the limit with
// has_more still true; keep fetching until has_more is false.
// @Tags         feed
// @Produce      json
// @Security     BearerAuth
// @Param        scope  query  string  false  "Feed scope (friends, public)" default(friends)
// @Param        cursor query  string  false  "RFC3339 cursor from the previous page"
// @Param        limit  query  int     false  "Entries per page" default(20)
// @Success      200  {object}  feed.Page
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse "Unable to load feed"
// @Router       /feed [get]
func GetFeed(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	scope := feed.Scope(c.DefaultQuery("scope", string(feed.ScopeFriends)))

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	var cursor *time.Time
	if raw := c.Query("cursor"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cursor, expected RFC3339 timestamp"})
			return
		}
		cursor = &t
	}

	page, err := feedService.FetchPage(c.Request.Context(), viewerID.(uint), scope, cursor, limit)
	if errors.Is(err, feed.ErrUnknownScope) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Scope must be 'friends' or 'public'"})
		return
	}
	if err != nil {
		log.Error("feed page fetch failed", "viewer_id", viewerID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load feed"})
		return
	}

	c.JSON(http.StatusOK, page)
}
