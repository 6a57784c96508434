package handler

import (
	"vinolog/backend/internal/blob"
	"vinolog/backend/internal/feed"
	"vinolog/backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// Package-level collaborators, wired once from main before routes are mounted.
var (
	feedService *feed.Service
	signer      blob.Signer
	log         *logger.Logger
)

// Setup injects the handlers' collaborators.
func Setup(svc *feed.Service, s blob.Signer, l *logger.Logger) {
	feedService = svc
	signer = s
	log = l.With("component", "handler")
}

// viewerFrom returns the authenticated user ID, or zero for an anonymous viewer
// on optionally-authenticated routes. Zero matches no owner and no friend edge,
// so anonymous viewers pass only public policies.
func viewerFrom(c *gin.Context) uint {
	if id, ok := c.Get("userID"); ok {
		return id.(uint)
	}
	return 0
}
