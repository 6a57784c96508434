package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"vinolog/backend/internal/auth"
	"vinolog/backend/internal/blob"
	"vinolog/backend/internal/config"
	"vinolog/backend/internal/database"
	"vinolog/backend/internal/feed"
	"vinolog/backend/internal/handler"
	"vinolog/backend/internal/logger"
	"vinolog/backend/internal/middleware"
	"vinolog/backend/internal/store"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "vinolog/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Vinolog API
// @version         1.0
// @description     This is the API for the Vinolog wine journal service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	log, err := logger.New(config.AppConfig.LogMode)
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	defer log.Sync()

	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	signer, err := blob.NewGCSSigner(
		context.Background(),
		config.AppConfig.GCSBucketName,
		time.Duration(config.AppConfig.SignedURLTTLMin)*time.Minute,
		log,
	)
	if err != nil {
		log.Fatal("failed to create blob signer", "error", err)
	}
	defer signer.Close()

	feedStore := store.New(database.DB, log)
	feedService := feed.NewService(feedStore, signer, log)
	handler.Setup(feedService, signer, log)

	router := gin.Default()
	router.Use(middleware.RequestID(), middleware.RequestLogger(log))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("", handler.SearchUsers) // Must be before /:id
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.GET("/me/relations", handler.GetRelations)
			userRoutes.GET("/:id", handler.GetUserByID)
			userRoutes.GET("/:id/relations", handler.GetUserRelationsByID)

			// Friendship routes
			userRoutes.POST("/:id/request", handler.SendRequest)
			userRoutes.POST("/:id/accept", handler.AcceptRequest)
			userRoutes.POST("/:id/decline", handler.DeclineRequest)
			userRoutes.POST("/:id/remove", handler.RemoveRelation)
		}

		// Feed route (protected)
		feedRoutes := apiV1.Group("/feed")
		feedRoutes.Use(auth.AuthMiddleware())
		{
			feedRoutes.GET("", handler.GetFeed)
		}

		// Entry routes. Single-entry reads take an optional token so public
		// entries work as permalinks; everything else requires auth.
		entryRoutes := apiV1.Group("/entries")
		{
			entryRoutes.GET("/:id", auth.OptionalAuthMiddleware(), handler.GetEntryByID)
			entryRoutes.GET("/:id/comments", auth.OptionalAuthMiddleware(), handler.GetEntryComments)

			entryRoutes.POST("", auth.AuthMiddleware(), handler.CreateEntry)
			entryRoutes.GET("", auth.AuthMiddleware(), handler.GetMyEntries)
			entryRoutes.PUT("/:id", auth.AuthMiddleware(), handler.UpdateEntry)
			entryRoutes.DELETE("/:id", auth.AuthMiddleware(), handler.DeleteEntry)

			entryRoutes.POST("/:id/comments", auth.AuthMiddleware(), handler.CreateComment)
			entryRoutes.POST("/:id/reactions", auth.AuthMiddleware(), handler.ToggleReaction)
		}

		// Comment routes (protected)
		commentRoutes := apiV1.Group("/comments")
		commentRoutes.Use(auth.AuthMiddleware())
		{
			commentRoutes.DELETE("/:id", handler.DeleteComment)
		}

		// Notification routes (protected)
		notificationRoutes := apiV1.Group("/notifications")
		notificationRoutes.Use(auth.AuthMiddleware())
		{
			notificationRoutes.GET("", handler.GetNotifications)
			notificationRoutes.POST("/:id/read", handler.MarkNotificationRead)
		}

		// Live event stream (protected)
		apiV1.GET("/events", auth.AuthMiddleware(), handler.StreamEvents)

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
		{
			// Grapes CRUD
			grapes := adminRoutes.Group("/grapes")
			{
				grapes.POST("", handler.CreateGrape)
				grapes.GET("", handler.GetGrapes)
				grapes.PUT("/:id", handler.UpdateGrape)
				grapes.DELETE("/:id", handler.DeleteGrape)
			}
		}
	}

	port := config.AppConfig.Port
	if port == "" {
		port = "8080"
	}

	log.Info("server starting", "port", port)
	if err := router.Run(fmt.Sprintf(":%s", port)); err != nil {
		log.Fatal("failed to start server", "error", err)
	}
}
