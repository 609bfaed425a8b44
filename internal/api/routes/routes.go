package routes

import (
	"rpascribe/internal/api/handlers"
	"rpascribe/internal/api/middleware"
	"rpascribe/internal/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	// Global middleware
	router.Use(middleware.CORSMiddleware())
	router.Use(gin.Recovery())

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no auth required)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", handlers.Login)
			auth.POST("/register", handlers.Register)
		}

		// Health check
		v1.GET("/health", handlers.HealthCheck)

		// WebSocket endpoint (no auth middleware for WebSocket)
		v1.GET("/ws/sessions", handlers.SessionWebSocket)

		// Protected routes (auth required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User management
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile)
				users.PUT("/profile", handlers.UpdateProfile)
				users.GET("", handlers.GetUsers)
				users.PUT("/:id/password", handlers.AdminChangePassword) // Admin only
			}

			// Recording sessions
			sessions := protected.Group("/sessions")
			{
				sessions.POST("/start", handlers.StartSession)
				sessions.POST("/stop", handlers.StopSession)
				sessions.POST("/pause", handlers.PauseSession)
				sessions.POST("/resume", handlers.ResumeSession)
				sessions.POST("/restart", handlers.RestartSession)
				sessions.GET("/status", handlers.GetSessionStatus)
				sessions.POST("/export", handlers.ExportSession)
				sessions.GET("/exports", handlers.GetExports)
				sessions.GET("", handlers.GetSessions)
				sessions.GET("/:id", handlers.GetSession)
			}
		}
	}

	return router
}
