package rest

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler) {
	// Health check endpoint (no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Launch a token from a post
		v1.POST("/launch", handler.Launch)

		// Deployed token listing (public read access)
		v1.GET("/tokens", handler.ListTokens)

		// Launch history with filters (public read access)
		v1.GET("/launches", handler.ListLaunches)

		// Deployment statistics (public read access)
		v1.GET("/stats", handler.GetStats)
	}
}
