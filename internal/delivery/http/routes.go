package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/unicounsel/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger logrus.FieldLogger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/filters", handler.FilterOptions)
		v1.GET("/scholarships", handler.Scholarships)
		v1.POST("/matches/compute", handler.ComputeMatches)
		v1.POST("/fees/compare", handler.CompareFees)
		v1.POST("/catalog/reload", handler.ReloadCatalog)

		users := v1.Group("/users/:userId")
		{
			users.PUT("/preferences", handler.SavePreferences)
			users.GET("/preferences", handler.GetPreferences)
			users.GET("/matches", handler.ListMatches)
			users.GET("/matches/:universityId", handler.GetMatch)
			users.POST("/matches/:universityId/favorite", handler.ToggleFavorite)
			users.POST("/matches/:universityId/shortlist", handler.ToggleShortlist)
			users.GET("/favorites", handler.Favorites)
			users.GET("/dashboard", handler.DashboardStats)
		}
	}

	return router
}
