package http

import (
	"github.com/gin-gonic/gin"

	"github.com/certwatch/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Keyword catalog endpoints
		keywords := v1.Group("/keywords")
		{
			keywords.GET("/categories", handler.ListKeywordCategories)
			keywords.GET("/search", handler.SearchKeywords)
			keywords.GET("/:category", handler.GetKeywords)
		}

		// Relevance probe and crawl tagging
		v1.POST("/match", handler.MatchProbe)
		v1.POST("/ingest/tag", handler.TagRecords)

		// Smart audit
		v1.POST("/audit/run", handler.RunAudit)

		// Pending judgment review
		judgments := v1.Group("/judgments")
		{
			judgments.GET("/pending", handler.ListPendingJudgments)
			judgments.GET("/stats", handler.PendingStats)
			judgments.GET("/suggested-blacklist", handler.SuggestedBlacklistTerms)
			judgments.POST("/batch-confirm", handler.BatchConfirmJudgments)
			judgments.POST("/cleanup", handler.CleanupJudgments)
			judgments.GET("/:id", handler.GetJudgment)
			judgments.POST("/:id/confirm", handler.ConfirmJudgment)
			judgments.POST("/:id/reject", handler.RejectJudgment)
		}

		// Manufacturer blacklist
		blacklist := v1.Group("/blacklist")
		{
			blacklist.GET("", handler.ListBlacklist)
			blacklist.POST("", handler.AddBlacklistTerm)
		}
	}

	return router
}
