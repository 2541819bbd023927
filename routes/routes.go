package routes

import (
	"github.com/gin-gonic/gin"

	"map-action-api/handlers"
)

// RegisterRoutes sets up all HTTP routes for the application.
func RegisterRoutes(router *gin.Engine, h *handlers.Handler) {

	api := router.Group("/api")
	{
		// Incident analysis pipeline
		api.POST("/analysis", h.AnalyzeIncident)
		api.GET("/analysis", h.ListReports)
		api.GET("/analysis/:id", h.GetReport)
		api.GET("/analysis/:id/export/excel", h.ExportReportExcel)

		// Incident chat
		api.POST("/chat", h.Chat)
		api.GET("/chat/:session_id/history", h.ChatHistory)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "OK",
			"service": "Map Action API",
		})
	})
}
