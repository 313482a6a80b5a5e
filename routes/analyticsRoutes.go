package routes

import (
	"github.com/gin-gonic/gin"

	"civicpulse-be/controllers"
	"civicpulse-be/middlewares"
)

// AnalyticsRoutes sets up the responder dashboard routes
func AnalyticsRoutes(r *gin.Engine, analytics *controllers.AnalyticsController) {
	group := r.Group("/api/analytics", middlewares.AuthMiddleware(), middlewares.RequireResponder())
	{
		group.GET("/stats", analytics.Stats)
		group.GET("/heatmap", analytics.Heatmap)
	}
}
