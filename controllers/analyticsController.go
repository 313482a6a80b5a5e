package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"civicpulse-be/services"
)

// AnalyticsController serves the responder dashboard aggregates.
type AnalyticsController struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsController(analytics *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analytics: analytics}
}

// Stats returns the KPI block for the caller's department
func (a *AnalyticsController) Stats(c *gin.Context) {
	department := c.Query("department")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := a.analytics.Stats(ctx, department)
	if err != nil {
		log.Println("Error computing stats:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Heatmap returns grouped issue coordinates for the map overlay
func (a *AnalyticsController) Heatmap(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	points, err := a.analytics.Heatmap(ctx, c.Query("department"), c.Query("status"), c.Query("category"))
	if err != nil {
		log.Println("Error computing heatmap:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute heatmap"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": points, "count": len(points)})
}
