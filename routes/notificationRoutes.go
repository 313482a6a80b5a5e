package routes

import (
	"github.com/gin-gonic/gin"

	"civicpulse-be/controllers"
	"civicpulse-be/middlewares"
)

// NotificationRoutes sets up the notification routes
func NotificationRoutes(r *gin.Engine, notifications *controllers.NotificationController) {
	group := r.Group("/api/notifications", middlewares.AuthMiddleware())
	{
		group.GET("", notifications.List)
		group.PATCH("/:id/read", notifications.MarkRead)
		group.PATCH("/read-all", notifications.MarkAllRead)
	}
}
