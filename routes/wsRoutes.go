package routes

import (
	"github.com/gin-gonic/gin"

	"civicpulse-be/controllers"
)

// WSRoutes sets up the live update routes
func WSRoutes(r *gin.Engine, ws *controllers.WSController) {
	r.GET("/ws/updates/:user_id", ws.Updates)
	r.GET("/ws/issues", ws.Feed)
}
