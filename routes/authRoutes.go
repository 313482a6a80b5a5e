package routes

import (
	"github.com/gin-gonic/gin"

	"civicpulse-be/controllers"
	"civicpulse-be/middlewares"
)

// AuthRoutes sets up the auth routes
func AuthRoutes(r *gin.Engine, auth *controllers.AuthController) {
	user := r.Group("/api/auth")
	{
		user.POST("/register", auth.Register)
		user.POST("/login", auth.Login)
		user.GET("/me", middlewares.AuthMiddleware(), auth.Me)
		user.POST("/logout", auth.Logout)
	}
}
