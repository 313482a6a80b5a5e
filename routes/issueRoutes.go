package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"civicpulse-be/controllers"
	"civicpulse-be/middlewares"
)

// dailyIssueLimit caps how many issues one user may create per day.
const dailyIssueLimit = 10

// IssueRoutes sets up the issue routes
func IssueRoutes(r *gin.Engine, issue *controllers.IssueController, messages *controllers.MessageController, uploads *controllers.UploadController, redisClient *redis.Client) {
	issues := r.Group("/api/issues")
	{
		issues.POST("",
			middlewares.AuthMiddleware(),
			middlewares.IssueRateLimiter(redisClient, "issue_create", dailyIssueLimit),
			issue.Create)
		issues.POST("/initiate-upload", middlewares.AuthMiddleware(), uploads.Presign)
		issues.GET("", issue.List)
		issues.GET("/recent", issue.Recent)
		issues.GET("/mine", middlewares.AuthMiddleware(), issue.Mine)
		issues.GET("/:id", issue.Get)
		issues.POST("/:id/upvote", middlewares.AuthMiddleware(), issue.ToggleUpvote)
		issues.PATCH("/:id/status",
			middlewares.AuthMiddleware(),
			middlewares.RequireResponder(),
			issue.UpdateStatus)

		issues.POST("/:id/messages", middlewares.AuthMiddleware(), messages.Send)
		issues.GET("/:id/messages", middlewares.AuthMiddleware(), messages.History)
	}
}
