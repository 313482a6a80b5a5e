package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"civicpulse-be/config"
	"civicpulse-be/controllers"
	"civicpulse-be/realtime"
	"civicpulse-be/routes"
	"civicpulse-be/services"
	"civicpulse-be/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	client, db := config.ConnectDB()
	redisClient := config.ConnectRedis()

	mongoStore, err := store.NewMongoStore(client, db)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}

	registry := realtime.NewRegistry()
	defer registry.Close()

	var classifier services.ImageClassifier
	if classifierURL := os.Getenv("CLASSIFIER_URL"); classifierURL != "" {
		classifier = services.NewHTTPClassifier(classifierURL)
	}

	lifecycle := services.NewLifecycle(
		mongoStore,
		services.NewSimilarityEngine(),
		services.NewTextSignalExtractor(services.NewVaderSentiment()),
		services.NewAssignmentBalancer(mongoStore),
		services.NewTrustLedger(mongoStore),
		registry,
		classifier,
	)

	var mediaStorage *services.MediaStorage
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		mediaStorage, err = services.NewMediaStorage(
			endpoint,
			os.Getenv("MINIO_ACCESS_KEY"),
			os.Getenv("MINIO_SECRET_KEY"),
			os.Getenv("MINIO_BUCKET"),
			os.Getenv("MINIO_USE_SSL") == "true",
		)
		if err != nil {
			log.Fatalf("Failed to initialize media storage: %v", err)
		}
	}

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		allowedOrigins = strings.Split(origins, ",")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))

	routes.AuthRoutes(r, controllers.NewAuthController(mongoStore))
	routes.IssueRoutes(r,
		controllers.NewIssueController(lifecycle),
		controllers.NewMessageController(services.NewMessageService(mongoStore, registry)),
		controllers.NewUploadController(mediaStorage),
		redisClient)
	routes.NotificationRoutes(r, controllers.NewNotificationController(mongoStore))
	routes.AnalyticsRoutes(r, controllers.NewAnalyticsController(services.NewAnalyticsService(mongoStore)))
	routes.WSRoutes(r, controllers.NewWSController(registry))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
