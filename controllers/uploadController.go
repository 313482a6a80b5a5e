package controllers

import (
	"context"
	"log"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"

	"civicpulse-be/services"
)

// UploadController hands out presigned upload URLs for issue media.
type UploadController struct {
	storage *services.MediaStorage
}

func NewUploadController(storage *services.MediaStorage) *UploadController {
	return &UploadController{storage: storage}
}

// Presign returns a time-limited PUT URL for a media file
func (u *UploadController) Presign(c *gin.Context) {
	if u.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Media storage not configured"})
		return
	}

	var input struct {
		Filename string `json:"filename" binding:"required,max=200"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Strip any path components the client sneaks in
	filename := path.Base(input.Filename)
	if filename == "." || filename == "/" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filename"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	url, expiresIn, err := u.storage.PresignUpload(ctx, filename)
	if err != nil {
		log.Println("Error presigning upload:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to presign upload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uploadUrl": url,
		"expiresIn": expiresIn,
	})
}
