package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicpulse-be/models"
	"civicpulse-be/services"
	"civicpulse-be/store"
)

// IssueController exposes the issue lifecycle over HTTP.
type IssueController struct {
	lifecycle *services.Lifecycle
}

func NewIssueController(lifecycle *services.Lifecycle) *IssueController {
	return &IssueController{lifecycle: lifecycle}
}

// Create handles the creation of a new issue
func (i *IssueController) Create(c *gin.Context) {
	reporterID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Category    string   `json:"category" binding:"required"`
		Description string   `json:"description" binding:"max=1000"`
		Latitude    float64  `json:"latitude" binding:"required"`
		Longitude   float64  `json:"longitude" binding:"required"`
		MediaURLs   []string `json:"mediaUrls,omitempty"`
		IsAnonymous bool     `json:"isAnonymous,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Unknown categories are accepted; routing falls to the catch-all department.
	category := models.IssueCategory(input.Category)
	if input.Latitude < -90 || input.Latitude > 90 || input.Longitude < -180 || input.Longitude > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := i.lifecycle.CreateIssue(ctx, services.CreateIssueInput{
		ReporterID:  reporterID,
		Category:    category,
		Description: input.Description,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		MediaURLs:   input.MediaURLs,
		IsAnonymous: input.IsAnonymous,
	})
	if err != nil {
		var dup *services.DuplicateRejectedError
		switch {
		case errors.As(err, &dup):
			c.JSON(http.StatusConflict, gin.H{
				"error":      "Duplicate issue detected",
				"duplicates": dup.IssueIDs,
				"reasons":    dup.Reasons,
			})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Reporter not found"})
		default:
			log.Println("Error creating issue:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create issue"})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// List handles retrieving issues with filtering, sorting and pagination
func (i *IssueController) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	opts := services.ListIssuesOptions{
		Category:   c.Query("category"),
		Status:     c.Query("status"),
		Department: c.Query("department"),
		Limit:      int64(limit),
		Offset:     int64((page - 1) * limit),
	}

	switch c.DefaultQuery("sort", "newest") {
	case "newest":
		opts.SortBy = "createdAt"
	case "oldest":
		opts.SortBy = "createdAt"
		opts.SortAsc = true
	case "most_voted":
		opts.SortBy = "upvoteCount"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort option"})
		return
	}

	if latStr, lngStr := c.Query("latitude"), c.Query("longitude"); latStr != "" && lngStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat != nil || errLng != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
			return
		}
		opts.Latitude = &lat
		opts.Longitude = &lng
		if radiusStr := c.Query("radiusKm"); radiusStr != "" {
			if radius, err := strconv.ParseFloat(radiusStr, 64); err == nil {
				opts.RadiusKm = radius
			}
		}
	}

	issues, err := i.lifecycle.ListIssues(ctx, opts)
	if err != nil {
		log.Println("Error fetching issues:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch issues"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issues": issues,
		"page":   page,
		"limit":  limit,
		"count":  len(issues),
	})
}

// Recent returns open issues from the last 30 days for the public map feed.
func (i *IssueController) Recent(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	since := time.Now().AddDate(0, 0, -30)
	opts := services.ListIssuesOptions{Since: &since, SortBy: "createdAt", Limit: 200}
	if latStr, lngStr := c.Query("latitude"), c.Query("longitude"); latStr != "" && lngStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat != nil || errLng != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
			return
		}
		opts.Latitude = &lat
		opts.Longitude = &lng
	}

	issues, err := i.lifecycle.ListIssues(ctx, opts)
	if err != nil {
		log.Println("Error fetching recent issues:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch issues"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"issues": issues, "count": len(issues)})
}

// Mine lists the authenticated user's own reports
func (i *IssueController) Mine(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issues, err := i.lifecycle.ListIssues(ctx, services.ListIssuesOptions{
		ReporterID: &userID,
		SortBy:     "createdAt",
	})
	if err != nil {
		log.Println("Error fetching user issues:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch issues"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"issues": issues, "count": len(issues)})
}

// Get fetches one issue by id
func (i *IssueController) Get(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issue, err := i.lifecycle.GetIssue(ctx, issueID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
			return
		}
		log.Println("Error fetching issue:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch issue"})
		return
	}

	c.JSON(http.StatusOK, issue)
}

// ToggleUpvote adds or removes the caller's upvote on an issue
func (i *IssueController) ToggleUpvote(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := i.lifecycle.ToggleUpvote(ctx, issueID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
			return
		}
		log.Println("Error toggling upvote:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle upvote"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateStatus moves an issue to a new lifecycle status. Only the responder
// assigned to the issue may call it.
func (i *IssueController) UpdateStatus(c *gin.Context) {
	actorID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issue, err := i.lifecycle.TransitionStatus(ctx, issueID, actorID, models.IssueStatus(input.Status))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status transition"})
		case errors.Is(err, services.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the assigned responder may update this issue"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		default:
			log.Println("Error updating status:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		}
		return
	}

	c.JSON(http.StatusOK, issue)
}
