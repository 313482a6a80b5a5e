package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicpulse-be/models"
	"civicpulse-be/store"
	authUtils "civicpulse-be/utils"
)

// AuthController handles registration, login and session introspection.
type AuthController struct {
	store store.Store
}

func NewAuthController(s store.Store) *AuthController {
	return &AuthController{store: s}
}

// Register handles user registration
func (a *AuthController) Register(c *gin.Context) {
	var input struct {
		FullName   string `json:"fullName" binding:"required,max=50"`
		Phone      string `json:"phone" binding:"required,min=10,max=15"`
		Password   string `json:"password" binding:"required,min=6"`
		Role       string `json:"role,omitempty"`
		Department string `json:"department,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := models.RoleCitizen
	switch input.Role {
	case "", "citizen":
	case "responder":
		role = models.RoleResponder
		if input.Department == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Responders must specify a department"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := a.store.GetUserByPhone(ctx, input.Phone); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User with this phone already exists"})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Println("Error checking existing user:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   input.FullName,
		Phone:      input.Phone,
		Password:   input.Password,
		Role:       role,
		Department: input.Department,
		TrustScore: models.DefaultTrustScore,
		IsActive:   true,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := user.HashPassword(); err != nil {
		log.Println("Error hashing password:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	if err := a.store.SaveUser(ctx, &user); err != nil {
		log.Println("Error inserting user:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         user.ID,
		"fullName":   user.FullName,
		"phone":      user.Phone,
		"role":       user.Role,
		"trustScore": user.TrustScore,
		"createdAt":  user.CreatedAt,
	})
}

// Login handles user login
func (a *AuthController) Login(c *gin.Context) {
	var input struct {
		Phone    string `json:"phone" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := a.store.GetUserByPhone(ctx, input.Phone)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !user.ComparePassword(input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := authUtils.GenerateToken(user.ID.Hex(), string(user.Role))
	if err != nil {
		log.Println("Error generating token:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	environment := os.Getenv("GO_ENV")
	domain := os.Getenv("DOMAIN")

	// For production, don't set domain to allow cross-origin cookies
	if environment == "production" {
		domain = ""
	}

	cookie := &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		MaxAge:   3600,
		Path:     "/",
		Domain:   domain,
		Secure:   environment == "production",
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	}
	http.SetCookie(c.Writer, cookie)

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"fullName":   user.FullName,
		"phone":      user.Phone,
		"role":       user.Role,
		"department": user.Department,
		"trustScore": user.TrustScore,
		"token":      token,
	})
}

// Me retrieves the authenticated user's information
func (a *AuthController) Me(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := a.store.GetUser(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"fullName":   user.FullName,
		"phone":      user.Phone,
		"role":       user.Role,
		"department": user.Department,
		"trustScore": user.TrustScore,
		"createdAt":  user.CreatedAt,
	})
}

// Logout clears the auth_token cookie
func (a *AuthController) Logout(c *gin.Context) {
	environment := os.Getenv("GO_ENV")
	domain := os.Getenv("DOMAIN")

	c.SetCookie("auth_token", "", -1, "/", domain, environment == "production", true)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// currentUserID reads the user id set by the auth middleware.
func currentUserID(c *gin.Context) (primitive.ObjectID, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return primitive.NilObjectID, errors.New("user not authenticated")
	}
	hex, ok := userID.(string)
	if !ok {
		return primitive.NilObjectID, errors.New("user not authenticated")
	}
	return primitive.ObjectIDFromHex(hex)
}
