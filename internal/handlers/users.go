package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"activity-planner/internal/auth"
	"activity-planner/internal/models"
	"activity-planner/internal/repositories"
)

// UserHandler manages registration, login and the current-user endpoint.
type UserHandler struct {
	profileRepo repositories.ProfileRepository
	tokens      *auth.TokenManager
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(profileRepo repositories.ProfileRepository, tokens *auth.TokenManager) *UserHandler {
	return &UserHandler{profileRepo: profileRepo, tokens: tokens}
}

// Register creates an account and returns the authenticated user.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Username    string `json:"username" binding:"required"`
		DisplayName string `json:"displayName" binding:"required"`
		Password    string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register"})
		return
	}

	if err := h.profileRepo.CreateUser(c.Request.Context(), req.Username, req.DisplayName, hash); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUsernameTaken) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": "could not register"})
		return
	}

	h.respondWithUser(c, req.Username, http.StatusCreated)
}

// Login verifies credentials and returns the authenticated user.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := h.profileRepo.GetPasswordHash(c.Request.Context(), req.Username)
	if err != nil || !auth.CheckPassword(hash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	h.respondWithUser(c, req.Username, http.StatusOK)
}

// CurrentUser returns the user behind the bearer token with a fresh token.
func (h *UserHandler) CurrentUser(c *gin.Context) {
	h.respondWithUser(c, c.GetString("username"), http.StatusOK)
}

func (h *UserHandler) respondWithUser(c *gin.Context, username string, status int) {
	profile, err := h.profileRepo.GetProfile(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user"})
		return
	}

	token, err := h.tokens.Issue(username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	c.JSON(status, models.User{
		Username:    profile.Username,
		DisplayName: profile.DisplayName,
		Image:       profile.Image,
		Token:       token,
	})
}
