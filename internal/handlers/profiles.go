package handlers

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"activity-planner/internal/models"
	"activity-planner/internal/repositories"
	"activity-planner/internal/telemetry"
)

// ProfileHandler manages profile, bio and photo endpoints.
type ProfileHandler struct {
	profileRepo repositories.ProfileRepository
	audit       *telemetry.AuditEmitter
	uploadDir   string
}

// NewProfileHandler builds a ProfileHandler.
func NewProfileHandler(profileRepo repositories.ProfileRepository, audit *telemetry.AuditEmitter, uploadDir string) *ProfileHandler {
	return &ProfileHandler{profileRepo: profileRepo, audit: audit, uploadDir: uploadDir}
}

// GetProfile returns a user's public profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileRepo.GetProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrProfileNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "profile not found"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateBio updates the requesting user's display name and bio.
func (h *ProfileHandler) UpdateBio(c *gin.Context) {
	var req struct {
		DisplayName string `json:"displayName" binding:"required"`
		Bio         string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username := c.GetString("username")
	if err := h.profileRepo.UpdateBio(c.Request.Context(), username, req.DisplayName, req.Bio); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "bio updated", requestIDFromContext(c), usernameFromContext(c))
	c.Status(http.StatusNoContent)
}

// UploadPhoto stores an uploaded image and returns the photo record.
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}

	username := c.GetString("username")
	photoID := uuid.NewString()
	name := photoID + filepath.Ext(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, name)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store file"})
		return
	}

	photo := models.Photo{ID: photoID, URL: "/uploads/" + name}
	if err := h.profileRepo.AddPhoto(c.Request.Context(), username, photo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store photo"})
		return
	}

	// a first photo comes back flagged main
	profile, err := h.profileRepo.GetProfile(c.Request.Context(), username)
	if err == nil {
		for _, p := range profile.Photos {
			if p.ID == photoID {
				photo = p
			}
		}
	}

	h.audit.Emit(c.Request.Context(), "INFO", "photo uploaded", requestIDFromContext(c), usernameFromContext(c))
	c.JSON(http.StatusCreated, photo)
}

// SetMainPhoto flips the requesting user's main photo.
func (h *ProfileHandler) SetMainPhoto(c *gin.Context) {
	username := c.GetString("username")
	photoID := c.Param("photo_id")

	if err := h.profileRepo.SetMainPhoto(c.Request.Context(), username, photoID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrPhotoNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not set main photo"})
		return
	}

	c.Status(http.StatusNoContent)
}

// DeletePhoto removes a non-main photo.
func (h *ProfileHandler) DeletePhoto(c *gin.Context) {
	username := c.GetString("username")
	photoID := c.Param("photo_id")

	if err := h.profileRepo.DeletePhoto(c.Request.Context(), username, photoID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPhotoNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		case errors.Is(err, repositories.ErrMainPhotoDelete):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete the main photo"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete photo"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
