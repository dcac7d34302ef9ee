package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"activity-planner/internal/models"
	"activity-planner/internal/repositories"
	"activity-planner/internal/telemetry"
)

// ActivityHandler manages activity CRUD and attendance endpoints.
type ActivityHandler struct {
	activityRepo repositories.ActivityRepository
	commentRepo  repositories.CommentRepository
	audit        *telemetry.AuditEmitter
}

// NewActivityHandler builds an ActivityHandler.
func NewActivityHandler(activityRepo repositories.ActivityRepository, commentRepo repositories.CommentRepository, audit *telemetry.AuditEmitter) *ActivityHandler {
	return &ActivityHandler{activityRepo: activityRepo, commentRepo: commentRepo, audit: audit}
}

type activityRequest struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date" binding:"required"`
	City        string    `json:"city"`
	Venue       string    `json:"venue"`
}

// ListActivities returns all activities decorated for the requesting user.
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	username := c.GetString("username")

	activities, err := h.activityRepo.ListActivities(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load activities"})
		return
	}

	for i := range activities {
		decorateForUser(&activities[i], username)
	}

	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

// GetActivity returns a single activity with attendees and comments.
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	username := c.GetString("username")

	activity, err := h.activityRepo.GetActivity(c.Request.Context(), c.Param("activity_id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrActivityNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "activity not found"})
		return
	}

	comments, err := h.commentRepo.ListComments(c.Request.Context(), activity.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load comments"})
		return
	}
	activity.Comments = comments

	decorateForUser(&activity, username)
	c.JSON(http.StatusOK, activity)
}

// CreateActivity stores a new activity hosted by the requesting user.
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username := c.GetString("username")
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	activity := models.Activity{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Date:        req.Date,
		City:        req.City,
		Venue:       req.Venue,
	}
	if err := h.activityRepo.CreateActivity(c.Request.Context(), activity, username); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create activity"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "activity created", requestIDFromContext(c), usernameFromContext(c))
	c.JSON(http.StatusCreated, gin.H{"id": activity.ID})
}

// UpdateActivity replaces a stored activity (host only).
func (h *ActivityHandler) UpdateActivity(c *gin.Context) {
	activityID := c.Param("activity_id")
	username := c.GetString("username")

	stored, err := h.activityRepo.GetActivity(c.Request.Context(), activityID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrActivityNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "activity not found"})
		return
	}
	if stored.HostUsername() != username {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the host can edit the activity"})
		return
	}

	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	activity := models.Activity{
		ID:          activityID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Date:        req.Date,
		City:        req.City,
		Venue:       req.Venue,
	}
	if err := h.activityRepo.UpdateActivity(c.Request.Context(), activity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update activity"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "activity updated", requestIDFromContext(c), usernameFromContext(c))
	c.Status(http.StatusNoContent)
}

// DeleteActivity removes an activity (host only).
func (h *ActivityHandler) DeleteActivity(c *gin.Context) {
	activityID := c.Param("activity_id")
	username := c.GetString("username")

	stored, err := h.activityRepo.GetActivity(c.Request.Context(), activityID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrActivityNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "activity not found"})
		return
	}
	if stored.HostUsername() != username {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the host can delete the activity"})
		return
	}

	if err := h.activityRepo.DeleteActivity(c.Request.Context(), activityID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete activity"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "activity deleted", requestIDFromContext(c), usernameFromContext(c))
	c.Status(http.StatusNoContent)
}

// Attend registers the requesting user as attendee.
func (h *ActivityHandler) Attend(c *gin.Context) {
	activityID := c.Param("activity_id")
	username := c.GetString("username")

	if _, err := h.activityRepo.GetActivity(c.Request.Context(), activityID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrActivityNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "activity not found"})
		return
	}

	if err := h.activityRepo.AddAttendee(c.Request.Context(), activityID, username); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not join activity"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Unattend removes the requesting user's attendance (hosts cannot leave).
func (h *ActivityHandler) Unattend(c *gin.Context) {
	activityID := c.Param("activity_id")
	username := c.GetString("username")

	stored, err := h.activityRepo.GetActivity(c.Request.Context(), activityID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrActivityNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "activity not found"})
		return
	}
	if stored.HostUsername() == username {
		c.JSON(http.StatusBadRequest, gin.H{"error": "host cannot leave their own activity"})
		return
	}

	if err := h.activityRepo.RemoveAttendee(c.Request.Context(), activityID, username); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not cancel attendance"})
		return
	}

	c.Status(http.StatusNoContent)
}

func decorateForUser(activity *models.Activity, username string) {
	activity.IsGoing = false
	activity.IsHost = false
	for _, att := range activity.Attendees {
		if att.Username != username {
			continue
		}
		activity.IsGoing = true
		activity.IsHost = att.IsHost
	}
}
