package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tasklight/tasklight/internal/dto"
	apierrors "github.com/tasklight/tasklight/internal/errors"
	"github.com/tasklight/tasklight/internal/middleware"
	"github.com/tasklight/tasklight/internal/services"
)

// ReminderHandler coordinates reminder HTTP handlers.
type ReminderHandler struct {
	reminderService *services.ReminderService
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(reminderService *services.ReminderService) *ReminderHandler {
	return &ReminderHandler{
		reminderService: reminderService,
	}
}

// CreateReminder creates a reminder at an explicit time.
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateReminderRequest struct {
		TaskID       uint64    `json:"task_id" binding:"required"`
		ReminderDate time.Time `json:"reminder_date" binding:"required"`
	}

	var req CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	reminder, err := h.reminderService.CreateReminder(userID, req.TaskID, req.ReminderDate)
	if err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToReminderDTO(*reminder))
}

// CreateFromTask derives a reminder from a task's due date. When the
// computed time is already past nothing is created and the response says
// so.
func (h *ReminderHandler) CreateFromTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateFromTaskRequest struct {
		TaskID         uint64 `json:"task_id" binding:"required"`
		HoursBeforeDue *int   `json:"hours_before_due"`
	}

	var req CreateFromTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	reminder, err := h.reminderService.CreateFromTask(userID, req.TaskID, req.HoursBeforeDue)
	if err != nil {
		respondReminderError(c, err)
		return
	}

	if reminder == nil {
		c.JSON(http.StatusOK, gin.H{
			"reminder": nil,
			"message":  "Reminder time already passed, nothing created",
		})
		return
	}

	c.JSON(http.StatusCreated, dto.ToReminderDTO(*reminder))
}

// GetReminder returns a reminder by ID.
func (h *ReminderHandler) GetReminder(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.NotFound(c, "reminder not found")
		return
	}

	reminderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reminder, err := h.reminderService.GetReminder(userID, reminderID)
	if err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToReminderDTO(*reminder))
}

// UpdateReminder applies a partial update to a reminder's date and
// notified flag.
func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	reminderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateReminderRequest struct {
		ReminderDate *time.Time `json:"reminder_date"`
		Notified     *bool      `json:"notified"`
	}

	var req UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	reminder, err := h.reminderService.UpdateReminder(userID, reminderID, services.UpdateReminderInput{
		ReminderDate: req.ReminderDate,
		Notified:     req.Notified,
	})
	if err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToReminderDTO(*reminder))
}

// ListReminders lists the user's reminders with their tasks.
// Unauthenticated requests get an empty list.
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusOK, gin.H{"reminders": []services.ReminderWithTask{}})
		return
	}

	reminders, err := h.reminderService.ListReminders(userID)
	if err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

// ListUpcoming lists the user's next unnotified reminders.
func (h *ReminderHandler) ListUpcoming(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusOK, gin.H{"reminders": []services.ReminderWithTask{}})
		return
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	reminders, err := h.reminderService.ListUpcoming(userID, limit)
	if err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

// ListOverdue lists the user's unnotified reminders whose time has passed.
func (h *ReminderHandler) ListOverdue(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusOK, gin.H{"reminders": []services.ReminderWithTask{}})
		return
	}

	reminders, err := h.reminderService.ListOverdue(userID)
	if err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

// ListByTask lists the reminders attached to a task.
func (h *ReminderHandler) ListByTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusOK, gin.H{"reminders": []dto.ReminderDTO{}})
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reminders, err := h.reminderService.ListByTask(userID, taskID)
	if err != nil {
		respondReminderError(c, err)
		return
	}

	reminderDTOs := make([]dto.ReminderDTO, len(reminders))
	for i, reminder := range reminders {
		reminderDTOs[i] = dto.ToReminderDTO(reminder)
	}
	c.JSON(http.StatusOK, gin.H{"reminders": reminderDTOs})
}

// MarkNotified acknowledges a reminder manually.
func (h *ReminderHandler) MarkNotified(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	reminderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.reminderService.MarkNotified(userID, reminderID); err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reminder marked as notified"})
}

// DeleteReminder removes a reminder.
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	reminderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.reminderService.DeleteReminder(userID, reminderID); err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reminder deleted successfully"})
}

func respondReminderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrReminderNotFound),
		errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTaskHasNoDueDate):
		apierrors.InvalidOperation(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
