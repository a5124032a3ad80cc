package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/tasklight/tasklight/internal/errors"
	"github.com/tasklight/tasklight/internal/middleware"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/services"
)

// SettingsHandler coordinates user-settings HTTP handlers.
type SettingsHandler struct {
	settingsService *services.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

// GetSettings returns the user's settings, falling back to defaults when
// none have been saved yet.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	settings, err := h.settingsService.GetSettings(userID)
	if err != nil {
		respondSettingsError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings applies a partial settings update, creating the row on
// first use.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateSettingsRequest struct {
		NotificationPreferences *services.NotificationPreferencesInput `json:"notification_preferences"`
		Theme                   *models.Theme                          `json:"theme"`
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	settings, err := h.settingsService.UpdateSettings(userID, services.UpdateSettingsInput{
		NotificationPreferences: req.NotificationPreferences,
		Theme:                   req.Theme,
	})
	if err != nil {
		respondSettingsError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// ResetSettings restores and persists the default settings.
func (h *SettingsHandler) ResetSettings(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	settings, err := h.settingsService.ResetSettings(userID)
	if err != nil {
		respondSettingsError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

func respondSettingsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidTheme):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
