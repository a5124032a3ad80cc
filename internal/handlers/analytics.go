package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/tasklight/tasklight/internal/errors"
	"github.com/tasklight/tasklight/internal/middleware"
	"github.com/tasklight/tasklight/internal/services"
)

// AnalyticsHandler coordinates analytics HTTP handlers.
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

func parseDaysQuery(c *gin.Context) (int, bool) {
	daysStr := c.Query("days")
	if daysStr == "" {
		return 0, true
	}
	days, err := strconv.Atoi(daysStr)
	if err != nil || days < 0 {
		apierrors.BadRequest(c, "Invalid days")
		return 0, false
	}
	return days, true
}

// GetCompletionRate reports completion totals over the last N days
// (default 30).
func (h *AnalyticsHandler) GetCompletionRate(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	days, ok := parseDaysQuery(c)
	if !ok {
		return
	}

	stats, err := h.analyticsService.GetCompletionRate(userID, days)
	if err != nil {
		apierrors.InternalError(c, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetOverdueStats buckets pending tasks by due-date state.
func (h *AnalyticsHandler) GetOverdueStats(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	stats, err := h.analyticsService.GetOverdueStats(userID, time.Now())
	if err != nil {
		apierrors.InternalError(c, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetWeeklySummary reports the last 7 days of activity.
func (h *AnalyticsHandler) GetWeeklySummary(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	summary, err := h.analyticsService.GetWeeklySummary(userID, time.Now())
	if err != nil {
		apierrors.InternalError(c, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetStatsByPriority splits live tasks by priority level.
func (h *AnalyticsHandler) GetStatsByPriority(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	stats, err := h.analyticsService.GetStatsByPriority(userID)
	if err != nil {
		apierrors.InternalError(c, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetStatsByProject splits live tasks by project, with a "No Project"
// bucket for unassigned tasks.
func (h *AnalyticsHandler) GetStatsByProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	stats, err := h.analyticsService.GetStatsByProject(userID)
	if err != nil {
		apierrors.InternalError(c, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetProductivityTrends returns a per-day created/completed series over the
// last N days (default 14).
func (h *AnalyticsHandler) GetProductivityTrends(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	days, ok := parseDaysQuery(c)
	if !ok {
		return
	}

	trends, err := h.analyticsService.GetProductivityTrends(userID, days, time.Now())
	if err != nil {
		apierrors.InternalError(c, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"trends": trends})
}
