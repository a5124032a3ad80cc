package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/tasklight/tasklight/internal/errors"
	"github.com/tasklight/tasklight/internal/middleware"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/services"
)

// AIHandler coordinates suggestion HTTP handlers: the pure heuristics, the
// model-backed breakdown, and the suggestion cache.
type AIHandler struct {
	aiService         *services.AIService
	suggestionService *services.SuggestionService
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(aiService *services.AIService, suggestionService *services.SuggestionService) *AIHandler {
	return &AIHandler{
		aiService:         aiService,
		suggestionService: suggestionService,
	}
}

// SuggestPriority runs the priority heuristic over the given content.
func (h *AIHandler) SuggestPriority(c *gin.Context) {
	if _, exists := middleware.GetUserID(c); !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type SuggestPriorityRequest struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		DueDate     *time.Time `json:"due_date"`
	}

	var req SuggestPriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	priority := services.SuggestPriority(req.Title, req.Description, req.DueDate, time.Now())
	c.JSON(http.StatusOK, gin.H{"priority": priority})
}

// RecommendDeadline runs the deadline heuristic over the given content.
func (h *AIHandler) RecommendDeadline(c *gin.Context) {
	if _, exists := middleware.GetUserID(c); !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type RecommendDeadlineRequest struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}

	var req RecommendDeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	suggestion := services.RecommendDeadline(req.Title, req.Description, time.Now())
	c.JSON(http.StatusOK, suggestion)
}

// BreakdownTask suggests a subtask breakdown, using the model when
// configured and the keyword heuristic otherwise.
func (h *AIHandler) BreakdownTask(c *gin.Context) {
	if _, exists := middleware.GetUserID(c); !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type BreakdownRequest struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}

	var req BreakdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	subtasks, fromModel, err := h.aiService.BreakdownTask(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		apierrors.InternalError(c, err.Error())
		return
	}

	source := "heuristic"
	if fromModel {
		source = "model"
	}
	c.JSON(http.StatusOK, gin.H{
		"subtasks": subtasks,
		"source":   source,
	})
}

// GetProductivitySummary returns the template recap for the requested
// period (daily, weekly or monthly; weekly when omitted).
func (h *AIHandler) GetProductivitySummary(c *gin.Context) {
	if _, exists := middleware.GetUserID(c); !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	period := c.DefaultQuery("period", "weekly")
	summary, err := services.SummarizeProductivity(period)
	if err != nil {
		apierrors.BadRequest(c, "Invalid period")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetInsights returns the task-pattern observations.
func (h *AIHandler) GetInsights(c *gin.Context) {
	if _, exists := middleware.GetUserID(c); !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	c.JSON(http.StatusOK, gin.H{"insights": services.ProductivityInsights()})
}

// CacheSuggestion stores a suggestion for a task, overwriting any cached
// row of the same type.
func (h *AIHandler) CacheSuggestion(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CacheSuggestionRequest struct {
		TaskID         uint64                 `json:"task_id" binding:"required"`
		Type           models.SuggestionType  `json:"type" binding:"required"`
		Suggestion     string                 `json:"suggestion" binding:"required"`
		Metadata       map[string]interface{} `json:"metadata"`
		ExpiresInHours *int                   `json:"expires_in_hours"`
	}

	var req CacheSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	id, err := h.suggestionService.CacheSuggestion(services.CacheSuggestionInput{
		UserID:         userID,
		TaskID:         req.TaskID,
		Type:           req.Type,
		Suggestion:     req.Suggestion,
		Metadata:       req.Metadata,
		ExpiresInHours: req.ExpiresInHours,
	})
	if err != nil {
		respondSuggestionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// GetCachedSuggestion returns the live cached suggestion for a task and
// type, or null when nothing valid is cached.
func (h *AIHandler) GetCachedSuggestion(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusOK, gin.H{"suggestion": nil})
		return
	}

	taskID, err := strconv.ParseUint(c.Query("task_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task_id")
		return
	}
	kind := models.SuggestionType(c.Query("type"))

	suggestion, err := h.suggestionService.GetCachedSuggestion(userID, taskID, kind)
	if err != nil {
		respondSuggestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestion": suggestion})
}

func respondSuggestionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidSuggestionType):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
