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
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/services"
	"github.com/tasklight/tasklight/internal/utils"
)

// TaskHandler coordinates task lifecycle HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// parseNullableID reads an optional reference field from a raw update
// body: absent leaves it alone, JSON null clears it, a number sets it,
// anything else is a 400.
func parseNullableID(c *gin.Context, rawReq map[string]any, name string) (*uint64, bool, bool) {
	raw, ok := rawReq[name]
	if !ok {
		return nil, false, true
	}
	if raw == nil {
		return nil, true, true
	}
	value, ok := raw.(float64)
	if !ok || value < 0 {
		apierrors.BadRequest(c, "Invalid "+name)
		return nil, false, false
	}
	id := uint64(value)
	return &id, false, true
}

func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// CreateTask creates a new task.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title        string              `json:"title" binding:"required"`
		Description  string              `json:"description"`
		DueDate      *time.Time          `json:"due_date"`
		Priority     models.TaskPriority `json:"priority"`
		ProjectID    *uint64             `json:"project_id"`
		CategoryID   *uint64             `json:"category_id"`
		ParentTaskID *uint64             `json:"parent_task_id"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		UserID:       userID,
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		Priority:     req.Priority,
		ProjectID:    req.ProjectID,
		CategoryID:   req.CategoryID,
		ParentTaskID: req.ParentTaskID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a task by ID. Soft-deleted tasks are returned with their
// deleted_at set.
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.NotFound(c, "task not found")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(userID, taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// ListTasks lists the current user's tasks with optional filters.
// Unauthenticated requests get an empty list rather than an error.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusOK, gin.H{"tasks": []dto.TaskDTO{}})
		return
	}

	input := services.ListTasksInput{UserID: userID}

	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		if !models.ValidStatus(s) {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		input.Status = &s
	}
	if priority := c.Query("priority"); priority != "" {
		p := models.TaskPriority(priority)
		if !models.ValidPriority(p) {
			apierrors.BadRequest(c, "Invalid priority")
			return
		}
		input.Priority = &p
	}
	if projectIDStr := c.Query("project_id"); projectIDStr != "" {
		projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project_id")
			return
		}
		input.ProjectID = &projectID
	}
	if categoryIDStr := c.Query("category_id"); categoryIDStr != "" {
		categoryID, err := strconv.ParseUint(categoryIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid category_id")
			return
		}
		input.CategoryID = &categoryID
	}
	input.IncludeDeleted = c.Query("include_deleted") == "true"

	pagination := utils.GetPaginationParams(c)
	input.Offset = pagination.Offset
	input.Limit = pagination.Limit

	tasks, err := h.taskService.ListTasks(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	total, err := h.taskService.CountTasks(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks:      dto.ToTaskDTOs(tasks),
		Page:       pagination.Page,
		PageSize:   pagination.Limit,
		TotalCount: total,
		TotalPages: int((total + int64(pagination.Limit) - 1) / int64(pagination.Limit)),
	})
}

// ListToday lists pending tasks due today.
func (h *TaskHandler) ListToday(c *gin.Context) {
	h.listWindow(c, h.taskService.ListToday)
}

// ListUpcoming lists pending tasks due in the next 7 days, starting tomorrow.
func (h *TaskHandler) ListUpcoming(c *gin.Context) {
	h.listWindow(c, h.taskService.ListUpcoming)
}

// ListOverdue lists pending tasks whose due date has passed.
func (h *TaskHandler) ListOverdue(c *gin.Context) {
	h.listWindow(c, h.taskService.ListOverdue)
}

func (h *TaskHandler) listWindow(c *gin.Context, list func(uint64, time.Time) ([]models.Task, error)) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusOK, gin.H{"tasks": []dto.TaskDTO{}})
		return
	}

	tasks, err := list(userID, time.Now())
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// SearchTasks matches the q parameter against task titles.
func (h *TaskHandler) SearchTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusOK, gin.H{"tasks": []dto.TaskDTO{}})
		return
	}

	tasks, err := h.taskService.SearchTasks(userID, c.Query("q"))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// UpdateTask applies a partial update. Sending "due_date": null clears the
// due date; the same applies to project_id and category_id.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateTaskInput
	if raw, ok := rawReq["title"]; ok {
		title, ok := raw.(string)
		if !ok {
			apierrors.BadRequest(c, "Invalid title")
			return
		}
		input.Title = &title
	}
	if raw, ok := rawReq["description"]; ok {
		description, ok := raw.(string)
		if !ok {
			apierrors.BadRequest(c, "Invalid description")
			return
		}
		input.Description = &description
	}
	if raw, ok := rawReq["due_date"]; ok {
		if raw == nil {
			input.ClearDueDate = true
		} else {
			dueDateStr, ok := raw.(string)
			if !ok {
				apierrors.BadRequest(c, "Invalid due_date")
				return
			}
			parsed, err := time.Parse(time.RFC3339, dueDateStr)
			if err != nil {
				apierrors.BadRequest(c, "Invalid due_date")
				return
			}
			input.DueDate = &parsed
		}
	}
	if raw, ok := rawReq["priority"]; ok {
		priority, ok := raw.(string)
		if !ok {
			apierrors.BadRequest(c, "Invalid priority")
			return
		}
		p := models.TaskPriority(priority)
		input.Priority = &p
	}
	if raw, ok := rawReq["status"]; ok {
		status, ok := raw.(string)
		if !ok {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		s := models.TaskStatus(status)
		input.Status = &s
	}
	projectID, cleared, ok := parseNullableID(c, rawReq, "project_id")
	if !ok {
		return
	}
	input.ProjectID, input.ClearProject = projectID, cleared
	categoryID, cleared, ok := parseNullableID(c, rawReq, "category_id")
	if !ok {
		return
	}
	input.CategoryID, input.ClearCategory = categoryID, cleared

	task, err := h.taskService.UpdateTask(userID, taskID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// ToggleTask flips a task between pending and completed.
func (h *TaskHandler) ToggleTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.ToggleStatus(userID, taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CompleteTask marks a task completed.
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.MarkComplete(userID, taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask soft-deletes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.SoftDeleteTask(userID, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// RestoreTask clears a task's soft deletion.
func (h *TaskHandler) RestoreTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.RestoreTask(userID, taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// HardDeleteTask permanently removes a task with its tag links and
// reminders.
func (h *TaskHandler) HardDeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.HardDeleteTask(userID, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task permanently deleted"})
}

// CreateSubtasks creates a batch of subtasks under a parent task. When a
// mid-batch insert fails, the IDs created before the failure are included
// in the error response.
func (h *TaskHandler) CreateSubtasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type SubtaskRequest struct {
		Title       string              `json:"title" binding:"required"`
		Description string              `json:"description"`
		Priority    models.TaskPriority `json:"priority"`
	}
	type CreateSubtasksRequest struct {
		Subtasks []SubtaskRequest `json:"subtasks" binding:"required"`
	}

	var req CreateSubtasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	subtasks := make([]services.SubtaskInput, len(req.Subtasks))
	for i, sub := range req.Subtasks {
		subtasks[i] = services.SubtaskInput{
			Title:       sub.Title,
			Description: sub.Description,
			Priority:    sub.Priority,
		}
	}

	ids, err := h.taskService.CreateSubtasks(userID, taskID, subtasks)
	if err != nil {
		if len(ids) > 0 {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":       "Failed to create all subtasks",
				"created_ids": ids,
			})
			return
		}
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"created_ids": ids})
}

// ListSubtasks lists the non-deleted children of a task.
func (h *TaskHandler) ListSubtasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusOK, gin.H{"tasks": []dto.TaskDTO{}})
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListSubtasks(userID, taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrNoSubtasksGiven):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
