package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tasklight/tasklight/internal/constants"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleEmpty      = errors.New("title cannot be empty")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrNoSubtasksGiven = errors.New("at least one subtask is required")
)

// TaskService handles task lifecycle business logic
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	UserID       uint64
	Title        string
	Description  string
	DueDate      *time.Time
	Priority     models.TaskPriority
	ProjectID    *uint64
	CategoryID   *uint64
	ParentTaskID *uint64
}

// UpdateTaskInput represents a partial update; nil fields are left alone.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	DueDate       *time.Time
	ClearDueDate  bool
	Priority      *models.TaskPriority
	Status        *models.TaskStatus
	ProjectID     *uint64
	ClearProject  bool
	CategoryID    *uint64
	ClearCategory bool
}

// ListTasksInput represents filters for listing tasks; filters are ANDed.
// Offset and Limit page the result; a zero Limit returns everything.
type ListTasksInput struct {
	UserID         uint64
	Status         *models.TaskStatus
	Priority       *models.TaskPriority
	ProjectID      *uint64
	CategoryID     *uint64
	IncludeDeleted bool
	Offset         int
	Limit          int
}

// SubtaskInput is one entry of a batch subtask creation
type SubtaskInput struct {
	Title       string
	Description string
	Priority    models.TaskPriority
}

// getOwned fetches a task and enforces ownership. A task owned by someone
// else yields the same ErrTaskNotFound as a missing one.
func (s *TaskService) getOwned(userID, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task.UserID != userID {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// CreateTask creates a new task with validation and defaults
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !models.ValidPriority(input.Priority) {
		return nil, ErrInvalidPriority
	}

	if input.ParentTaskID != nil {
		if _, err := s.getOwned(input.UserID, *input.ParentTaskID); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		UserID:       input.UserID,
		Title:        input.Title,
		Description:  input.Description,
		DueDate:      input.DueDate,
		Priority:     input.Priority,
		Status:       models.TaskStatusPending,
		ProjectID:    input.ProjectID,
		CategoryID:   input.CategoryID,
		ParentTaskID: input.ParentTaskID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetTask returns a task by ID. Soft-deleted tasks are still returned; the
// deleted_at field tells them apart.
func (s *TaskService) GetTask(userID, taskID uint64) (*models.Task, error) {
	return s.getOwned(userID, taskID)
}

// ListTasks lists the user's tasks matching the filters. Soft-deleted
// tasks are excluded unless IncludeDeleted is set.
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, error) {
	tasks, err := s.taskRepo.List(listFilter(input))
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// CountTasks counts the tasks ListTasks would return across all pages
func (s *TaskService) CountTasks(input ListTasksInput) (int64, error) {
	count, err := s.taskRepo.Count(listFilter(input))
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

func listFilter(input ListTasksInput) repository.TaskFilter {
	return repository.TaskFilter{
		UserID:         input.UserID,
		Status:         input.Status,
		Priority:       input.Priority,
		ProjectID:      input.ProjectID,
		CategoryID:     input.CategoryID,
		IncludeDeleted: input.IncludeDeleted,
		Offset:         input.Offset,
		Limit:          input.Limit,
	}
}

// ListToday lists pending tasks due within the local calendar day of now
func (s *TaskService) ListToday(userID uint64, now time.Time) ([]models.Task, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)
	return s.listDueWindow(userID, &startOfDay, &endOfDay)
}

// ListUpcoming lists pending tasks due in the 7 calendar days starting tomorrow
func (s *TaskService) ListUpcoming(userID uint64, now time.Time) ([]models.Task, error) {
	startOfTomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)
	endOfWindow := startOfTomorrow.Add(7 * 24 * time.Hour)
	return s.listDueWindow(userID, &startOfTomorrow, &endOfWindow)
}

// ListOverdue lists pending tasks whose due date is strictly before now
func (s *TaskService) ListOverdue(userID uint64, now time.Time) ([]models.Task, error) {
	return s.listDueWindow(userID, nil, &now)
}

func (s *TaskService) listDueWindow(userID uint64, from, before *time.Time) ([]models.Task, error) {
	pending := models.TaskStatusPending
	filter := repository.TaskFilter{
		UserID:    userID,
		Status:    &pending,
		DueOnly:   true,
		DueFrom:   from,
		DueBefore: before,
	}

	tasks, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// SearchTasks matches the query against task titles, capped at the search
// result limit. A blank query returns nothing.
func (s *TaskService) SearchTasks(userID uint64, query string) ([]models.Task, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Task{}, nil
	}

	tasks, err := s.taskRepo.Search(userID, query, constants.SearchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask merges the provided fields into an existing task and
// refreshes the updated timestamp.
func (s *TaskService) UpdateTask(userID, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.getOwned(userID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Priority != nil {
		if !models.ValidPriority(*input.Priority) {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		if !models.ValidStatus(*input.Status) {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.ClearProject {
		task.ProjectID = nil
	} else if input.ProjectID != nil {
		task.ProjectID = input.ProjectID
	}
	if input.ClearCategory {
		task.CategoryID = nil
	} else if input.CategoryID != nil {
		task.CategoryID = input.CategoryID
	}

	if err := s.taskRepo.Save(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// MarkComplete forces the task status to completed
func (s *TaskService) MarkComplete(userID, taskID uint64) (*models.Task, error) {
	completed := models.TaskStatusCompleted
	return s.UpdateTask(userID, taskID, UpdateTaskInput{Status: &completed})
}

// ToggleStatus flips the task between pending and completed
func (s *TaskService) ToggleStatus(userID, taskID uint64) (*models.Task, error) {
	task, err := s.getOwned(userID, taskID)
	if err != nil {
		return nil, err
	}

	if task.Status == models.TaskStatusPending {
		task.Status = models.TaskStatusCompleted
	} else {
		task.Status = models.TaskStatusPending
	}

	if err := s.taskRepo.Save(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// SoftDeleteTask stamps deleted_at; the task keeps all its relations and
// stays reachable through include-deleted listings until hard-deleted.
func (s *TaskService) SoftDeleteTask(userID, taskID uint64) error {
	if _, err := s.getOwned(userID, taskID); err != nil {
		return err
	}

	if err := s.taskRepo.SoftDelete(taskID, time.Now()); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// RestoreTask clears deleted_at. Restoring a task that was never deleted
// is allowed and only refreshes the updated timestamp.
func (s *TaskService) RestoreTask(userID, taskID uint64) (*models.Task, error) {
	if _, err := s.getOwned(userID, taskID); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Restore(taskID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to restore task: %w", err)
	}

	return s.getOwned(userID, taskID)
}

// HardDeleteTask permanently removes the task together with its tag links
// and reminders.
func (s *TaskService) HardDeleteTask(userID, taskID uint64) error {
	if _, err := s.getOwned(userID, taskID); err != nil {
		return err
	}

	if err := s.taskRepo.HardDelete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// CreateSubtasks creates a batch of subtasks inheriting the parent's
// project, category, and due date. Inserts are sequential and earlier ones
// are not rolled back when a later one fails; the IDs created so far are
// returned alongside the error.
func (s *TaskService) CreateSubtasks(userID, parentTaskID uint64, subtasks []SubtaskInput) ([]uint64, error) {
	if len(subtasks) == 0 {
		return nil, ErrNoSubtasksGiven
	}

	parent, err := s.getOwned(userID, parentTaskID)
	if err != nil {
		return nil, err
	}

	for _, sub := range subtasks {
		if strings.TrimSpace(sub.Title) == "" {
			return nil, ErrTitleRequired
		}
		if sub.Priority != "" && !models.ValidPriority(sub.Priority) {
			return nil, ErrInvalidPriority
		}
	}

	ids := make([]uint64, 0, len(subtasks))
	for _, sub := range subtasks {
		priority := sub.Priority
		if priority == "" {
			priority = parent.Priority
		}

		task := &models.Task{
			UserID:       userID,
			Title:        sub.Title,
			Description:  sub.Description,
			DueDate:      parent.DueDate,
			Priority:     priority,
			Status:       models.TaskStatusPending,
			ProjectID:    parent.ProjectID,
			CategoryID:   parent.CategoryID,
			ParentTaskID: &parentTaskID,
		}

		if err := s.taskRepo.Create(task); err != nil {
			return ids, fmt.Errorf("failed to create subtask: %w", err)
		}
		ids = append(ids, task.ID)
	}

	return ids, nil
}

// ListSubtasks lists the non-deleted children of a parent task
func (s *TaskService) ListSubtasks(userID, parentTaskID uint64) ([]models.Task, error) {
	if _, err := s.getOwned(userID, parentTaskID); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListSubtasks(parentTaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}
	return tasks, nil
}
