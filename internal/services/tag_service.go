package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tasklight/tasklight/internal/constants"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/repository"
	"gorm.io/gorm"
)

var ErrTagNotFound = errors.New("tag not found")

// TagService handles tag and tag-association business logic
type TagService struct {
	tagRepo  repository.TagRepository
	taskRepo repository.TaskRepository
}

// NewTagService creates a new TagService
func NewTagService(tagRepo repository.TagRepository, taskRepo repository.TaskRepository) *TagService {
	return &TagService{
		tagRepo:  tagRepo,
		taskRepo: taskRepo,
	}
}

// TagStats is a tag together with its live task count
type TagStats struct {
	models.Tag
	TaskCount int64 `json:"task_count"`
}

// CreateTagInput represents input for creating a tag
type CreateTagInput struct {
	UserID uint64
	Name   string
	Color  string
}

// UpdateTagInput represents a partial tag update
type UpdateTagInput struct {
	Name  *string
	Color *string
}

func (s *TagService) getOwned(userID, tagID uint64) (*models.Tag, error) {
	tag, err := s.tagRepo.FindByID(tagID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to find tag: %w", err)
	}
	if tag.UserID != userID {
		return nil, ErrTagNotFound
	}
	return tag, nil
}

func (s *TagService) getOwnedTask(userID, taskID uint64) (*models.Task, error) {
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

// CreateTag creates a new tag, defaulting the color
func (s *TagService) CreateTag(input CreateTagInput) (*models.Tag, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrNameRequired
	}

	if input.Color == "" {
		input.Color = constants.DefaultTagColor
	}

	tag := &models.Tag{
		UserID: input.UserID,
		Name:   input.Name,
		Color:  input.Color,
	}

	if err := s.tagRepo.Create(tag); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	return tag, nil
}

// GetTag returns a tag by ID
func (s *TagService) GetTag(userID, tagID uint64) (*models.Tag, error) {
	return s.getOwned(userID, tagID)
}

// ListTags lists the user's tags alphabetically
func (s *TagService) ListTags(userID uint64) ([]models.Tag, error) {
	tags, err := s.tagRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// ListTagsWithStats lists the user's tags with live task counts
func (s *TagService) ListTagsWithStats(userID uint64) ([]TagStats, error) {
	tags, err := s.tagRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	stats := make([]TagStats, 0, len(tags))
	for _, tag := range tags {
		count, err := s.tagRepo.CountLiveTasks(tag.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count tag tasks: %w", err)
		}
		stats = append(stats, TagStats{Tag: tag, TaskCount: count})
	}
	return stats, nil
}

// UpdateTag merges the provided fields into an existing tag
func (s *TagService) UpdateTag(userID, tagID uint64, input UpdateTagInput) (*models.Tag, error) {
	tag, err := s.getOwned(userID, tagID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrNameRequired
		}
		tag.Name = *input.Name
	}
	if input.Color != nil {
		tag.Color = *input.Color
	}

	if err := s.tagRepo.Save(tag); err != nil {
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}

	return tag, nil
}

// DeleteTag removes a tag and all its task associations. Tasks are never
// deleted.
func (s *TagService) DeleteTag(userID, tagID uint64) error {
	if _, err := s.getOwned(userID, tagID); err != nil {
		return err
	}

	if err := s.tagRepo.Delete(tagID); err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}

// AddTagToTask attaches a tag to a task. Both sides are ownership-checked;
// adding an existing pair is a silent no-op.
func (s *TagService) AddTagToTask(userID, taskID, tagID uint64) error {
	if _, err := s.getOwnedTask(userID, taskID); err != nil {
		return err
	}
	if _, err := s.getOwned(userID, tagID); err != nil {
		return err
	}

	if err := s.tagRepo.AddToTask(taskID, tagID); err != nil {
		return fmt.Errorf("failed to add tag to task: %w", err)
	}
	return nil
}

// RemoveTagFromTask detaches a tag from a task; an absent pair is a silent
// no-op.
func (s *TagService) RemoveTagFromTask(userID, taskID, tagID uint64) error {
	if _, err := s.getOwnedTask(userID, taskID); err != nil {
		return err
	}

	if err := s.tagRepo.RemoveFromTask(taskID, tagID); err != nil {
		return fmt.Errorf("failed to remove tag from task: %w", err)
	}
	return nil
}

// ListTagsForTask lists the tags attached to a task
func (s *TagService) ListTagsForTask(userID, taskID uint64) ([]models.Tag, error) {
	if _, err := s.getOwnedTask(userID, taskID); err != nil {
		return nil, err
	}

	tags, err := s.tagRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list task tags: %w", err)
	}
	return tags, nil
}

// ListTasksForTag lists the non-deleted tasks carrying a tag
func (s *TagService) ListTasksForTag(userID, tagID uint64) ([]models.Task, error) {
	if _, err := s.getOwned(userID, tagID); err != nil {
		return nil, err
	}

	tasks, err := s.tagRepo.ListTasks(tagID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tag tasks: %w", err)
	}
	return tasks, nil
}
