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

var ErrCategoryNotFound = errors.New("category not found")

// CategoryService handles category business logic
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	taskRepo     repository.TaskRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository, taskRepo repository.TaskRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		taskRepo:     taskRepo,
	}
}

// CategoryStats is a category together with its live task counts
type CategoryStats struct {
	models.Category
	TaskCount      int64 `json:"task_count"`
	CompletedCount int64 `json:"completed_count"`
	PendingCount   int64 `json:"pending_count"`
}

// CreateCategoryInput represents input for creating a category
type CreateCategoryInput struct {
	UserID uint64
	Name   string
	Color  string
}

// UpdateCategoryInput represents a partial category update
type UpdateCategoryInput struct {
	Name  *string
	Color *string
}

func (s *CategoryService) getOwned(userID, categoryID uint64) (*models.Category, error) {
	category, err := s.categoryRepo.FindByID(categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	if category.UserID != userID {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// CreateCategory creates a new category, defaulting the color
func (s *CategoryService) CreateCategory(input CreateCategoryInput) (*models.Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrNameRequired
	}

	if input.Color == "" {
		input.Color = constants.DefaultCategoryColor
	}

	category := &models.Category{
		UserID: input.UserID,
		Name:   input.Name,
		Color:  input.Color,
	}

	if err := s.categoryRepo.Create(category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

// GetCategory returns a category by ID
func (s *CategoryService) GetCategory(userID, categoryID uint64) (*models.Category, error) {
	return s.getOwned(userID, categoryID)
}

// ListCategories lists the user's categories alphabetically
func (s *CategoryService) ListCategories(userID uint64) ([]models.Category, error) {
	categories, err := s.categoryRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListCategoriesWithStats lists the user's categories with live task counts
func (s *CategoryService) ListCategoriesWithStats(userID uint64) ([]CategoryStats, error) {
	categories, err := s.categoryRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	stats := make([]CategoryStats, 0, len(categories))
	for _, category := range categories {
		total, completed, pending, err := s.taskRepo.CountByCategory(category.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count category tasks: %w", err)
		}
		stats = append(stats, CategoryStats{
			Category:       category,
			TaskCount:      total,
			CompletedCount: completed,
			PendingCount:   pending,
		})
	}
	return stats, nil
}

// UpdateCategory merges the provided fields into an existing category
func (s *CategoryService) UpdateCategory(userID, categoryID uint64, input UpdateCategoryInput) (*models.Category, error) {
	category, err := s.getOwned(userID, categoryID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrNameRequired
		}
		category.Name = *input.Name
	}
	if input.Color != nil {
		category.Color = *input.Color
	}

	if err := s.categoryRepo.Save(category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

// DeleteCategory removes a category. Its tasks are detached, never deleted.
func (s *CategoryService) DeleteCategory(userID, categoryID uint64) error {
	if _, err := s.getOwned(userID, categoryID); err != nil {
		return err
	}

	if err := s.categoryRepo.DeleteDetach(categoryID, time.Now()); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
