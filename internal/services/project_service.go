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
	ErrProjectNotFound = errors.New("project not found")
	ErrNameRequired    = errors.New("name is required")
)

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, taskRepo repository.TaskRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
	}
}

// ProjectStats is a project together with its live task counts, computed
// per request.
type ProjectStats struct {
	models.Project
	TaskCount      int64 `json:"task_count"`
	CompletedCount int64 `json:"completed_count"`
	PendingCount   int64 `json:"pending_count"`
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	UserID      uint64
	Name        string
	Description string
	Color       string
}

// UpdateProjectInput represents a partial project update
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Color       *string
}

func (s *ProjectService) getOwned(userID, projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if project.UserID != userID {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

// CreateProject creates a new project, defaulting the color
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrNameRequired
	}

	if input.Color == "" {
		input.Color = constants.DefaultProjectColor
	}

	project := &models.Project{
		UserID:      input.UserID,
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetProject returns a project by ID
func (s *ProjectService) GetProject(userID, projectID uint64) (*models.Project, error) {
	return s.getOwned(userID, projectID)
}

// GetProjectWithStats returns a project with its live task counts
func (s *ProjectService) GetProjectWithStats(userID, projectID uint64) (*ProjectStats, error) {
	project, err := s.getOwned(userID, projectID)
	if err != nil {
		return nil, err
	}
	return s.withStats(*project)
}

// ListProjects lists the user's projects alphabetically
func (s *ProjectService) ListProjects(userID uint64) ([]models.Project, error) {
	projects, err := s.projectRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// ListProjectsWithStats lists the user's projects with live task counts
func (s *ProjectService) ListProjectsWithStats(userID uint64) ([]ProjectStats, error) {
	projects, err := s.projectRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	stats := make([]ProjectStats, 0, len(projects))
	for _, project := range projects {
		ps, err := s.withStats(project)
		if err != nil {
			return nil, err
		}
		stats = append(stats, *ps)
	}
	return stats, nil
}

func (s *ProjectService) withStats(project models.Project) (*ProjectStats, error) {
	total, completed, pending, err := s.taskRepo.CountByProject(project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count project tasks: %w", err)
	}
	return &ProjectStats{
		Project:        project,
		TaskCount:      total,
		CompletedCount: completed,
		PendingCount:   pending,
	}, nil
}

// UpdateProject merges the provided fields into an existing project
func (s *ProjectService) UpdateProject(userID, projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.getOwned(userID, projectID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrNameRequired
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Color != nil {
		project.Color = *input.Color
	}

	if err := s.projectRepo.Save(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject removes a project. With deleteTasks the project's tasks go
// with it, along with their tag links and reminders; otherwise the tasks
// survive with their project reference cleared.
func (s *ProjectService) DeleteProject(userID, projectID uint64, deleteTasks bool) error {
	if _, err := s.getOwned(userID, projectID); err != nil {
		return err
	}

	if deleteTasks {
		if err := s.projectRepo.DeleteCascade(projectID); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return nil
	}

	if err := s.projectRepo.DeleteDetach(projectID, time.Now()); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}
