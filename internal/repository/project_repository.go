package repository

import (
	"time"

	"github.com/tasklight/tasklight/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListByUser lists the user's projects alphabetically by name
func (r *GormProjectRepository) ListByUser(userID uint64) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// Save persists all fields of an existing project
func (r *GormProjectRepository) Save(project *models.Project) error {
	return r.db.Save(project).Error
}

// DeleteCascade removes the project and every task in it, along with those
// tasks' tag links and reminders. Soft-deleted tasks are swept up too. The
// whole cascade runs in one transaction.
func (r *GormProjectRepository) DeleteCascade(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint64
		err := tx.Unscoped().Model(&models.Task{}).
			Where("project_id = ?", id).
			Pluck("id", &taskIDs).Error
		if err != nil {
			return err
		}

		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskTag{}).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Reminder{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("id IN ?", taskIDs).Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}

// DeleteDetach removes the project after clearing the project reference on
// its tasks, in one transaction. Tasks survive with a refreshed updated_at.
func (r *GormProjectRepository) DeleteDetach(id uint64, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Unscoped().Model(&models.Task{}).
			Where("project_id = ?", id).
			Updates(map[string]interface{}{
				"project_id": nil,
				"updated_at": now,
			}).Error
		if err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}
