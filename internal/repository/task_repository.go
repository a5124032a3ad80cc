package repository

import (
	"time"

	"github.com/tasklight/tasklight/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// canonicalOrder sorts dated tasks ascending by due date and puts undated
// tasks after them, newest created first.
const canonicalOrder = "CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date ASC, tasks.created_at DESC"

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID. Soft-deleted tasks are still returned so
// that restore and hard delete can operate on them.
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.Unscoped().First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *GormTaskRepository) filtered(filter TaskFilter) *gorm.DB {
	query := r.db.Model(&models.Task{})
	if filter.IncludeDeleted {
		query = query.Unscoped()
	}
	query = query.Where("tasks.user_id = ?", filter.UserID)

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.CategoryID != nil {
		query = query.Where("tasks.category_id = ?", *filter.CategoryID)
	}
	if filter.ParentTaskID != nil {
		query = query.Where("tasks.parent_task_id = ?", *filter.ParentTaskID)
	}
	if filter.DueOnly {
		query = query.Where("tasks.due_date IS NOT NULL")
	}
	if filter.DueFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueFrom)
	}
	if filter.DueBefore != nil {
		query = query.Where("tasks.due_date < ?", *filter.DueBefore)
	}

	return query
}

// List retrieves tasks matching the filter in canonical order
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	var tasks []models.Task

	query := r.filtered(filter).Order(canonicalOrder)
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}

	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// Count counts tasks matching the filter, ignoring Offset and Limit
func (r *GormTaskRepository) Count(filter TaskFilter) (int64, error) {
	var count int64
	if err := r.filtered(filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Search matches the query as a title substring scoped to the owner
func (r *GormTaskRepository) Search(userID uint64, query string, limit int) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("user_id = ?", userID).
		Where("title LIKE ?", "%"+query+"%").
		Order(canonicalOrder).
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListSubtasks lists non-deleted children of a parent task, oldest first
func (r *GormTaskRepository) ListSubtasks(parentTaskID uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("parent_task_id = ?", parentTaskID).
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Save persists all fields of an existing task
func (r *GormTaskRepository) Save(task *models.Task) error {
	return r.db.Unscoped().Save(task).Error
}

// SoftDelete stamps deleted_at and updated_at
func (r *GormTaskRepository) SoftDelete(id uint64, now time.Time) error {
	return r.db.Model(&models.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"deleted_at": now,
			"updated_at": now,
		}).Error
}

// Restore clears deleted_at and refreshes updated_at
func (r *GormTaskRepository) Restore(id uint64, now time.Time) error {
	return r.db.Unscoped().Model(&models.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"deleted_at": nil,
			"updated_at": now,
		}).Error
}

// HardDelete removes the task and its dependents in one transaction so a
// partial cascade can never leave orphaned rows.
func (r *GormTaskRepository) HardDelete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.Reminder{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Task{}, id).Error
	})
}

// ListByUserSince lists non-deleted tasks created at or after the cutoff
func (r *GormTaskRepository) ListByUserSince(userID uint64, since time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("user_id = ?", userID).
		Where("created_at >= ?", since).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountByProject counts non-deleted tasks in a project, split by status
func (r *GormTaskRepository) CountByProject(projectID uint64) (total, completed, pending int64, err error) {
	return r.countByColumn("project_id", projectID)
}

// CountByCategory counts non-deleted tasks in a category, split by status
func (r *GormTaskRepository) CountByCategory(categoryID uint64) (total, completed, pending int64, err error) {
	return r.countByColumn("category_id", categoryID)
}

func (r *GormTaskRepository) countByColumn(column string, id uint64) (total, completed, pending int64, err error) {
	base := r.db.Model(&models.Task{}).Where(column+" = ?", id)

	if err = base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, 0, 0, err
	}
	if err = base.Session(&gorm.Session{}).Where("status = ?", models.TaskStatusCompleted).Count(&completed).Error; err != nil {
		return 0, 0, 0, err
	}
	pending = total - completed
	return total, completed, pending, nil
}
