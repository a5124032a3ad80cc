package repository

import (
	"github.com/tasklight/tasklight/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTagRepository is a GORM implementation of TagRepository
type GormTagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &GormTagRepository{db: db}
}

// Create creates a new tag
func (r *GormTagRepository) Create(tag *models.Tag) error {
	return r.db.Create(tag).Error
}

// FindByID finds a tag by ID
func (r *GormTagRepository) FindByID(id uint64) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// ListByUser lists the user's tags alphabetically by name
func (r *GormTagRepository) ListByUser(userID uint64) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// Save persists all fields of an existing tag
func (r *GormTagRepository) Save(tag *models.Tag) error {
	return r.db.Save(tag).Error
}

// Delete removes the tag and all its task associations in one transaction
func (r *GormTagRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.TaskTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tag{}, id).Error
	})
}

// AddToTask creates the (task, tag) join row. The insert conflicts on the
// composite primary key when the pair exists, making the add idempotent.
func (r *GormTagRepository) AddToTask(taskID, tagID uint64) error {
	link := models.TaskTag{TaskID: taskID, TagID: tagID}
	return r.db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link).Error
}

// RemoveFromTask deletes the join row; deleting an absent pair is a no-op
func (r *GormTagRepository) RemoveFromTask(taskID, tagID uint64) error {
	return r.db.
		Where("task_id = ? AND tag_id = ?", taskID, tagID).
		Delete(&models.TaskTag{}).Error
}

// ListByTask lists the tags attached to a task
func (r *GormTagRepository) ListByTask(taskID uint64) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.Model(&models.Tag{}).
		Joins("JOIN task_tags ON task_tags.tag_id = tags.id").
		Where("task_tags.task_id = ?", taskID).
		Order("tags.name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// ListTasks lists the non-deleted tasks carrying a tag
func (r *GormTagRepository) ListTasks(tagID uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Model(&models.Task{}).
		Joins("JOIN task_tags ON task_tags.task_id = tasks.id").
		Where("task_tags.tag_id = ?", tagID).
		Order(canonicalOrder).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountLiveTasks counts non-deleted tasks carrying a tag
func (r *GormTagRepository) CountLiveTasks(tagID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Joins("JOIN task_tags ON task_tags.task_id = tasks.id").
		Where("task_tags.tag_id = ?", tagID).
		Count(&count).Error
	return count, err
}
