package repository

import (
	"time"

	"github.com/tasklight/tasklight/internal/models"
	"gorm.io/gorm"
)

// GormCategoryRepository is a GORM implementation of CategoryRepository
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &GormCategoryRepository{db: db}
}

// Create creates a new category
func (r *GormCategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

// FindByID finds a category by ID
func (r *GormCategoryRepository) FindByID(id uint64) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListByUser lists the user's categories alphabetically by name
func (r *GormCategoryRepository) ListByUser(userID uint64) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Save persists all fields of an existing category
func (r *GormCategoryRepository) Save(category *models.Category) error {
	return r.db.Save(category).Error
}

// DeleteDetach removes the category after clearing the category reference
// on its tasks, in one transaction. Tasks are never deleted.
func (r *GormCategoryRepository) DeleteDetach(id uint64, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Unscoped().Model(&models.Task{}).
			Where("category_id = ?", id).
			Updates(map[string]interface{}{
				"category_id": nil,
				"updated_at":  now,
			}).Error
		if err != nil {
			return err
		}

		return tx.Delete(&models.Category{}, id).Error
	})
}
