package repository

import (
	"time"

	"github.com/tasklight/tasklight/internal/models"
	"gorm.io/gorm"
)

// GormSuggestionRepository is a GORM implementation of SuggestionRepository
type GormSuggestionRepository struct {
	db *gorm.DB
}

// NewSuggestionRepository creates a new SuggestionRepository
func NewSuggestionRepository(db *gorm.DB) SuggestionRepository {
	return &GormSuggestionRepository{db: db}
}

// FindByTaskAndType returns the cached row for (task, type) regardless of expiry
func (r *GormSuggestionRepository) FindByTaskAndType(taskID uint64, kind models.SuggestionType) (*models.AISuggestion, error) {
	var suggestion models.AISuggestion
	err := r.db.
		Where("task_id = ? AND type = ?", taskID, kind).
		First(&suggestion).Error
	if err != nil {
		return nil, err
	}
	return &suggestion, nil
}

// FindLive returns the cached row only while its expiry is strictly in the
// future. Expired rows stay in place until the next write supersedes them.
func (r *GormSuggestionRepository) FindLive(taskID uint64, kind models.SuggestionType, userID uint64, now time.Time) (*models.AISuggestion, error) {
	var suggestion models.AISuggestion
	err := r.db.
		Where("task_id = ? AND type = ? AND user_id = ? AND expires_at > ?", taskID, kind, userID, now).
		First(&suggestion).Error
	if err != nil {
		return nil, err
	}
	return &suggestion, nil
}

// Create creates a new cached suggestion
func (r *GormSuggestionRepository) Create(suggestion *models.AISuggestion) error {
	return r.db.Create(suggestion).Error
}

// Save overwrites an existing cached suggestion in place
func (r *GormSuggestionRepository) Save(suggestion *models.AISuggestion) error {
	return r.db.Save(suggestion).Error
}
