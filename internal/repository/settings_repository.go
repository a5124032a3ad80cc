package repository

import (
	"github.com/tasklight/tasklight/internal/models"
	"gorm.io/gorm"
)

// GormSettingsRepository is a GORM implementation of SettingsRepository
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &GormSettingsRepository{db: db}
}

// FindByUser returns the persisted settings row, if any
func (r *GormSettingsRepository) FindByUser(userID uint64) (*models.UserSettings, error) {
	var settings models.UserSettings
	if err := r.db.Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// Create creates a new settings row
func (r *GormSettingsRepository) Create(settings *models.UserSettings) error {
	return r.db.Create(settings).Error
}

// Save persists all fields of an existing settings row
func (r *GormSettingsRepository) Save(settings *models.UserSettings) error {
	return r.db.Save(settings).Error
}
