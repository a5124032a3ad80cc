package services

import (
	"errors"
	"fmt"

	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/repository"
	"gorm.io/gorm"
)

var ErrInvalidTheme = errors.New("invalid theme")

// SettingsService handles user-settings business logic
type SettingsService struct {
	settingsRepo repository.SettingsRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settingsRepo repository.SettingsRepository) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo}
}

// NotificationPreferencesInput mirrors the nested preference object
type NotificationPreferencesInput struct {
	Email             bool `json:"email"`
	Push              bool `json:"push"`
	ReminderBeforeDue int  `json:"reminder_before_due"`
}

// UpdateSettingsInput represents a partial settings update
type UpdateSettingsInput struct {
	NotificationPreferences *NotificationPreferencesInput
	Theme                   *models.Theme
}

// GetSettings returns the user's settings, or computed defaults when no
// row has ever been persisted. The defaults are not saved.
func (s *SettingsService) GetSettings(userID uint64) (*models.UserSettings, error) {
	settings, err := s.settingsRepo.FindByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			defaults := models.DefaultUserSettings(userID)
			return &defaults, nil
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings upserts the user's settings row, merging only the
// provided fields over the current (or default) values.
func (s *SettingsService) UpdateSettings(userID uint64, input UpdateSettingsInput) (*models.UserSettings, error) {
	if input.Theme != nil && !models.ValidTheme(*input.Theme) {
		return nil, ErrInvalidTheme
	}

	existing, err := s.settingsRepo.FindByUser(userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	settings := models.DefaultUserSettings(userID)
	if existing != nil {
		settings = *existing
	}

	if input.NotificationPreferences != nil {
		settings.NotifyEmail = input.NotificationPreferences.Email
		settings.NotifyPush = input.NotificationPreferences.Push
		settings.ReminderBeforeDue = input.NotificationPreferences.ReminderBeforeDue
	}
	if input.Theme != nil {
		settings.Theme = *input.Theme
	}

	if existing != nil {
		if err := s.settingsRepo.Save(&settings); err != nil {
			return nil, fmt.Errorf("failed to update settings: %w", err)
		}
	} else {
		settings.ID = 0
		if err := s.settingsRepo.Create(&settings); err != nil {
			return nil, fmt.Errorf("failed to create settings: %w", err)
		}
	}

	return &settings, nil
}

// ResetSettings restores the defaults, persisting them
func (s *SettingsService) ResetSettings(userID uint64) (*models.UserSettings, error) {
	defaults := models.DefaultUserSettings(userID)

	existing, err := s.settingsRepo.FindByUser(userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if existing != nil {
		defaults.ID = existing.ID
		if err := s.settingsRepo.Save(&defaults); err != nil {
			return nil, fmt.Errorf("failed to reset settings: %w", err)
		}
	} else {
		if err := s.settingsRepo.Create(&defaults); err != nil {
			return nil, fmt.Errorf("failed to reset settings: %w", err)
		}
	}

	return &defaults, nil
}
