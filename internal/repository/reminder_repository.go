package repository

import (
	"time"

	"github.com/tasklight/tasklight/internal/models"
	"gorm.io/gorm"
)

// GormReminderRepository is a GORM implementation of ReminderRepository
type GormReminderRepository struct {
	db *gorm.DB
}

// NewReminderRepository creates a new ReminderRepository
func NewReminderRepository(db *gorm.DB) ReminderRepository {
	return &GormReminderRepository{db: db}
}

// Create creates a new reminder
func (r *GormReminderRepository) Create(reminder *models.Reminder) error {
	return r.db.Create(reminder).Error
}

// FindByID finds a reminder by ID
func (r *GormReminderRepository) FindByID(id uint64) (*models.Reminder, error) {
	var reminder models.Reminder
	if err := r.db.First(&reminder, id).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

// Save persists all fields of an existing reminder
func (r *GormReminderRepository) Save(reminder *models.Reminder) error {
	return r.db.Save(reminder).Error
}

// Delete removes a reminder
func (r *GormReminderRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Reminder{}, id).Error
}

// ListByUser lists a user's reminders ascending by reminder date
func (r *GormReminderRepository) ListByUser(userID uint64) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.
		Where("user_id = ?", userID).
		Order("reminder_date ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

// ListByTask lists reminders for a task
func (r *GormReminderRepository) ListByTask(taskID uint64) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.
		Where("task_id = ?", taskID).
		Order("reminder_date ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

// ListDue lists up to limit unnotified reminders due strictly before now
func (r *GormReminderRepository) ListDue(now time.Time, limit int) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.
		Where("notified = ? AND reminder_date < ?", false, now).
		Order("reminder_date ASC").
		Limit(limit).
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

// ListUpcoming lists a user's unnotified reminders due after now
func (r *GormReminderRepository) ListUpcoming(userID uint64, now time.Time, limit int) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.
		Where("user_id = ? AND notified = ? AND reminder_date > ?", userID, false, now).
		Order("reminder_date ASC").
		Limit(limit).
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

// ListOverdueByUser lists a user's unnotified reminders due before now
func (r *GormReminderRepository) ListOverdueByUser(userID uint64, now time.Time) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.
		Where("user_id = ? AND notified = ? AND reminder_date < ?", userID, false, now).
		Order("reminder_date ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

// MarkNotified flips the notified flag
func (r *GormReminderRepository) MarkNotified(id uint64) error {
	return r.db.Model(&models.Reminder{}).
		Where("id = ?", id).
		Update("notified", true).Error
}
