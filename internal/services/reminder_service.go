package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tasklight/tasklight/internal/constants"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrReminderNotFound = errors.New("reminder not found")
	ErrTaskHasNoDueDate = errors.New("task has no due date")
)

// Notifier dispatches a due reminder to an external channel (email, push).
// Dispatch is outside this service's transaction; implementations decide
// delivery semantics.
type Notifier interface {
	Notify(reminder models.Reminder, task models.Task)
}

// ReminderService handles reminder business logic and the due-reminder
// batch run.
type ReminderService struct {
	reminderRepo repository.ReminderRepository
	taskRepo     repository.TaskRepository
	settingsRepo repository.SettingsRepository
	notifier     Notifier
}

// NewReminderService creates a new ReminderService. notifier may be nil,
// in which case due reminders are marked without dispatching anything.
func NewReminderService(
	reminderRepo repository.ReminderRepository,
	taskRepo repository.TaskRepository,
	settingsRepo repository.SettingsRepository,
	notifier Notifier,
) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
		taskRepo:     taskRepo,
		settingsRepo: settingsRepo,
		notifier:     notifier,
	}
}

// ReminderWithTask pairs a reminder with its task for list responses
type ReminderWithTask struct {
	models.Reminder
	Task models.Task `json:"task"`
}

func (s *ReminderService) getOwned(userID, reminderID uint64) (*models.Reminder, error) {
	reminder, err := s.reminderRepo.FindByID(reminderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReminderNotFound
		}
		return nil, fmt.Errorf("failed to find reminder: %w", err)
	}
	if reminder.UserID != userID {
		return nil, ErrReminderNotFound
	}
	return reminder, nil
}

func (s *ReminderService) getOwnedTask(userID, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task.UserID != userID {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// CreateReminder creates a reminder for an owned task
func (s *ReminderService) CreateReminder(userID, taskID uint64, reminderDate time.Time) (*models.Reminder, error) {
	if _, err := s.getOwnedTask(userID, taskID); err != nil {
		return nil, err
	}

	reminder := &models.Reminder{
		TaskID:       taskID,
		UserID:       userID,
		ReminderDate: reminderDate,
		Notified:     false,
	}

	if err := s.reminderRepo.Create(reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	return reminder, nil
}

// CreateFromTask derives a reminder from the task's due date, using the
// explicit lead time when given, otherwise the user's reminder_before_due
// setting, otherwise 24 hours. Returns (nil, nil) when the computed time
// is already past: that is a deliberate skip, not a failure.
func (s *ReminderService) CreateFromTask(userID, taskID uint64, hoursBeforeDue *int) (*models.Reminder, error) {
	task, err := s.getOwnedTask(userID, taskID)
	if err != nil {
		return nil, err
	}

	if task.DueDate == nil {
		return nil, ErrTaskHasNoDueDate
	}

	hours := constants.DefaultReminderLeadHours
	if hoursBeforeDue != nil {
		hours = *hoursBeforeDue
	} else if settings, err := s.settingsRepo.FindByUser(userID); err == nil {
		hours = settings.ReminderBeforeDue
	}

	reminderDate := task.DueDate.Add(-time.Duration(hours) * time.Hour)
	if reminderDate.Before(time.Now()) {
		return nil, nil
	}

	reminder := &models.Reminder{
		TaskID:       taskID,
		UserID:       userID,
		ReminderDate: reminderDate,
		Notified:     false,
	}

	if err := s.reminderRepo.Create(reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	return reminder, nil
}

// GetReminder returns an owned reminder by ID
func (s *ReminderService) GetReminder(userID, reminderID uint64) (*models.Reminder, error) {
	return s.getOwned(userID, reminderID)
}

// UpdateReminderInput represents a partial reminder patch
type UpdateReminderInput struct {
	ReminderDate *time.Time
	Notified     *bool
}

// UpdateReminder patches the reminder date and notified flag on an owned
// reminder, leaving omitted fields untouched.
func (s *ReminderService) UpdateReminder(userID, reminderID uint64, input UpdateReminderInput) (*models.Reminder, error) {
	reminder, err := s.getOwned(userID, reminderID)
	if err != nil {
		return nil, err
	}

	if input.ReminderDate != nil {
		reminder.ReminderDate = *input.ReminderDate
	}
	if input.Notified != nil {
		reminder.Notified = *input.Notified
	}

	if err := s.reminderRepo.Save(reminder); err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}
	return reminder, nil
}

// ListReminders lists a user's reminders with their tasks, skipping
// reminders whose task has been soft-deleted.
func (s *ReminderService) ListReminders(userID uint64) ([]ReminderWithTask, error) {
	reminders, err := s.reminderRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return s.attachTasks(reminders), nil
}

// ListUpcoming lists a user's unnotified future reminders with their tasks
func (s *ReminderService) ListUpcoming(userID uint64, limit int) ([]ReminderWithTask, error) {
	if limit <= 0 {
		limit = 10
	}
	reminders, err := s.reminderRepo.ListUpcoming(userID, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return s.attachTasks(reminders), nil
}

// ListOverdue lists a user's unnotified reminders whose time has passed
// without the batch having picked them up yet, with their tasks.
func (s *ReminderService) ListOverdue(userID uint64) ([]ReminderWithTask, error) {
	reminders, err := s.reminderRepo.ListOverdueByUser(userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return s.attachTasks(reminders), nil
}

func (s *ReminderService) attachTasks(reminders []models.Reminder) []ReminderWithTask {
	result := make([]ReminderWithTask, 0, len(reminders))
	for _, reminder := range reminders {
		task, err := s.taskRepo.FindByID(reminder.TaskID)
		if err != nil || task.DeletedAt.Valid {
			continue
		}
		result = append(result, ReminderWithTask{Reminder: reminder, Task: *task})
	}
	return result
}

// ListByTask lists reminders for an owned task
func (s *ReminderService) ListByTask(userID, taskID uint64) ([]models.Reminder, error) {
	if _, err := s.getOwnedTask(userID, taskID); err != nil {
		return nil, err
	}

	reminders, err := s.reminderRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

// MarkNotified acknowledges a reminder manually
func (s *ReminderService) MarkNotified(userID, reminderID uint64) error {
	if _, err := s.getOwned(userID, reminderID); err != nil {
		return err
	}

	if err := s.reminderRepo.MarkNotified(reminderID); err != nil {
		return fmt.Errorf("failed to mark reminder notified: %w", err)
	}
	return nil
}

// DeleteReminder removes a reminder
func (s *ReminderService) DeleteReminder(userID, reminderID uint64) error {
	if _, err := s.getOwned(userID, reminderID); err != nil {
		return err
	}

	if err := s.reminderRepo.Delete(reminderID); err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return nil
}

// ProcessDue is the scheduler-invoked batch run. It takes up to the batch
// size of unnotified reminders due before now, oldest first, and marks
// each notified. Reminders whose task is gone, soft-deleted, or already
// completed are marked without dispatching, so stale notifications are
// suppressed. The run is idempotent: rows already flipped are never
// selected again.
func (s *ReminderService) ProcessDue(now time.Time) (int, error) {
	due, err := s.reminderRepo.ListDue(now, constants.ReminderBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list due reminders: %w", err)
	}

	processed := 0
	for _, reminder := range due {
		task, err := s.taskRepo.FindByID(reminder.TaskID)
		stale := err != nil || task.DeletedAt.Valid || task.Status == models.TaskStatusCompleted

		if markErr := s.reminderRepo.MarkNotified(reminder.ID); markErr != nil {
			log.Printf("failed to mark reminder %d notified: %v", reminder.ID, markErr)
			continue
		}

		if stale {
			continue
		}

		if s.notifier != nil {
			s.notifier.Notify(reminder, *task)
		}
		processed++
	}

	return processed, nil
}
