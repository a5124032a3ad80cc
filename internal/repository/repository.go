package repository

import (
	"time"

	"github.com/tasklight/tasklight/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID, including soft-deleted tasks. Callers
	// are responsible for the ownership check.
	FindByID(id uint64) (*models.Task, error)

	// List retrieves tasks matching the filter in canonical order: tasks
	// with a due date ascending by due date, then undated tasks by
	// creation time descending.
	List(filter TaskFilter) ([]models.Task, error)

	// Count counts tasks matching the filter, ignoring Offset and Limit.
	Count(filter TaskFilter) (int64, error)

	// Search matches the query as a title substring, scoped to the owner,
	// excluding soft-deleted tasks, capped at limit rows.
	Search(userID uint64, query string, limit int) ([]models.Task, error)

	// ListSubtasks lists non-deleted children of a parent task, oldest first.
	ListSubtasks(parentTaskID uint64) ([]models.Task, error)

	// Save persists all fields of an existing task
	Save(task *models.Task) error

	// SoftDelete stamps deleted_at and updated_at
	SoftDelete(id uint64, now time.Time) error

	// Restore clears deleted_at and refreshes updated_at. Restoring a
	// task that is not deleted is a no-op beyond the timestamp refresh.
	Restore(id uint64, now time.Time) error

	// HardDelete removes the task and its tag links and reminders in one
	// transaction.
	HardDelete(id uint64) error

	// ListByUserSince lists non-deleted tasks created at or after the cutoff.
	ListByUserSince(userID uint64, since time.Time) ([]models.Task, error)

	// CountByProject counts non-deleted tasks in a project, split by status
	CountByProject(projectID uint64) (total, completed, pending int64, err error)

	// CountByCategory counts non-deleted tasks in a category, split by status
	CountByCategory(categoryID uint64) (total, completed, pending int64, err error)
}

// TaskFilter holds filtering options for listing tasks. Filters are ANDed.
type TaskFilter struct {
	UserID         uint64
	Status         *models.TaskStatus
	Priority       *models.TaskPriority
	ProjectID      *uint64
	CategoryID     *uint64
	ParentTaskID   *uint64
	IncludeDeleted bool
	DueOnly        bool
	DueFrom        *time.Time // inclusive
	DueBefore      *time.Time // exclusive
	Offset         int
	Limit          int
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(project *models.Project) error
	FindByID(id uint64) (*models.Project, error)

	// ListByUser lists the user's projects alphabetically by name
	ListByUser(userID uint64) ([]models.Project, error)

	Save(project *models.Project) error

	// DeleteCascade removes the project, every task in it (soft-deleted
	// ones included), and those tasks' tag links and reminders, in one
	// transaction.
	DeleteCascade(id uint64) error

	// DeleteDetach removes the project after clearing the project
	// reference on its tasks, in one transaction.
	DeleteDetach(id uint64, now time.Time) error
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(category *models.Category) error
	FindByID(id uint64) (*models.Category, error)
	ListByUser(userID uint64) ([]models.Category, error)
	Save(category *models.Category) error

	// DeleteDetach removes the category after clearing the category
	// reference on its tasks. Tasks are never deleted.
	DeleteDetach(id uint64, now time.Time) error
}

// TagRepository defines the interface for tag and tag-association data access
type TagRepository interface {
	Create(tag *models.Tag) error
	FindByID(id uint64) (*models.Tag, error)
	ListByUser(userID uint64) ([]models.Tag, error)
	Save(tag *models.Tag) error

	// Delete removes the tag and all its task associations in one
	// transaction. Tasks are untouched.
	Delete(id uint64) error

	// AddToTask creates the (task, tag) join row; a no-op if it exists
	AddToTask(taskID, tagID uint64) error

	// RemoveFromTask deletes the join row; a no-op if absent
	RemoveFromTask(taskID, tagID uint64) error

	// ListByTask lists the tags attached to a task
	ListByTask(taskID uint64) ([]models.Tag, error)

	// ListTasks lists the non-deleted tasks carrying a tag
	ListTasks(tagID uint64) ([]models.Task, error)

	// CountLiveTasks counts non-deleted tasks carrying a tag
	CountLiveTasks(tagID uint64) (int64, error)
}

// ReminderRepository defines the interface for reminder data access
type ReminderRepository interface {
	Create(reminder *models.Reminder) error
	FindByID(id uint64) (*models.Reminder, error)

	// Save persists all fields of an existing reminder
	Save(reminder *models.Reminder) error

	Delete(id uint64) error

	// ListByUser lists a user's reminders ascending by reminder date
	ListByUser(userID uint64) ([]models.Reminder, error)

	// ListByTask lists reminders for a task
	ListByTask(taskID uint64) ([]models.Reminder, error)

	// ListDue lists up to limit unnotified reminders due strictly before
	// now, ascending by reminder date.
	ListDue(now time.Time, limit int) ([]models.Reminder, error)

	// ListUpcoming lists a user's unnotified reminders due after now
	ListUpcoming(userID uint64, now time.Time, limit int) ([]models.Reminder, error)

	// ListOverdueByUser lists a user's unnotified reminders due before now
	ListOverdueByUser(userID uint64, now time.Time) ([]models.Reminder, error)

	// MarkNotified flips the notified flag
	MarkNotified(id uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uint64) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	Save(user *models.User) error
}

// SettingsRepository defines the interface for user-settings data access
type SettingsRepository interface {
	// FindByUser returns the persisted settings row, if any
	FindByUser(userID uint64) (*models.UserSettings, error)
	Create(settings *models.UserSettings) error
	Save(settings *models.UserSettings) error
}

// SuggestionRepository defines the interface for the AI-suggestion cache
type SuggestionRepository interface {
	// FindByTaskAndType returns the cached row for (task, type) whether or
	// not it has expired.
	FindByTaskAndType(taskID uint64, kind models.SuggestionType) (*models.AISuggestion, error)

	// FindLive returns the cached row for (task, type, owner) only while
	// its expiry is strictly in the future.
	FindLive(taskID uint64, kind models.SuggestionType, userID uint64, now time.Time) (*models.AISuggestion, error)

	Create(suggestion *models.AISuggestion) error
	Save(suggestion *models.AISuggestion) error
}
