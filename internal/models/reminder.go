package models

import "time"

// Reminder has no soft delete: it is meaningless without its task and is
// hard-deleted whenever the task is.
type Reminder struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	TaskID       uint64    `gorm:"not null;index" json:"task_id"`
	UserID       uint64    `gorm:"not null;index" json:"user_id"`
	ReminderDate time.Time `gorm:"not null;index:idx_reminders_pending,priority:2" json:"reminder_date"`
	Notified     bool      `gorm:"not null;default:false;index:idx_reminders_pending,priority:1" json:"notified"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}
