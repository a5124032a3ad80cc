package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s TaskStatus) bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

// ValidPriority reports whether p is one of the known task priorities.
func ValidPriority(p TaskPriority) bool {
	return p == TaskPriorityLow || p == TaskPriorityMedium || p == TaskPriorityHigh
}

type Task struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	UserID       uint64         `gorm:"not null;index" json:"user_id"`
	Title        string         `gorm:"not null;index" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	DueDate      *time.Time     `gorm:"index" json:"due_date"`
	Priority     TaskPriority   `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	Status       TaskStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ProjectID    *uint64        `gorm:"index" json:"project_id"`
	CategoryID   *uint64        `gorm:"index" json:"category_id"`
	ParentTaskID *uint64        `gorm:"index" json:"parent_task_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project   *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Category  *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Subtasks  []Task     `gorm:"foreignKey:ParentTaskID" json:"subtasks,omitempty"`
	TaskTags  []TaskTag  `gorm:"foreignKey:TaskID" json:"-"`
	Reminders []Reminder `gorm:"foreignKey:TaskID" json:"-"`
}
