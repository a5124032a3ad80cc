package models

import "time"

type SuggestionType string

const (
	SuggestionTypePriority SuggestionType = "priority"
	SuggestionTypeDeadline SuggestionType = "deadline"
	SuggestionTypeSubtasks SuggestionType = "subtasks"
	SuggestionTypeInsight  SuggestionType = "insight"
)

// ValidSuggestionType reports whether t is one of the known suggestion types.
func ValidSuggestionType(t SuggestionType) bool {
	switch t {
	case SuggestionTypePriority, SuggestionTypeDeadline, SuggestionTypeSubtasks, SuggestionTypeInsight:
		return true
	}
	return false
}

// AISuggestion caches one suggestion per (task, type). Writes for an
// existing pair overwrite the row in place; expired rows are ignored on
// read and superseded on the next write, never purged eagerly.
type AISuggestion struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	TaskID     uint64         `gorm:"not null;index:idx_suggestions_task_type,priority:1" json:"task_id"`
	UserID     uint64         `gorm:"not null;index" json:"user_id"`
	Type       SuggestionType `gorm:"type:varchar(20);not null;index:idx_suggestions_task_type,priority:2" json:"type"`
	Suggestion string         `gorm:"type:text;not null" json:"suggestion"`
	Metadata   string         `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	ExpiresAt  time.Time      `gorm:"not null" json:"expires_at"`
}
