package models

// TaskTag is the task/tag join row. The composite primary key keeps the
// pair unique; adding an existing pair is a no-op.
type TaskTag struct {
	TaskID uint64 `gorm:"primarykey" json:"task_id"`
	TagID  uint64 `gorm:"primarykey;index" json:"tag_id"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Tag  Tag  `gorm:"foreignKey:TagID" json:"tag,omitempty"`
}
