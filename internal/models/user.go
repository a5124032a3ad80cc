package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Email        string         `gorm:"type:varchar(255);index" json:"email,omitempty"`
	Name         string         `gorm:"type:varchar(255)" json:"name,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Tasks      []Task     `gorm:"foreignKey:UserID" json:"-"`
	Projects   []Project  `gorm:"foreignKey:UserID" json:"-"`
	Categories []Category `gorm:"foreignKey:UserID" json:"-"`
	Tags       []Tag      `gorm:"foreignKey:UserID" json:"-"`
	Reminders  []Reminder `gorm:"foreignKey:UserID" json:"-"`
}
