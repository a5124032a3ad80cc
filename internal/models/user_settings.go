package models

import "time"

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ValidTheme reports whether t is one of the known themes.
func ValidTheme(t Theme) bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// UserSettings holds per-user preferences. At most one row per user; reads
// fall back to DefaultUserSettings when no row exists.
type UserSettings struct {
	ID                uint64    `gorm:"primarykey" json:"id"`
	UserID            uint64    `gorm:"not null;uniqueIndex" json:"user_id"`
	NotifyEmail       bool      `gorm:"not null;default:true" json:"notify_email"`
	NotifyPush        bool      `gorm:"not null;default:true" json:"notify_push"`
	ReminderBeforeDue int       `gorm:"not null;default:24" json:"reminder_before_due"`
	Theme             Theme     `gorm:"type:varchar(10);not null;default:'light'" json:"theme"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DefaultUserSettings returns the computed defaults for a user without a
// persisted settings row. The result is not saved.
func DefaultUserSettings(userID uint64) UserSettings {
	return UserSettings{
		UserID:            userID,
		NotifyEmail:       true,
		NotifyPush:        true,
		ReminderBeforeDue: 24,
		Theme:             ThemeLight,
		UpdatedAt:         time.Now(),
	}
}
