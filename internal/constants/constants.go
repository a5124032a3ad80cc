package constants

// Session and context keys
const (
	SessionCookieName = "tasklight_session"
	ContextKeyUserID  = "user_id"
)

// Authentication
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Task search results are capped regardless of pagination.
const SearchResultLimit = 20

// Default entity colors used when the client does not pick one.
const (
	DefaultProjectColor  = "#8f7559"
	DefaultCategoryColor = "#0ea5e9"
	DefaultTagColor      = "#6366f1"
)

// Reminders
const (
	// DefaultReminderLeadHours is used when the user has no configured
	// reminder_before_due setting.
	DefaultReminderLeadHours = 24

	// ReminderBatchSize bounds a single due-reminder processing run; the
	// next scheduler tick picks up the remainder.
	ReminderBatchSize = 100
)

// Suggestion cache entries expire this many hours after being written
// unless the caller overrides it.
const DefaultSuggestionTTLHours = 24
