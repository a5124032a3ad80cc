package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tasklight/tasklight/internal/constants"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidSuggestionType = errors.New("invalid suggestion type")
	ErrInvalidPeriod         = errors.New("invalid period")
)

// Keyword lists driving the priority heuristic.
var (
	highPriorityKeywords = []string{
		"urgent", "asap", "critical", "emergency", "deadline",
		"important", "priority", "immediately", "today", "now",
	}
	lowPriorityKeywords = []string{
		"sometime", "when possible", "eventually", "nice to have",
		"optional", "whenever", "no rush", "low priority",
	}
)

// Keyword lists driving the deadline heuristic.
var (
	complexKeywords = []string{"research", "design", "develop", "build", "implement", "create"}
	simpleKeywords  = []string{"call", "email", "send", "check", "review", "buy"}
)

// SubtaskSuggestion is one entry of a suggested breakdown
type SubtaskSuggestion struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Priority    models.TaskPriority `json:"priority,omitempty"`
}

// DeadlineSuggestion is the result of the deadline heuristic
type DeadlineSuggestion struct {
	RecommendedDate time.Time `json:"recommended_date"`
	Reasoning       string    `json:"reasoning"`
}

func containsAny(content string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(content, kw) {
			return true
		}
	}
	return false
}

// SuggestPriority is a pure keyword/date heuristic: urgency keywords push
// the priority up, slack keywords push it down, and a near or distant due
// date adjusts the result.
func SuggestPriority(title, description string, dueDate *time.Time, now time.Time) models.TaskPriority {
	content := strings.ToLower(title) + " " + strings.ToLower(description)

	priority := models.TaskPriorityMedium
	if containsAny(content, highPriorityKeywords) {
		priority = models.TaskPriorityHigh
	} else if containsAny(content, lowPriorityKeywords) {
		priority = models.TaskPriorityLow
	}

	if dueDate != nil {
		daysUntilDue := dueDate.Sub(now).Hours() / 24
		switch {
		case daysUntilDue < 1:
			priority = models.TaskPriorityHigh
		case daysUntilDue < 3:
			if priority == models.TaskPriorityLow {
				priority = models.TaskPriorityMedium
			}
		case daysUntilDue > 14:
			if priority == models.TaskPriorityHigh {
				priority = models.TaskPriorityMedium
			}
		}
	}

	return priority
}

// RecommendDeadline is a pure heuristic mapping time phrases and task
// complexity keywords to a recommended due date at 5 PM local time.
func RecommendDeadline(title, description string, now time.Time) DeadlineSuggestion {
	content := strings.ToLower(title) + " " + strings.ToLower(description)

	daysToAdd := 7
	switch {
	case strings.Contains(content, "today") || strings.Contains(content, "asap"):
		daysToAdd = 0
	case strings.Contains(content, "tomorrow"):
		daysToAdd = 1
	case strings.Contains(content, "this week"):
		daysToAdd = 5
	case strings.Contains(content, "next week"):
		daysToAdd = 10
	case strings.Contains(content, "this month"):
		daysToAdd = 21
	case strings.Contains(content, "next month"):
		daysToAdd = 35
	}

	if containsAny(content, complexKeywords) && daysToAdd < 7 {
		daysToAdd = 7
	}
	if containsAny(content, simpleKeywords) && daysToAdd > 3 {
		daysToAdd = 3
	}

	date := now.AddDate(0, 0, daysToAdd)
	recommended := time.Date(date.Year(), date.Month(), date.Day(), 17, 0, 0, 0, date.Location())

	size := "longer-term"
	switch {
	case daysToAdd <= 3:
		size = "quick"
	case daysToAdd <= 7:
		size = "medium"
	}

	return DeadlineSuggestion{
		RecommendedDate: recommended,
		Reasoning:       fmt.Sprintf("Based on the task content, this seems like a %s task.", size),
	}
}

// HeuristicSubtasks is a pure heuristic breaking a task into a canned
// subtask list picked by content keywords.
func HeuristicSubtasks(title, description string) []SubtaskSuggestion {
	content := strings.ToLower(title) + " " + strings.ToLower(description)

	switch {
	case strings.Contains(content, "project") || strings.Contains(content, "build") || strings.Contains(content, "develop"):
		return []SubtaskSuggestion{
			{Title: "Define requirements and scope", Priority: models.TaskPriorityHigh},
			{Title: "Create initial design/mockup", Priority: models.TaskPriorityMedium},
			{Title: "Set up project structure", Priority: models.TaskPriorityMedium},
			{Title: "Implement core functionality", Priority: models.TaskPriorityHigh},
			{Title: "Test and debug", Priority: models.TaskPriorityMedium},
			{Title: "Review and finalize", Priority: models.TaskPriorityLow},
		}
	case strings.Contains(content, "research") || strings.Contains(content, "analyze") || strings.Contains(content, "investigate"):
		return []SubtaskSuggestion{
			{Title: "Define research questions", Priority: models.TaskPriorityHigh},
			{Title: "Gather relevant sources", Priority: models.TaskPriorityMedium},
			{Title: "Review and analyze findings", Priority: models.TaskPriorityMedium},
			{Title: "Document conclusions", Priority: models.TaskPriorityMedium},
			{Title: "Create summary/presentation", Priority: models.TaskPriorityLow},
		}
	case strings.Contains(content, "meeting") || strings.Contains(content, "presentation") || strings.Contains(content, "present"):
		return []SubtaskSuggestion{
			{Title: "Define agenda/topics", Priority: models.TaskPriorityHigh},
			{Title: "Prepare materials/slides", Priority: models.TaskPriorityMedium},
			{Title: "Review and rehearse", Priority: models.TaskPriorityMedium},
			{Title: "Send invites/reminders", Priority: models.TaskPriorityLow},
		}
	case strings.Contains(content, "write") || strings.Contains(content, "document") || strings.Contains(content, "report"):
		return []SubtaskSuggestion{
			{Title: "Create outline", Priority: models.TaskPriorityHigh},
			{Title: "Write first draft", Priority: models.TaskPriorityHigh},
			{Title: "Review and edit", Priority: models.TaskPriorityMedium},
			{Title: "Finalize and format", Priority: models.TaskPriorityLow},
		}
	default:
		return []SubtaskSuggestion{
			{Title: "Plan: " + title, Priority: models.TaskPriorityHigh},
			{Title: "Execute: " + title, Priority: models.TaskPriorityMedium},
			{Title: "Review: " + title, Priority: models.TaskPriorityLow},
		}
	}
}

// ProductivitySummary is a template productivity recap for a period.
type ProductivitySummary struct {
	Summary string   `json:"summary"`
	Tips    []string `json:"tips"`
}

var periodPhrases = map[string]string{
	"daily":   "today",
	"weekly":  "this week",
	"monthly": "this month",
}

// SummarizeProductivity returns the canned recap for a period. Accepted
// periods are daily, weekly and monthly.
func SummarizeProductivity(period string) (ProductivitySummary, error) {
	phrase, ok := periodPhrases[period]
	if !ok {
		return ProductivitySummary{}, ErrInvalidPeriod
	}

	return ProductivitySummary{
		Summary: fmt.Sprintf("Here's your productivity summary for %s. You've been making steady progress on your tasks. Keep up the good work!", phrase),
		Tips: []string{
			"Consider breaking down larger tasks into smaller subtasks",
			"Try to complete high-priority tasks early in the day",
			"Review overdue tasks and reschedule if needed",
		},
	}, nil
}

// Insight is one pattern-based observation about the user's tasks.
type Insight struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ProductivityInsights returns the canned task-pattern observations.
func ProductivityInsights() []Insight {
	return []Insight{
		{
			Type:        "productivity",
			Title:       "Peak Productivity Hours",
			Description: "You tend to complete more tasks in the morning. Consider scheduling important work during this time.",
		},
		{
			Type:        "completion",
			Title:       "Task Completion Rate",
			Description: "Your task completion rate has improved this week. Keep maintaining this momentum!",
		},
		{
			Type:        "priority",
			Title:       "Priority Balance",
			Description: "You have a good balance of high, medium, and low priority tasks. This helps maintain sustainable productivity.",
		},
	}
}

// SuggestionService wraps the heuristics with the per-(task, type)
// suggestion cache.
type SuggestionService struct {
	suggestionRepo repository.SuggestionRepository
	taskRepo       repository.TaskRepository
}

// NewSuggestionService creates a new SuggestionService
func NewSuggestionService(suggestionRepo repository.SuggestionRepository, taskRepo repository.TaskRepository) *SuggestionService {
	return &SuggestionService{
		suggestionRepo: suggestionRepo,
		taskRepo:       taskRepo,
	}
}

// CacheSuggestionInput represents input for caching a suggestion
type CacheSuggestionInput struct {
	UserID         uint64
	TaskID         uint64
	Type           models.SuggestionType
	Suggestion     string
	Metadata       map[string]interface{}
	ExpiresInHours *int
}

// CacheSuggestion upserts the cached row for (task, type): the row is
// overwritten in place when one exists, inserted otherwise.
func (s *SuggestionService) CacheSuggestion(input CacheSuggestionInput) (uint64, error) {
	if !models.ValidSuggestionType(input.Type) {
		return 0, ErrInvalidSuggestionType
	}

	task, err := s.taskRepo.FindByID(input.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrTaskNotFound
		}
		return 0, fmt.Errorf("failed to find task: %w", err)
	}
	if task.UserID != input.UserID {
		return 0, ErrTaskNotFound
	}

	hours := constants.DefaultSuggestionTTLHours
	if input.ExpiresInHours != nil {
		hours = *input.ExpiresInHours
	}

	metadata := ""
	if input.Metadata != nil {
		raw, err := json.Marshal(input.Metadata)
		if err != nil {
			return 0, fmt.Errorf("failed to encode metadata: %w", err)
		}
		metadata = string(raw)
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)

	existing, err := s.suggestionRepo.FindByTaskAndType(input.TaskID, input.Type)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("failed to look up cached suggestion: %w", err)
	}

	if existing != nil {
		existing.Suggestion = input.Suggestion
		existing.Metadata = metadata
		existing.ExpiresAt = expiresAt
		if err := s.suggestionRepo.Save(existing); err != nil {
			return 0, fmt.Errorf("failed to update cached suggestion: %w", err)
		}
		return existing.ID, nil
	}

	suggestion := &models.AISuggestion{
		TaskID:     input.TaskID,
		UserID:     input.UserID,
		Type:       input.Type,
		Suggestion: input.Suggestion,
		Metadata:   metadata,
		ExpiresAt:  expiresAt,
	}
	if err := s.suggestionRepo.Create(suggestion); err != nil {
		return 0, fmt.Errorf("failed to cache suggestion: %w", err)
	}
	return suggestion.ID, nil
}

// GetCachedSuggestion returns the live cached row for (task, type, owner),
// or nil when none exists or the row has expired. Expired rows are not
// purged; they are simply invisible until overwritten.
func (s *SuggestionService) GetCachedSuggestion(userID, taskID uint64, kind models.SuggestionType) (*models.AISuggestion, error) {
	if !models.ValidSuggestionType(kind) {
		return nil, ErrInvalidSuggestionType
	}

	suggestion, err := s.suggestionRepo.FindLive(taskID, kind, userID, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up cached suggestion: %w", err)
	}
	return suggestion, nil
}
