package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/repository"
)

// AnalyticsService computes read-only aggregates over the task collection.
// Nothing here is persisted; every result is derived per request.
type AnalyticsService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository) *AnalyticsService {
	return &AnalyticsService{taskRepo: taskRepo, projectRepo: projectRepo}
}

// CompletionRate reports totals and completion percentage over a window
type CompletionRate struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Pending        int `json:"pending"`
	CompletionRate int `json:"completion_rate"`
	Period         int `json:"period"`
}

// OverdueStats splits pending tasks by due-date state and overdue age
type OverdueStats struct {
	TotalPending  int `json:"total_pending"`
	Overdue       int `json:"overdue"`
	Upcoming      int `json:"upcoming"`
	NoDueDate     int `json:"no_due_date"`
	OverdueByDays struct {
		LessThanDay     int `json:"less_than_day"`
		OneToThreeDays  int `json:"one_to_three_days"`
		ThreeToSevenDay int `json:"three_to_seven_days"`
		MoreThanWeek    int `json:"more_than_week"`
	} `json:"overdue_by_days"`
}

// WeeklySummary reports the last 7 days of activity
type WeeklySummary struct {
	TasksCreated           int     `json:"tasks_created"`
	TasksCompleted         int     `json:"tasks_completed"`
	CompletionRate         int     `json:"completion_rate"`
	AvgCompletionTimeHours float64 `json:"avg_completion_time_hours"`
}

// DailyTrend is one day of the productivity trend series
type DailyTrend struct {
	Date      string `json:"date"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}

// PriorityStats is the per-priority slice of the user's live tasks
type PriorityStats struct {
	Priority       models.TaskPriority `json:"priority"`
	Total          int                 `json:"total"`
	Completed      int                 `json:"completed"`
	Pending        int                 `json:"pending"`
	CompletionRate int                 `json:"completion_rate"`
}

// ProjectTaskStats is the per-project slice of the user's live tasks. Tasks
// without a project are collected under a synthetic "No Project" entry
// with a nil ProjectID.
type ProjectTaskStats struct {
	ProjectID      *uint64 `json:"project_id"`
	ProjectName    string  `json:"project_name"`
	ProjectColor   string  `json:"project_color"`
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	CompletionRate int     `json:"completion_rate"`
}

// noProjectColor marks the bucket for tasks outside any project.
const noProjectColor = "#78716c"

func roundedRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// GetCompletionRate computes the completion rate over the last N days
// (default 30).
func (s *AnalyticsService) GetCompletionRate(userID uint64, days int) (*CompletionRate, error) {
	if days <= 0 {
		days = 30
	}

	since := time.Now().AddDate(0, 0, -days)
	tasks, err := s.taskRepo.ListByUserSince(userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	result := &CompletionRate{Period: days, Total: len(tasks)}
	for _, task := range tasks {
		if task.Status == models.TaskStatusCompleted {
			result.Completed++
		} else {
			result.Pending++
		}
	}
	result.CompletionRate = roundedRate(result.Completed, result.Total)
	return result, nil
}

// GetOverdueStats buckets the user's pending tasks by due-date state
func (s *AnalyticsService) GetOverdueStats(userID uint64, now time.Time) (*OverdueStats, error) {
	pending := models.TaskStatusPending
	tasks, err := s.taskRepo.List(repository.TaskFilter{UserID: userID, Status: &pending})
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	stats := &OverdueStats{TotalPending: len(tasks)}
	for _, task := range tasks {
		if task.DueDate == nil {
			stats.NoDueDate++
			continue
		}
		if !task.DueDate.Before(now) {
			stats.Upcoming++
			continue
		}

		stats.Overdue++
		daysOverdue := now.Sub(*task.DueDate).Hours() / 24
		switch {
		case daysOverdue < 1:
			stats.OverdueByDays.LessThanDay++
		case daysOverdue < 3:
			stats.OverdueByDays.OneToThreeDays++
		case daysOverdue < 7:
			stats.OverdueByDays.ThreeToSevenDay++
		default:
			stats.OverdueByDays.MoreThanWeek++
		}
	}
	return stats, nil
}

// GetWeeklySummary summarizes the last 7 days: tasks created, completed,
// and the average creation-to-completion time among completed ones.
func (s *AnalyticsService) GetWeeklySummary(userID uint64, now time.Time) (*WeeklySummary, error) {
	weekStart := now.AddDate(0, 0, -7)
	tasks, err := s.taskRepo.ListByUserSince(userID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	summary := &WeeklySummary{TasksCreated: len(tasks)}

	var totalCompletion time.Duration
	completedWithTime := 0
	for _, task := range tasks {
		if task.Status != models.TaskStatusCompleted {
			continue
		}
		summary.TasksCompleted++
		totalCompletion += task.UpdatedAt.Sub(task.CreatedAt)
		completedWithTime++
	}

	summary.CompletionRate = roundedRate(summary.TasksCompleted, summary.TasksCreated)
	if completedWithTime > 0 {
		avg := totalCompletion / time.Duration(completedWithTime)
		summary.AvgCompletionTimeHours = math.Round(avg.Hours()*10) / 10
	}
	return summary, nil
}

// GetProductivityTrends returns a per-day created/completed series for the
// last N days (default 14), most recent day first.
func (s *AnalyticsService) GetProductivityTrends(userID uint64, days int, now time.Time) ([]DailyTrend, error) {
	if days <= 0 {
		days = 14
	}

	since := now.AddDate(0, 0, -days)
	tasks, err := s.taskRepo.ListByUserSince(userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	byDay := make(map[string]*DailyTrend, days)
	order := make([]string, 0, days)
	for i := 0; i < days; i++ {
		key := now.AddDate(0, 0, -i).Format("2006-01-02")
		byDay[key] = &DailyTrend{Date: key}
		order = append(order, key)
	}

	for _, task := range tasks {
		if trend, ok := byDay[task.CreatedAt.Format("2006-01-02")]; ok {
			trend.Created++
		}
		if task.Status == models.TaskStatusCompleted {
			if trend, ok := byDay[task.UpdatedAt.Format("2006-01-02")]; ok {
				trend.Completed++
			}
		}
	}

	trends := make([]DailyTrend, 0, days)
	for _, key := range order {
		trends = append(trends, *byDay[key])
	}
	return trends, nil
}

// GetStatsByPriority splits the user's non-deleted tasks by priority
// level, low to high, with per-level completion rates.
func (s *AnalyticsService) GetStatsByPriority(userID uint64) ([]PriorityStats, error) {
	tasks, err := s.taskRepo.List(repository.TaskFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	priorities := []models.TaskPriority{
		models.TaskPriorityLow,
		models.TaskPriorityMedium,
		models.TaskPriorityHigh,
	}

	stats := make([]PriorityStats, 0, len(priorities))
	for _, priority := range priorities {
		entry := PriorityStats{Priority: priority}
		for _, task := range tasks {
			if task.Priority != priority {
				continue
			}
			entry.Total++
			if task.Status == models.TaskStatusCompleted {
				entry.Completed++
			} else {
				entry.Pending++
			}
		}
		entry.CompletionRate = roundedRate(entry.Completed, entry.Total)
		stats = append(stats, entry)
	}
	return stats, nil
}

// GetStatsByProject splits the user's non-deleted tasks by project,
// including a "No Project" bucket for unassigned tasks, busiest project
// first.
func (s *AnalyticsService) GetStatsByProject(userID uint64) ([]ProjectTaskStats, error) {
	tasks, err := s.taskRepo.List(repository.TaskFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	projects, err := s.projectRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	stats := make([]ProjectTaskStats, 0, len(projects)+1)
	for _, project := range projects {
		projectID := project.ID
		entry := ProjectTaskStats{
			ProjectID:    &projectID,
			ProjectName:  project.Name,
			ProjectColor: project.Color,
		}
		for _, task := range tasks {
			if task.ProjectID == nil || *task.ProjectID != project.ID {
				continue
			}
			entry.Total++
			if task.Status == models.TaskStatusCompleted {
				entry.Completed++
			} else {
				entry.Pending++
			}
		}
		entry.CompletionRate = roundedRate(entry.Completed, entry.Total)
		stats = append(stats, entry)
	}

	unassigned := ProjectTaskStats{
		ProjectName:  "No Project",
		ProjectColor: noProjectColor,
	}
	for _, task := range tasks {
		if task.ProjectID != nil {
			continue
		}
		unassigned.Total++
		if task.Status == models.TaskStatusCompleted {
			unassigned.Completed++
		} else {
			unassigned.Pending++
		}
	}
	unassigned.CompletionRate = roundedRate(unassigned.Completed, unassigned.Total)
	stats = append(stats, unassigned)

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Total > stats[j].Total
	})
	return stats, nil
}
