package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/repository"
)

func newAnalyticsTest(t *testing.T) (*AnalyticsService, *TaskService, uint64) {
	t.Helper()
	db := newTestDB(t)
	user := createTestUser(t, db, "analyticsuser")
	taskRepo := repository.NewTaskRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	return NewAnalyticsService(taskRepo, projectRepo), NewTaskService(taskRepo), user.ID
}

func TestGetCompletionRate(t *testing.T) {
	svc, taskSvc, userID := newAnalyticsTest(t)

	for i := 0; i < 3; i++ {
		_, err := taskSvc.CreateTask(CreateTaskInput{UserID: userID, Title: "pending task"})
		require.NoError(t, err)
	}
	done, err := taskSvc.CreateTask(CreateTaskInput{UserID: userID, Title: "done task"})
	require.NoError(t, err)
	_, err = taskSvc.MarkComplete(userID, done.ID)
	require.NoError(t, err)

	stats, err := svc.GetCompletionRate(userID, 0)
	require.NoError(t, err)
	assert.Equal(t, 30, stats.Period)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 3, stats.Pending)
	assert.Equal(t, 25, stats.CompletionRate)
}

func TestGetCompletionRate_Empty(t *testing.T) {
	svc, _, userID := newAnalyticsTest(t)

	stats, err := svc.GetCompletionRate(userID, 7)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.CompletionRate)
}

func TestGetOverdueStats(t *testing.T) {
	svc, taskSvc, userID := newAnalyticsTest(t)

	now := time.Now()
	twoDaysLate := now.Add(-2 * 24 * time.Hour)
	tenDaysLate := now.Add(-10 * 24 * time.Hour)
	nextWeek := now.Add(7 * 24 * time.Hour)

	_, err := taskSvc.CreateTask(CreateTaskInput{UserID: userID, Title: "a bit late", DueDate: &twoDaysLate})
	require.NoError(t, err)
	_, err = taskSvc.CreateTask(CreateTaskInput{UserID: userID, Title: "very late", DueDate: &tenDaysLate})
	require.NoError(t, err)
	_, err = taskSvc.CreateTask(CreateTaskInput{UserID: userID, Title: "future", DueDate: &nextWeek})
	require.NoError(t, err)
	_, err = taskSvc.CreateTask(CreateTaskInput{UserID: userID, Title: "undated"})
	require.NoError(t, err)

	stats, err := svc.GetOverdueStats(userID, now)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalPending)
	assert.Equal(t, 2, stats.Overdue)
	assert.Equal(t, 1, stats.Upcoming)
	assert.Equal(t, 1, stats.NoDueDate)
	assert.Equal(t, 1, stats.OverdueByDays.OneToThreeDays)
	assert.Equal(t, 1, stats.OverdueByDays.MoreThanWeek)
}

func TestGetWeeklySummary(t *testing.T) {
	svc, taskSvc, userID := newAnalyticsTest(t)

	done, err := taskSvc.CreateTask(CreateTaskInput{UserID: userID, Title: "quick win"})
	require.NoError(t, err)
	_, err = taskSvc.MarkComplete(userID, done.ID)
	require.NoError(t, err)
	_, err = taskSvc.CreateTask(CreateTaskInput{UserID: userID, Title: "still open"})
	require.NoError(t, err)

	summary, err := svc.GetWeeklySummary(userID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TasksCreated)
	assert.Equal(t, 1, summary.TasksCompleted)
	assert.Equal(t, 50, summary.CompletionRate)
}

func TestGetProductivityTrends(t *testing.T) {
	svc, taskSvc, userID := newAnalyticsTest(t)

	_, err := taskSvc.CreateTask(CreateTaskInput{UserID: userID, Title: "today's work"})
	require.NoError(t, err)

	trends, err := svc.GetProductivityTrends(userID, 0, time.Now())
	require.NoError(t, err)
	require.Len(t, trends, 14)

	today := time.Now().Format("2006-01-02")
	assert.Equal(t, today, trends[0].Date)
	assert.Equal(t, 1, trends[0].Created)
	assert.Zero(t, trends[0].Completed)
	assert.Zero(t, trends[1].Created)
}

func TestGetStatsByPriority(t *testing.T) {
	svc, taskSvc, userID := newAnalyticsTest(t)

	high, err := taskSvc.CreateTask(CreateTaskInput{UserID: userID, Title: "pressing", Priority: models.TaskPriorityHigh})
	require.NoError(t, err)
	_, err = taskSvc.MarkComplete(userID, high.ID)
	require.NoError(t, err)
	_, err = taskSvc.CreateTask(CreateTaskInput{UserID: userID, Title: "also pressing", Priority: models.TaskPriorityHigh})
	require.NoError(t, err)
	_, err = taskSvc.CreateTask(CreateTaskInput{UserID: userID, Title: "routine"})
	require.NoError(t, err)

	deleted, err := taskSvc.CreateTask(CreateTaskInput{UserID: userID, Title: "gone", Priority: models.TaskPriorityLow})
	require.NoError(t, err)
	require.NoError(t, taskSvc.SoftDeleteTask(userID, deleted.ID))

	stats, err := svc.GetStatsByPriority(userID)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, models.TaskPriorityLow, stats[0].Priority)
	assert.Zero(t, stats[0].Total)

	assert.Equal(t, models.TaskPriorityMedium, stats[1].Priority)
	assert.Equal(t, 1, stats[1].Total)
	assert.Equal(t, 1, stats[1].Pending)

	assert.Equal(t, models.TaskPriorityHigh, stats[2].Priority)
	assert.Equal(t, 2, stats[2].Total)
	assert.Equal(t, 1, stats[2].Completed)
	assert.Equal(t, 50, stats[2].CompletionRate)
}

func TestGetStatsByProject(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "projstats")
	taskRepo := repository.NewTaskRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	svc := NewAnalyticsService(taskRepo, projectRepo)
	taskSvc := NewTaskService(taskRepo)
	projectSvc := NewProjectService(projectRepo, taskRepo)

	project, err := projectSvc.CreateProject(CreateProjectInput{UserID: user.ID, Name: "Launch"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = taskSvc.CreateTask(CreateTaskInput{UserID: user.ID, Title: "scoped", ProjectID: &project.ID})
		require.NoError(t, err)
	}
	done, err := taskSvc.CreateTask(CreateTaskInput{UserID: user.ID, Title: "scoped done", ProjectID: &project.ID})
	require.NoError(t, err)
	_, err = taskSvc.MarkComplete(user.ID, done.ID)
	require.NoError(t, err)

	_, err = taskSvc.CreateTask(CreateTaskInput{UserID: user.ID, Title: "loose"})
	require.NoError(t, err)

	stats, err := svc.GetStatsByProject(user.ID)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	// Busiest bucket first.
	require.NotNil(t, stats[0].ProjectID)
	assert.Equal(t, project.ID, *stats[0].ProjectID)
	assert.Equal(t, "Launch", stats[0].ProjectName)
	assert.Equal(t, 3, stats[0].Total)
	assert.Equal(t, 1, stats[0].Completed)
	assert.Equal(t, 33, stats[0].CompletionRate)

	assert.Nil(t, stats[1].ProjectID)
	assert.Equal(t, "No Project", stats[1].ProjectName)
	assert.Equal(t, 1, stats[1].Total)
	assert.Equal(t, 1, stats[1].Pending)
}
