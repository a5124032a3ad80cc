package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/repository"
)

func newTaskServiceTest(t *testing.T) (*TaskService, repository.TaskRepository, uint64) {
	t.Helper()
	db := newTestDB(t)
	user := createTestUser(t, db, "taskuser")
	repo := repository.NewTaskRepository(db)
	return NewTaskService(repo), repo, user.ID
}

func TestCreateTask_Defaults(t *testing.T) {
	svc, _, userID := newTaskServiceTest(t)

	task, err := svc.CreateTask(CreateTaskInput{UserID: userID, Title: "Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskPriorityMedium, task.Priority)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.Nil(t, task.DueDate)
}

func TestCreateTask_Validation(t *testing.T) {
	svc, _, userID := newTaskServiceTest(t)

	_, err := svc.CreateTask(CreateTaskInput{UserID: userID, Title: "   "})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = svc.CreateTask(CreateTaskInput{UserID: userID, Title: "x", Priority: "urgent"})
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestListTasks_CanonicalOrder(t *testing.T) {
	svc, _, userID := newTaskServiceTest(t)

	day1 := time.Now().Add(24 * time.Hour)
	day3 := time.Now().Add(72 * time.Hour)

	_, err := svc.CreateTask(CreateTaskInput{UserID: userID, Title: "due in three days", DueDate: &day3})
	require.NoError(t, err)
	_, err = svc.CreateTask(CreateTaskInput{UserID: userID, Title: "due tomorrow", DueDate: &day1})
	require.NoError(t, err)
	_, err = svc.CreateTask(CreateTaskInput{UserID: userID, Title: "no due date"})
	require.NoError(t, err)

	tasks, err := svc.ListTasks(ListTasksInput{UserID: userID})
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	// Dated tasks come first in ascending due order, undated ones last.
	assert.Equal(t, "due tomorrow", tasks[0].Title)
	assert.Equal(t, "due in three days", tasks[1].Title)
	assert.Equal(t, "no due date", tasks[2].Title)
}

func TestSoftDeleteAndRestore(t *testing.T) {
	svc, _, userID := newTaskServiceTest(t)

	task, err := svc.CreateTask(CreateTaskInput{UserID: userID, Title: "disposable"})
	require.NoError(t, err)

	require.NoError(t, svc.SoftDeleteTask(userID, task.ID))

	// Hidden from default listings.
	tasks, err := svc.ListTasks(ListTasksInput{UserID: userID})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	// Visible with include_deleted.
	tasks, err = svc.ListTasks(ListTasksInput{UserID: userID, IncludeDeleted: true})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	// Direct fetch still works and exposes the deletion stamp.
	fetched, err := svc.GetTask(userID, task.ID)
	require.NoError(t, err)
	assert.True(t, fetched.DeletedAt.Valid)

	restored, err := svc.RestoreTask(userID, task.ID)
	require.NoError(t, err)
	assert.False(t, restored.DeletedAt.Valid)

	tasks, err = svc.ListTasks(ListTasksInput{UserID: userID})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	// Restoring a live task is a harmless no-op.
	_, err = svc.RestoreTask(userID, task.ID)
	assert.NoError(t, err)
}

func TestOwnershipIsIndistinguishableFromMissing(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	other := createTestUser(t, db, "other")
	svc := NewTaskService(repository.NewTaskRepository(db))

	task, err := svc.CreateTask(CreateTaskInput{UserID: owner.ID, Title: "private"})
	require.NoError(t, err)

	_, err = svc.GetTask(other.ID, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = svc.GetTask(owner.ID, 99999)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestListOverdue_CompletedTaskDropsOut(t *testing.T) {
	svc, _, userID := newTaskServiceTest(t)

	past := time.Now().Add(-48 * time.Hour)
	task, err := svc.CreateTask(CreateTaskInput{UserID: userID, Title: "late", DueDate: &past})
	require.NoError(t, err)

	overdue, err := svc.ListOverdue(userID, time.Now())
	require.NoError(t, err)
	require.Len(t, overdue, 1)

	_, err = svc.MarkComplete(userID, task.ID)
	require.NoError(t, err)

	overdue, err = svc.ListOverdue(userID, time.Now())
	require.NoError(t, err)
	assert.Empty(t, overdue)
}

func TestListToday_WindowBoundaries(t *testing.T) {
	svc, _, userID := newTaskServiceTest(t)

	now := time.Now()
	today := now.Add(time.Hour)
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Add(26 * time.Hour)

	_, err := svc.CreateTask(CreateTaskInput{UserID: userID, Title: "today", DueDate: &today})
	require.NoError(t, err)
	_, err = svc.CreateTask(CreateTaskInput{UserID: userID, Title: "tomorrow", DueDate: &tomorrow})
	require.NoError(t, err)
	_, err = svc.CreateTask(CreateTaskInput{UserID: userID, Title: "undated"})
	require.NoError(t, err)

	todayTasks, err := svc.ListToday(userID, now)
	require.NoError(t, err)
	require.Len(t, todayTasks, 1)
	assert.Equal(t, "today", todayTasks[0].Title)

	upcoming, err := svc.ListUpcoming(userID, now)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "tomorrow", upcoming[0].Title)
}

func TestToggleStatus(t *testing.T) {
	svc, _, userID := newTaskServiceTest(t)

	task, err := svc.CreateTask(CreateTaskInput{UserID: userID, Title: "flip me"})
	require.NoError(t, err)

	toggled, err := svc.ToggleStatus(userID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, toggled.Status)

	toggled, err = svc.ToggleStatus(userID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, toggled.Status)
}

func TestSearchTasks_BlankQuery(t *testing.T) {
	svc, _, userID := newTaskServiceTest(t)

	_, err := svc.CreateTask(CreateTaskInput{UserID: userID, Title: "findable"})
	require.NoError(t, err)

	tasks, err := svc.SearchTasks(userID, "   ")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	tasks, err = svc.SearchTasks(userID, "find")
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestCreateSubtasks_InheritanceAndValidation(t *testing.T) {
	svc, _, userID := newTaskServiceTest(t)

	due := time.Now().Add(5 * 24 * time.Hour)
	parent, err := svc.CreateTask(CreateTaskInput{
		UserID:   userID,
		Title:    "big thing",
		DueDate:  &due,
		Priority: models.TaskPriorityHigh,
	})
	require.NoError(t, err)

	// A bad entry anywhere fails the whole batch before any insert.
	_, err = svc.CreateSubtasks(userID, parent.ID, []SubtaskInput{
		{Title: "fine"},
		{Title: " "},
	})
	assert.ErrorIs(t, err, ErrTitleRequired)

	subtasks, err := svc.ListSubtasks(userID, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, subtasks)

	ids, err := svc.CreateSubtasks(userID, parent.ID, []SubtaskInput{
		{Title: "step one"},
		{Title: "step two", Priority: models.TaskPriorityLow},
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	subtasks, err = svc.ListSubtasks(userID, parent.ID)
	require.NoError(t, err)
	require.Len(t, subtasks, 2)
	for _, sub := range subtasks {
		require.NotNil(t, sub.ParentTaskID)
		assert.Equal(t, parent.ID, *sub.ParentTaskID)
		require.NotNil(t, sub.DueDate)
	}

	// Unset priority inherits the parent's.
	first, err := svc.GetTask(userID, ids[0])
	require.NoError(t, err)
	assert.Equal(t, models.TaskPriorityHigh, first.Priority)
	second, err := svc.GetTask(userID, ids[1])
	require.NoError(t, err)
	assert.Equal(t, models.TaskPriorityLow, second.Priority)
}

func TestHardDeleteRemovesAssociations(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "harddelete")
	taskRepo := repository.NewTaskRepository(db)
	svc := NewTaskService(taskRepo)

	task, err := svc.CreateTask(CreateTaskInput{UserID: user.ID, Title: "doomed"})
	require.NoError(t, err)

	tag := &models.Tag{UserID: user.ID, Name: "keep", Color: "#fff"}
	require.NoError(t, db.Create(tag).Error)
	require.NoError(t, db.Create(&models.TaskTag{TaskID: task.ID, TagID: tag.ID}).Error)
	require.NoError(t, db.Create(&models.Reminder{
		TaskID:       task.ID,
		UserID:       user.ID,
		ReminderDate: time.Now().Add(time.Hour),
	}).Error)

	require.NoError(t, svc.HardDeleteTask(user.ID, task.ID))

	_, err = svc.GetTask(user.ID, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	var tagLinks int64
	db.Model(&models.TaskTag{}).Where("task_id = ?", task.ID).Count(&tagLinks)
	assert.Zero(t, tagLinks)

	var reminders int64
	db.Model(&models.Reminder{}).Where("task_id = ?", task.ID).Count(&reminders)
	assert.Zero(t, reminders)

	// The tag itself survives.
	var tags int64
	db.Model(&models.Tag{}).Count(&tags)
	assert.EqualValues(t, 1, tags)
}
