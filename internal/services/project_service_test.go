package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasklight/tasklight/internal/constants"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/repository"
	"gorm.io/gorm"
)

type projectTestEnv struct {
	db      *gorm.DB
	svc     *ProjectService
	taskSvc *TaskService
	userID  uint64
}

func newProjectTestEnv(t *testing.T) projectTestEnv {
	t.Helper()
	db := newTestDB(t)
	user := createTestUser(t, db, "projectuser")
	taskRepo := repository.NewTaskRepository(db)
	return projectTestEnv{
		db:      db,
		svc:     NewProjectService(repository.NewProjectRepository(db), taskRepo),
		taskSvc: NewTaskService(taskRepo),
		userID:  user.ID,
	}
}

func TestCreateProject_DefaultColor(t *testing.T) {
	env := newProjectTestEnv(t)

	project, err := env.svc.CreateProject(CreateProjectInput{UserID: env.userID, Name: "Home"})
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultProjectColor, project.Color)

	_, err = env.svc.CreateProject(CreateProjectInput{UserID: env.userID, Name: " "})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestProjectStats_CountsLiveTasksOnly(t *testing.T) {
	env := newProjectTestEnv(t)

	project, err := env.svc.CreateProject(CreateProjectInput{UserID: env.userID, Name: "Work"})
	require.NoError(t, err)

	open, err := env.taskSvc.CreateTask(CreateTaskInput{UserID: env.userID, Title: "open", ProjectID: &project.ID})
	require.NoError(t, err)
	done, err := env.taskSvc.CreateTask(CreateTaskInput{UserID: env.userID, Title: "done", ProjectID: &project.ID})
	require.NoError(t, err)
	_, err = env.taskSvc.MarkComplete(env.userID, done.ID)
	require.NoError(t, err)

	removed, err := env.taskSvc.CreateTask(CreateTaskInput{UserID: env.userID, Title: "removed", ProjectID: &project.ID})
	require.NoError(t, err)
	require.NoError(t, env.taskSvc.SoftDeleteTask(env.userID, removed.ID))

	stats, err := env.svc.GetProjectWithStats(env.userID, project.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TaskCount)
	assert.EqualValues(t, 1, stats.CompletedCount)
	assert.EqualValues(t, 1, stats.PendingCount)
	_ = open
}

func TestDeleteProject_Detach(t *testing.T) {
	env := newProjectTestEnv(t)

	project, err := env.svc.CreateProject(CreateProjectInput{UserID: env.userID, Name: "Detach"})
	require.NoError(t, err)

	task, err := env.taskSvc.CreateTask(CreateTaskInput{UserID: env.userID, Title: "survivor", ProjectID: &project.ID})
	require.NoError(t, err)

	// Soft-deleted tasks are detached too, so a later restore does not
	// resurrect a dangling project reference.
	ghost, err := env.taskSvc.CreateTask(CreateTaskInput{UserID: env.userID, Title: "ghost", ProjectID: &project.ID})
	require.NoError(t, err)
	require.NoError(t, env.taskSvc.SoftDeleteTask(env.userID, ghost.ID))

	require.NoError(t, env.svc.DeleteProject(env.userID, project.ID, false))

	_, err = env.svc.GetProject(env.userID, project.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	kept, err := env.taskSvc.GetTask(env.userID, task.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.ProjectID)

	restored, err := env.taskSvc.RestoreTask(env.userID, ghost.ID)
	require.NoError(t, err)
	assert.Nil(t, restored.ProjectID)
}

func TestDeleteProject_Cascade(t *testing.T) {
	env := newProjectTestEnv(t)

	project, err := env.svc.CreateProject(CreateProjectInput{UserID: env.userID, Name: "Cascade"})
	require.NoError(t, err)

	task, err := env.taskSvc.CreateTask(CreateTaskInput{UserID: env.userID, Title: "doomed", ProjectID: &project.ID})
	require.NoError(t, err)
	outside, err := env.taskSvc.CreateTask(CreateTaskInput{UserID: env.userID, Title: "outside"})
	require.NoError(t, err)

	tag := &models.Tag{UserID: env.userID, Name: "label", Color: "#fff"}
	require.NoError(t, env.db.Create(tag).Error)
	require.NoError(t, env.db.Create(&models.TaskTag{TaskID: task.ID, TagID: tag.ID}).Error)
	require.NoError(t, env.db.Create(&models.Reminder{
		TaskID:       task.ID,
		UserID:       env.userID,
		ReminderDate: time.Now().Add(time.Hour),
	}).Error)

	require.NoError(t, env.svc.DeleteProject(env.userID, project.ID, true))

	_, err = env.taskSvc.GetTask(env.userID, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	var count int64
	env.db.Model(&models.TaskTag{}).Where("task_id = ?", task.ID).Count(&count)
	assert.Zero(t, count)
	env.db.Model(&models.Reminder{}).Where("task_id = ?", task.ID).Count(&count)
	assert.Zero(t, count)

	// Tasks outside the project are untouched.
	_, err = env.taskSvc.GetTask(env.userID, outside.ID)
	assert.NoError(t, err)
}

func TestDeleteCategory_AlwaysDetaches(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "categoryuser")
	taskRepo := repository.NewTaskRepository(db)
	catSvc := NewCategoryService(repository.NewCategoryRepository(db), taskRepo)
	taskSvc := NewTaskService(taskRepo)

	category, err := catSvc.CreateCategory(CreateCategoryInput{UserID: user.ID, Name: "Errands"})
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultCategoryColor, category.Color)

	task, err := taskSvc.CreateTask(CreateTaskInput{UserID: user.ID, Title: "errand", CategoryID: &category.ID})
	require.NoError(t, err)

	require.NoError(t, catSvc.DeleteCategory(user.ID, category.ID))

	kept, err := taskSvc.GetTask(user.ID, task.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.CategoryID)
}
