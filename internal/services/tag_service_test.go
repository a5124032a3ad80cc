package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/repository"
	"gorm.io/gorm"
)

type tagTestEnv struct {
	db      *gorm.DB
	svc     *TagService
	taskSvc *TaskService
	userID  uint64
}

func newTagTestEnv(t *testing.T) tagTestEnv {
	t.Helper()
	db := newTestDB(t)
	user := createTestUser(t, db, "taguser")
	taskRepo := repository.NewTaskRepository(db)
	return tagTestEnv{
		db:      db,
		svc:     NewTagService(repository.NewTagRepository(db), taskRepo),
		taskSvc: NewTaskService(taskRepo),
		userID:  user.ID,
	}
}

func TestAddTagToTask_Idempotent(t *testing.T) {
	env := newTagTestEnv(t)

	task, err := env.taskSvc.CreateTask(CreateTaskInput{UserID: env.userID, Title: "tagged"})
	require.NoError(t, err)
	tag, err := env.svc.CreateTag(CreateTagInput{UserID: env.userID, Name: "home"})
	require.NoError(t, err)

	require.NoError(t, env.svc.AddTagToTask(env.userID, task.ID, tag.ID))
	// Attaching again is a silent no-op, not a duplicate row.
	require.NoError(t, env.svc.AddTagToTask(env.userID, task.ID, tag.ID))

	var count int64
	env.db.Model(&models.TaskTag{}).Where("task_id = ?", task.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestRemoveTagFromTask_AbsentPairIsNoop(t *testing.T) {
	env := newTagTestEnv(t)

	task, err := env.taskSvc.CreateTask(CreateTaskInput{UserID: env.userID, Title: "untagged"})
	require.NoError(t, err)
	tag, err := env.svc.CreateTag(CreateTagInput{UserID: env.userID, Name: "loose"})
	require.NoError(t, err)

	assert.NoError(t, env.svc.RemoveTagFromTask(env.userID, task.ID, tag.ID))
}

func TestDeleteTag_RemovesAssociationsKeepsTasks(t *testing.T) {
	env := newTagTestEnv(t)

	task, err := env.taskSvc.CreateTask(CreateTaskInput{UserID: env.userID, Title: "keeper"})
	require.NoError(t, err)
	tag, err := env.svc.CreateTag(CreateTagInput{UserID: env.userID, Name: "doomed"})
	require.NoError(t, err)
	require.NoError(t, env.svc.AddTagToTask(env.userID, task.ID, tag.ID))

	require.NoError(t, env.svc.DeleteTag(env.userID, tag.ID))

	var count int64
	env.db.Model(&models.TaskTag{}).Where("tag_id = ?", tag.ID).Count(&count)
	assert.Zero(t, count)

	_, err = env.taskSvc.GetTask(env.userID, task.ID)
	assert.NoError(t, err)
}

func TestTagStats_CountsLiveTasksOnly(t *testing.T) {
	env := newTagTestEnv(t)

	tag, err := env.svc.CreateTag(CreateTagInput{UserID: env.userID, Name: "counted"})
	require.NoError(t, err)

	live, err := env.taskSvc.CreateTask(CreateTaskInput{UserID: env.userID, Title: "live"})
	require.NoError(t, err)
	deleted, err := env.taskSvc.CreateTask(CreateTaskInput{UserID: env.userID, Title: "deleted"})
	require.NoError(t, err)

	require.NoError(t, env.svc.AddTagToTask(env.userID, live.ID, tag.ID))
	require.NoError(t, env.svc.AddTagToTask(env.userID, deleted.ID, tag.ID))
	require.NoError(t, env.taskSvc.SoftDeleteTask(env.userID, deleted.ID))

	stats, err := env.svc.ListTagsWithStats(env.userID)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.EqualValues(t, 1, stats[0].TaskCount)

	tasks, err := env.svc.ListTasksForTag(env.userID, tag.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, live.ID, tasks[0].ID)
}

func TestAddTagToTask_ChecksBothSides(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "tagowner")
	stranger := createTestUser(t, db, "stranger")
	taskRepo := repository.NewTaskRepository(db)
	svc := NewTagService(repository.NewTagRepository(db), taskRepo)
	taskSvc := NewTaskService(taskRepo)

	task, err := taskSvc.CreateTask(CreateTaskInput{UserID: owner.ID, Title: "mine"})
	require.NoError(t, err)
	tag, err := svc.CreateTag(CreateTagInput{UserID: stranger.ID, Name: "theirs"})
	require.NoError(t, err)

	err = svc.AddTagToTask(owner.ID, task.ID, tag.ID)
	assert.ErrorIs(t, err, ErrTagNotFound)
}
