package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tasklight/tasklight/internal/database"
	"github.com/tasklight/tasklight/internal/dto"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/repository"
	"github.com/tasklight/tasklight/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Project{},
		&models.Category{},
		&models.Tag{},
		&models.TaskTag{},
		&models.Reminder{},
	)
	suite.Require().NoError(err)

	// Set the test DB as the default database
	database.SetDB(suite.db)

	taskRepo := repository.NewTaskRepository(suite.db)
	suite.handler = NewTaskHandler(services.NewTaskService(taskRepo))

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *TaskHandlerTestSuite) createTestUser(username string) *models.User {
	user := &models.User{
		Username:     username,
		PasswordHash: "hashedpassword",
	}
	suite.db.Create(user)
	return user
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, userID uint64) *models.Task {
	task := &models.Task{
		Title:       title,
		Description: "Test Description",
		UserID:      userID,
		Priority:    models.TaskPriorityMedium,
		Status:      models.TaskStatusPending,
	}
	suite.db.Create(task)
	return task
}

// Helper function to create authenticated context
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("user_id", userID)

	return c, w
}

func (suite *TaskHandlerTestSuite) setIDParam(c *gin.Context, id string) {
	c.Params = gin.Params{{Key: "id", Value: id}}
}

// TestCreateTask_Success tests successful task creation
func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	user := suite.createTestUser("creator")

	requestBody := map[string]interface{}{
		"title":       "New Task",
		"description": "Task Description",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response dto.TaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New Task", response.Title)
	assert.Equal(suite.T(), models.TaskPriorityMedium, response.Priority)
	assert.Equal(suite.T(), models.TaskStatusPending, response.Status)
}

// TestCreateTask_InvalidRequest tests task creation with a missing title
func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidRequest() {
	user := suite.createTestUser("creator")

	requestBody := map[string]interface{}{
		"description": "no title",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestListTasks_Unauthenticated tests that reads degrade to empty
func (suite *TaskHandlerTestSuite) TestListTasks_Unauthenticated() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/tasks", nil)
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), response["tasks"])
}

// TestListTasks_ExcludesDeleted tests the default listing scope
func (suite *TaskHandlerTestSuite) TestListTasks_ExcludesDeleted() {
	user := suite.createTestUser("lister")
	suite.createTestTask("visible", user.ID)
	deleted := suite.createTestTask("hidden", user.ID)
	suite.db.Delete(deleted)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user.ID)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Tasks []dto.TaskDTO `json:"tasks"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response.Tasks, 1)
	assert.Equal(suite.T(), "visible", response.Tasks[0].Title)

	// include_deleted brings the hidden one back.
	c, w = suite.createAuthContext("GET", "/api/tasks", nil, user.ID)
	c.Request.URL.RawQuery = "include_deleted=true"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response.Tasks, 2)
}

// TestListTasks_Pagination tests page/limit handling and count metadata
func (suite *TaskHandlerTestSuite) TestListTasks_Pagination() {
	user := suite.createTestUser("pager")
	for i := 0; i < 5; i++ {
		suite.createTestTask("task", user.ID)
	}

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user.ID)
	c.Request.URL.RawQuery = "page=2&limit=2"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskListResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response.Tasks, 2)
	assert.Equal(suite.T(), 2, response.Page)
	assert.Equal(suite.T(), 2, response.PageSize)
	assert.EqualValues(suite.T(), 5, response.TotalCount)
	assert.Equal(suite.T(), 3, response.TotalPages)
}

// TestGetTask_SoftDeletedStillReadable tests fetching a soft-deleted task
func (suite *TaskHandlerTestSuite) TestGetTask_SoftDeletedStillReadable() {
	user := suite.createTestUser("reader")
	task := suite.createTestTask("lingering", user.ID)
	suite.db.Delete(task)

	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, user.ID)
	suite.setIDParam(c, "1")

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "lingering", response.Title)
	assert.NotNil(suite.T(), response.DeletedAt)
}

// TestGetTask_OtherUsersTask tests that ownership reads as not found
func (suite *TaskHandlerTestSuite) TestGetTask_OtherUsersTask() {
	owner := suite.createTestUser("owner")
	intruder := suite.createTestUser("intruder")
	suite.createTestTask("private", owner.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, intruder.ID)
	suite.setIDParam(c, "1")

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestUpdateTask_NullDueDate tests clearing the due date with null
func (suite *TaskHandlerTestSuite) TestUpdateTask_NullDueDate() {
	user := suite.createTestUser("updater")
	task := suite.createTestTask("dated", user.ID)
	dueDate := time.Now().Add(24 * time.Hour)
	task.DueDate = &dueDate
	suite.db.Save(task)

	body := []byte(`{"due_date": null}`)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, user.ID)
	suite.setIDParam(c, "1")

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), response.DueDate)
}

// TestUpdateTask_InvalidStatus tests rejection of unknown status values
func (suite *TaskHandlerTestSuite) TestUpdateTask_InvalidStatus() {
	user := suite.createTestUser("updater")
	suite.createTestTask("stable", user.ID)

	body := []byte(`{"status": "paused"}`)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, user.ID)
	suite.setIDParam(c, "1")

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateTask_WrongFieldTypes tests rejection of type-mismatched fields
func (suite *TaskHandlerTestSuite) TestUpdateTask_WrongFieldTypes() {
	user := suite.createTestUser("updater")
	suite.createTestTask("typed", user.ID)

	bodies := [][]byte{
		[]byte(`{"priority": 5}`),
		[]byte(`{"title": 42}`),
		[]byte(`{"due_date": 1234567890}`),
		[]byte(`{"project_id": "abc"}`),
		[]byte(`{"notified": false, "status": true}`),
	}

	for _, body := range bodies {
		c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, user.ID)
		suite.setIDParam(c, "1")

		suite.handler.UpdateTask(c)

		assert.Equal(suite.T(), http.StatusBadRequest, w.Code, string(body))
	}

	// The task is untouched after every rejected patch.
	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, user.ID)
	suite.setIDParam(c, "1")
	suite.handler.GetTask(c)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "typed", response.Title)
	assert.Equal(suite.T(), models.TaskPriorityMedium, response.Priority)
}

// TestDeleteAndRestoreTask tests the soft delete round trip
func (suite *TaskHandlerTestSuite) TestDeleteAndRestoreTask() {
	user := suite.createTestUser("deleter")
	task := suite.createTestTask("recyclable", user.ID)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, user.ID)
	suite.setIDParam(c, "1")

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	// Default-scope fetch no longer sees it.
	var gone models.Task
	err := suite.db.First(&gone, task.ID).Error
	assert.Error(suite.T(), err)

	c, w = suite.createAuthContext("POST", "/api/tasks/1/restore", nil, user.ID)
	suite.setIDParam(c, "1")

	suite.handler.RestoreTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var back models.Task
	err = suite.db.First(&back, task.ID).Error
	assert.NoError(suite.T(), err)
}

// TestHardDeleteTask tests permanent removal
func (suite *TaskHandlerTestSuite) TestHardDeleteTask() {
	user := suite.createTestUser("purger")
	task := suite.createTestTask("unrecoverable", user.ID)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1/permanent", nil, user.ID)
	suite.setIDParam(c, "1")

	suite.handler.HardDeleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var count int64
	suite.db.Unscoped().Model(&models.Task{}).Where("id = ?", task.ID).Count(&count)
	assert.Zero(suite.T(), count)
}

// TestToggleTask tests flipping the status twice
func (suite *TaskHandlerTestSuite) TestToggleTask() {
	user := suite.createTestUser("toggler")
	suite.createTestTask("flippable", user.ID)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/toggle", nil, user.ID)
	suite.setIDParam(c, "1")

	suite.handler.ToggleTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.TaskStatusCompleted, response.Status)
}

// TestCreateSubtasks tests the batch endpoint
func (suite *TaskHandlerTestSuite) TestCreateSubtasks() {
	user := suite.createTestUser("parent")
	suite.createTestTask("umbrella", user.ID)

	requestBody := map[string]interface{}{
		"subtasks": []map[string]interface{}{
			{"title": "first step"},
			{"title": "second step", "priority": "high"},
		},
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/subtasks", body, user.ID)
	suite.setIDParam(c, "1")

	suite.handler.CreateSubtasks(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response struct {
		CreatedIDs []uint64 `json:"created_ids"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response.CreatedIDs, 2)

	var count int64
	suite.db.Model(&models.Task{}).Where("parent_task_id = ?", 1).Count(&count)
	assert.EqualValues(suite.T(), 2, count)
}

// TestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
