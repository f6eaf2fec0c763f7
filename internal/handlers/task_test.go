package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jisort/user-task-api/internal/models"
	"github.com/stretchr/testify/suite"
)

type TaskHandlerTestSuite struct {
	suite.Suite
	env   *testEnv
	owner *models.User
	token string
}

func (s *TaskHandlerTestSuite) SetupTest() {
	s.env = newTestEnv(&s.Suite, s.T().TempDir())
	s.owner = s.env.createUser(&s.Suite, "owner", "owner@example.com")
	s.token = s.env.tokenFor(&s.Suite, s.owner.ID)
}

func (s *TaskHandlerTestSuite) TearDownTest() {
	s.env.close()
}

// createTask inserts a task directly, bypassing the handler.
func (s *TaskHandlerTestSuite) createTask(creatorID uint64, title string) *models.Task {
	task := &models.Task{
		Title:     title,
		Status:    models.TaskStatusPending,
		CreatedBy: creatorID,
	}
	s.Require().NoError(s.env.db.Create(task).Error)
	return task
}

func (s *TaskHandlerTestSuite) activities(taskID uint64) []models.Activity {
	var activities []models.Activity
	s.Require().NoError(s.env.db.Where("task_id = ?", taskID).
		Order("created_at ASC, id ASC").Find(&activities).Error)
	return activities
}

func (s *TaskHandlerTestSuite) TestCreate() {
	w := s.env.request("POST", "/tasks/create", s.token, gin.H{
		"title":       "Write report",
		"description": "Quarterly numbers",
		"status":      "pending",
	})

	s.Equal(http.StatusCreated, w.Code)
	body := decodeBody(w)
	s.Equal("Write report", body["title"])
	s.Equal(float64(0), body["progress"])
	s.Equal(false, body["is_assigned"])

	var task models.Task
	s.NoError(s.env.db.Where("title = ?", "Write report").First(&task).Error)
	s.Equal(s.owner.ID, task.CreatedBy)

	activities := s.activities(task.ID)
	s.Require().Len(activities, 1)
	s.Equal("Task created", activities[0].Description)
	s.Equal(s.owner.ID, activities[0].CreatedBy)
}

func (s *TaskHandlerTestSuite) TestCreateRequiresStatus() {
	w := s.env.request("POST", "/tasks/create", s.token, gin.H{
		"title": "Write report",
	})

	s.Equal(http.StatusUnprocessableEntity, w.Code)
	body := decodeBody(w)
	fields := body["errors"].(map[string]interface{})
	s.Contains(fields, "status")
}

func (s *TaskHandlerTestSuite) TestCreateRejectsProgressOutOfRange() {
	w := s.env.request("POST", "/tasks/create", s.token, gin.H{
		"title":    "Write report",
		"status":   "pending",
		"progress": 150,
	})

	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *TaskHandlerTestSuite) TestUpdate() {
	task := s.createTask(s.owner.ID, "Draft")

	w := s.env.request("PUT", fmt.Sprintf("/tasks/%d", task.ID), s.token, gin.H{
		"progress": 40,
		"status":   "in_progress",
	})

	s.Equal(http.StatusOK, w.Code)
	body := decodeBody(w)
	s.Equal("Draft", body["title"])
	s.Equal(float64(40), body["progress"])
	s.Equal("in_progress", body["status"])

	activities := s.activities(task.ID)
	s.Require().Len(activities, 1)
	s.Equal("Task updated", activities[0].Description)
}

func (s *TaskHandlerTestSuite) TestUpdateByNonOwner() {
	task := s.createTask(s.owner.ID, "Draft")

	other := s.env.createUser(&s.Suite, "other", "other@example.com")
	otherToken := s.env.tokenFor(&s.Suite, other.ID)

	w := s.env.request("PUT", fmt.Sprintf("/tasks/%d", task.ID), otherToken, gin.H{
		"title": "Hijacked",
	})

	s.Equal(http.StatusForbidden, w.Code)

	// the task is untouched
	var fresh models.Task
	s.NoError(s.env.db.First(&fresh, task.ID).Error)
	s.Equal("Draft", fresh.Title)
	s.Empty(s.activities(task.ID))
}

func (s *TaskHandlerTestSuite) TestUpdateMissingTask() {
	w := s.env.request("PUT", "/tasks/9999", s.token, gin.H{
		"title": "Ghost",
	})
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *TaskHandlerTestSuite) TestAssign() {
	task := s.createTask(s.owner.ID, "Draft")
	alice := s.env.createUser(&s.Suite, "alice", "alice@example.com")
	bob := s.env.createUser(&s.Suite, "bob", "bob@example.com")

	w := s.env.request("POST", fmt.Sprintf("/tasks/%d/assign", task.ID), s.token, gin.H{
		"user_ids": []uint64{alice.ID, bob.ID},
	})

	s.Equal(http.StatusOK, w.Code)
	body := decodeBody(w)
	s.Equal(true, body["is_assigned"])
	s.Len(body["assigned_to"].([]interface{}), 2)

	activities := s.activities(task.ID)
	s.Require().Len(activities, 1)
	s.Equal(fmt.Sprintf("Task assigned to users: %d, %d", alice.ID, bob.ID), activities[0].Description)
}

func (s *TaskHandlerTestSuite) TestAssignEmptyListClearsAssignees() {
	task := s.createTask(s.owner.ID, "Draft")
	alice := s.env.createUser(&s.Suite, "alice", "alice@example.com")

	w := s.env.request("POST", fmt.Sprintf("/tasks/%d/assign", task.ID), s.token, gin.H{
		"user_ids": []uint64{alice.ID},
	})
	s.Equal(http.StatusOK, w.Code)

	w = s.env.request("POST", fmt.Sprintf("/tasks/%d/assign", task.ID), s.token, gin.H{
		"user_ids": []uint64{},
	})
	s.Equal(http.StatusOK, w.Code)
	body := decodeBody(w)
	s.Equal(false, body["is_assigned"])
	s.Empty(body["assigned_to"])

	activities := s.activities(task.ID)
	s.Len(activities, 2)
}

func (s *TaskHandlerTestSuite) TestAssignUnknownUser() {
	task := s.createTask(s.owner.ID, "Draft")

	w := s.env.request("POST", fmt.Sprintf("/tasks/%d/assign", task.ID), s.token, gin.H{
		"user_ids": []uint64{9999},
	})

	s.Equal(http.StatusUnprocessableEntity, w.Code)
	body := decodeBody(w)
	fields := body["errors"].(map[string]interface{})
	s.Contains(fields, "user_ids")
}

func (s *TaskHandlerTestSuite) TestDelete() {
	task := s.createTask(s.owner.ID, "Draft")

	w := s.env.request("DELETE", fmt.Sprintf("/tasks/%d", task.ID), s.token, nil)
	s.Equal(http.StatusOK, w.Code)

	// soft deleted, invisible to default queries
	var count int64
	s.NoError(s.env.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count).Error)
	s.Zero(count)
	s.NoError(s.env.db.Unscoped().Model(&models.Task{}).Where("id = ?", task.ID).Count(&count).Error)
	s.Equal(int64(1), count)

	// the activity trail records the deletion and survives it
	activities := s.activities(task.ID)
	s.Require().Len(activities, 1)
	s.Equal("Task deleted", activities[0].Description)
}

func (s *TaskHandlerTestSuite) TestDeleteByNonOwner() {
	task := s.createTask(s.owner.ID, "Draft")
	other := s.env.createUser(&s.Suite, "other", "other@example.com")
	otherToken := s.env.tokenFor(&s.Suite, other.ID)

	w := s.env.request("DELETE", fmt.Sprintf("/tasks/%d", task.ID), otherToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	var count int64
	s.NoError(s.env.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *TaskHandlerTestSuite) TestListReturnsOwnedAndAssigned() {
	s.createTask(s.owner.ID, "Owned")

	other := s.env.createUser(&s.Suite, "other", "other@example.com")
	otherToken := s.env.tokenFor(&s.Suite, other.ID)
	assigned := s.createTask(other.ID, "Assigned to me")
	s.createTask(other.ID, "Unrelated")

	w := s.env.request("POST", fmt.Sprintf("/tasks/%d/assign", assigned.ID), otherToken, gin.H{
		"user_ids": []uint64{s.owner.ID},
	})
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.env.request("GET", "/tasks", s.token, nil)
	s.Equal(http.StatusOK, w.Code)

	body := decodeBody(w)
	tasks := body["tasks"].([]interface{})
	s.Require().Len(tasks, 2)

	titles := make(map[string]bool)
	for _, raw := range tasks {
		titles[raw.(map[string]interface{})["title"].(string)] = true
	}
	s.True(titles["Owned"])
	s.True(titles["Assigned to me"])
}

func (s *TaskHandlerTestSuite) TestListIncludesActivityTrailInOrder() {
	w := s.env.request("POST", "/tasks/create", s.token, gin.H{
		"title":  "Tracked",
		"status": "pending",
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	taskID := uint64(decodeBody(w)["id"].(float64))

	w = s.env.request("PUT", fmt.Sprintf("/tasks/%d", taskID), s.token, gin.H{
		"status": "completed",
	})
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.env.request("GET", "/tasks", s.token, nil)
	s.Equal(http.StatusOK, w.Code)

	body := decodeBody(w)
	tasks := body["tasks"].([]interface{})
	s.Require().Len(tasks, 1)

	activities := tasks[0].(map[string]interface{})["activities"].([]interface{})
	s.Require().Len(activities, 2)
	s.Equal("Task created", activities[0].(map[string]interface{})["description"])
	s.Equal("Task updated", activities[1].(map[string]interface{})["description"])
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
