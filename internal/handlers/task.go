package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jisort/user-task-api/internal/dto"
	apierrors "github.com/jisort/user-task-api/internal/errors"
	"github.com/jisort/user-task-api/internal/middleware"
	"github.com/jisort/user-task-api/internal/models"
	"github.com/jisort/user-task-api/internal/services"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// List returns tasks the caller created or is assigned to, with creator,
// assignees, and the activity trail loaded.
func (h *TaskHandler) List(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	tasks, err := h.taskService.ListForUser(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks))
}

// Create creates a new task owned by the caller.
func (h *TaskHandler) Create(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title       string `json:"title" binding:"required,max=255"`
		Description string `json:"description"`
		Progress    *int   `json:"progress" binding:"omitempty,gte=0,lte=100"`
		Status      string `json:"status" binding:"required,oneof=pending in_progress completed"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, apierrors.BindingErrors(err))
		return
	}

	progress := 0
	if req.Progress != nil {
		progress = *req.Progress
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Progress:    progress,
		Status:      models.TaskStatus(req.Status),
		CreatorID:   userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// Update applies a partial update to a task owned by the caller.
func (h *TaskHandler) Update(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	type UpdateTaskRequest struct {
		Title       *string `json:"title" binding:"omitempty,max=255"`
		Description *string `json:"description"`
		Progress    *int    `json:"progress" binding:"omitempty,gte=0,lte=100"`
		Status      *string `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, apierrors.BindingErrors(err))
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Progress:    req.Progress,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}

	task, err := h.taskService.UpdateTask(taskID, userID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// Delete removes a task owned by the caller.
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.DeleteTask(taskID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// Assign replaces the assignee set of a task owned by the caller.
func (h *TaskHandler) Assign(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	type AssignRequest struct {
		UserIDs []uint64 `json:"user_ids" binding:"required"`
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, apierrors.BindingErrors(err))
		return
	}

	task, err := h.taskService.AssignUsers(taskID, userID, req.UserIDs)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrNotTaskOwner):
		apierrors.Forbidden(c, "Unauthorized")
	case errors.Is(err, services.ErrInvalidAssignee):
		apierrors.FieldError(c, "user_ids", "One or more users do not exist")
	default:
		apierrors.InternalError(c, "")
	}
}
