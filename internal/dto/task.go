package dto

import (
	"time"

	"github.com/jisort/user-task-api/internal/models"
)

// ActivityDTO represents one task activity entry in API responses
type ActivityDTO struct {
	ID          uint64    `json:"id"`
	TaskID      uint64    `json:"task_id"`
	Description string    `json:"description"`
	CreatedBy   *UserDTO  `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	IsAssigned  bool              `json:"is_assigned"`
	Progress    int               `json:"progress"`
	Status      models.TaskStatus `json:"status"`
	CreatedBy   *UserDTO          `json:"created_by,omitempty"`
	AssignedTo  []UserDTO         `json:"assigned_to"`
	Activities  []ActivityDTO     `json:"activities"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TaskListResponse represents the task collection for a user
type TaskListResponse struct {
	Tasks []TaskDTO `json:"tasks"`
}

// ToActivityDTO converts an Activity model to ActivityDTO
func ToActivityDTO(activity models.Activity) ActivityDTO {
	dto := ActivityDTO{
		ID:          activity.ID,
		TaskID:      activity.TaskID,
		Description: activity.Description,
		CreatedAt:   activity.CreatedAt,
	}
	if activity.Author.ID != 0 {
		author := ToUserDTO(activity.Author)
		dto.CreatedBy = &author
	}
	return dto
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		IsAssigned:  task.IsAssigned,
		Progress:    task.Progress,
		Status:      task.Status,
		AssignedTo:  make([]UserDTO, len(task.Assignees)),
		Activities:  make([]ActivityDTO, len(task.Activities)),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if task.Creator.ID != 0 {
		creator := ToUserDTO(task.Creator)
		dto.CreatedBy = &creator
	}
	for i, assignee := range task.Assignees {
		dto.AssignedTo[i] = ToUserDTO(assignee)
	}
	for i, activity := range task.Activities {
		dto.Activities[i] = ToActivityDTO(activity)
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return TaskListResponse{Tasks: items}
}
