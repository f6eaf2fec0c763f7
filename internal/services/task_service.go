package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jisort/user-task-api/internal/models"
	"github.com/jisort/user-task-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrNotTaskOwner    = errors.New("only the task creator can perform this action")
	ErrInvalidAssignee = errors.New("one or more users do not exist")
)

const taskPreloads = "Creator,Assignees,Activities,Activities.Author"

// TaskService handles task business logic. Every mutation appends exactly
// one activity entry in the same transaction as the change itself.
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// ListForUser returns tasks the user created or is assigned to.
func (s *TaskService) ListForUser(userID uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	Progress    int
	Status      models.TaskStatus
	CreatorID   uint64
}

// CreateTask creates a task owned by the caller and logs "Task created".
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Progress:    input.Progress,
		Status:      input.Status,
		IsAssigned:  false,
		CreatedBy:   input.CreatorID,
	}
	activity := &models.Activity{
		Description: "Task created",
		CreatedBy:   input.CreatorID,
	}

	if err := s.taskRepo.CreateWithActivity(task, activity); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.reload(task.ID)
}

// UpdateTaskInput carries a partial task update; nil fields are left
// unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Progress    *int
	Status      *models.TaskStatus
}

// UpdateTask applies a partial update if the actor owns the task and logs
// "Task updated".
func (s *TaskService) UpdateTask(taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findOwned(taskID, actorID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Progress != nil {
		task.Progress = *input.Progress
	}
	if input.Status != nil {
		task.Status = *input.Status
	}

	activity := &models.Activity{
		Description: "Task updated",
		CreatedBy:   actorID,
	}
	if err := s.taskRepo.UpdateWithActivity(task, activity); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.reload(task.ID)
}

// DeleteTask soft deletes a task owned by the actor, logging "Task deleted"
// before the delete so the trail keeps a valid reference.
func (s *TaskService) DeleteTask(taskID, actorID uint64) error {
	if _, err := s.findOwned(taskID, actorID); err != nil {
		return err
	}

	activity := &models.Activity{
		Description: "Task deleted",
		CreatedBy:   actorID,
	}
	if err := s.taskRepo.DeleteWithActivity(taskID, activity); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// AssignUsers replaces the assignee set exactly with the given ids. All ids
// must reference existing users. is_assigned is recomputed and the id list
// is logged.
func (s *TaskService) AssignUsers(taskID, actorID uint64, userIDs []uint64) (*models.Task, error) {
	task, err := s.findOwned(taskID, actorID)
	if err != nil {
		return nil, err
	}

	ids := uniqueUint64(userIDs)
	if len(ids) > 0 {
		count, err := s.userRepo.CountByIDs(ids)
		if err != nil {
			return nil, fmt.Errorf("failed to verify users: %w", err)
		}
		if int(count) != len(ids) {
			return nil, ErrInvalidAssignee
		}
	}

	activity := &models.Activity{
		Description: "Task assigned to users: " + joinIDs(ids),
		CreatedBy:   actorID,
	}
	if err := s.taskRepo.ReplaceAssignees(task, ids, activity); err != nil {
		return nil, fmt.Errorf("failed to assign users: %w", err)
	}

	return s.reload(task.ID)
}

// findOwned loads a task and enforces the owner-only rule.
func (s *TaskService) findOwned(taskID, actorID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task.CreatedBy != actorID {
		return nil, ErrNotTaskOwner
	}
	return task, nil
}

func (s *TaskService) reload(taskID uint64) (*models.Task, error) {
	return s.taskRepo.FindByID(taskID, strings.Split(taskPreloads, ",")...)
}

func uniqueUint64(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func joinIDs(ids []uint64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return strings.Join(parts, ", ")
}
