package repository

import (
	"github.com/jisort/user-task-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db
	for _, p := range preload {
		if p == "Activities" {
			query = query.Preload(p, activityOrder)
			continue
		}
		query = query.Preload(p)
	}
	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListForUser retrieves tasks the user created or is assigned to
func (r *GormTaskRepository) ListForUser(userID uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Preload("Creator").
		Preload("Assignees").
		Preload("Activities", activityOrder).
		Preload("Activities.Author").
		Where(
			"tasks.created_by = ? OR EXISTS (SELECT 1 FROM task_user WHERE task_user.task_id = tasks.id AND task_user.user_id = ?)",
			userID, userID,
		).
		Order("tasks.created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateWithActivity creates a task and its initial activity atomically
func (r *GormTaskRepository) CreateWithActivity(task *models.Task, activity *models.Activity) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		activity.TaskID = task.ID
		return tx.Create(activity).Error
	})
}

// UpdateWithActivity persists a task and appends an activity atomically
func (r *GormTaskRepository) UpdateWithActivity(task *models.Task, activity *models.Activity) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}
		activity.TaskID = task.ID
		return tx.Create(activity).Error
	})
}

// DeleteWithActivity appends the deletion activity before soft deleting the
// task, so the trail keeps a valid task reference.
func (r *GormTaskRepository) DeleteWithActivity(taskID uint64, activity *models.Activity) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		activity.TaskID = taskID
		if err := tx.Create(activity).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM task_user WHERE task_id = ?", taskID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, taskID).Error
	})
}

// ReplaceAssignees replaces the assignee set exactly, recomputes is_assigned,
// and appends the activity entry atomically
func (r *GormTaskRepository) ReplaceAssignees(task *models.Task, userIDs []uint64, activity *models.Activity) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		assignees := make([]models.User, len(userIDs))
		for i, id := range userIDs {
			assignees[i] = models.User{ID: id}
		}
		if err := tx.Model(task).Association("Assignees").Replace(assignees); err != nil {
			return err
		}

		task.IsAssigned = len(userIDs) > 0
		if err := tx.Model(task).Update("is_assigned", task.IsAssigned).Error; err != nil {
			return err
		}

		activity.TaskID = task.ID
		return tx.Create(activity).Error
	})
}

func activityOrder(db *gorm.DB) *gorm.DB {
	return db.Order("activities.created_at ASC, activities.id ASC")
}
