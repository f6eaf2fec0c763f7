package repository

import (
	"github.com/jisort/user-task-api/internal/models"
	"github.com/jisort/user-task-api/internal/utils"
)

// UserFilter holds filtering options for listing users
type UserFilter struct {
	Search     string
	Status     *models.UserStatus
	Role       string
	SortBy     string
	SortOrder  string
	Pagination utils.PaginationParams
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// List retrieves users with filtering, sorting, and pagination
	List(filter UserFilter) ([]models.User, int64, error)

	// Update persists all fields of a user
	Update(user *models.User) error

	// UpdateWithAudit persists a user and appends an audit log entry in the
	// same transaction. A nil audit skips the log write.
	UpdateWithAudit(user *models.User, audit *models.AuditLog) error

	// TouchActivity updates the user's last_activity_at to now
	TouchActivity(id uint64) error

	// RecordLogin updates last_login_at and last_activity_at to now
	RecordLogin(id uint64) error

	// Delete soft deletes a user
	Delete(id uint64) error

	// UsernameTaken reports whether another user holds the username
	UsernameTaken(username string, excludeID uint64) (bool, error)

	// EmailTaken reports whether another user holds the email
	EmailTaken(email string, excludeID uint64) (bool, error)

	// PhoneTaken reports whether another user holds the phone number
	PhoneTaken(phone string, excludeID uint64) (bool, error)

	// CountByIDs counts how many of the given user IDs exist
	CountByIDs(userIDs []uint64) (int64, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// ListForUser retrieves tasks the user created or is assigned to,
	// with creator, assignees, and the activity trail loaded
	ListForUser(userID uint64) ([]models.Task, error)

	// CreateWithActivity creates a task and its initial activity entry in
	// one transaction
	CreateWithActivity(task *models.Task, activity *models.Activity) error

	// UpdateWithActivity persists a task and appends an activity entry in
	// one transaction
	UpdateWithActivity(task *models.Task, activity *models.Activity) error

	// DeleteWithActivity appends an activity entry, clears assignments, and
	// soft deletes the task in one transaction
	DeleteWithActivity(taskID uint64, activity *models.Activity) error

	// ReplaceAssignees replaces the assignee set, recomputes is_assigned,
	// and appends an activity entry in one transaction
	ReplaceAssignees(task *models.Task, userIDs []uint64, activity *models.Activity) error
}

// TokenRepository defines the interface for access token data access
type TokenRepository interface {
	// Create stores a new access token
	Create(token *models.AccessToken) error

	// FindByID finds a token by ID
	FindByID(id uint64) (*models.AccessToken, error)

	// TouchLastUsed updates the token's last_used_at to now
	TouchLastUsed(id uint64) error

	// Delete removes a single token
	Delete(id uint64) error

	// DeleteForUser removes every token belonging to a user
	DeleteForUser(userID uint64) error
}
