package repository

import (
	"strings"
	"time"

	"github.com/jisort/user-task-api/internal/database"
	"github.com/jisort/user-task-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID with optional preloading
func (r *GormUserRepository) FindByID(id uint64, preload ...string) (*models.User, error) {
	var user models.User
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves users with filtering, sorting, and pagination
func (r *GormUserRepository) List(filter UserFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(username) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Role != "" {
		roleSubQuery := r.db.Table("user_roles").
			Select("1").
			Joins("JOIN roles ON roles.id = user_roles.role_id").
			Where("user_roles.user_id = users.id").
			Where("roles.name = ?", filter.Role)
		query = query.Where("EXISTS (?)", roleSubQuery)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// SortBy comes from a whitelist, never raw client input
	query = query.Order(filter.SortBy + " " + filter.SortOrder)

	var users []models.User
	if err := query.Scopes(database.Paginate(filter.Pagination)).
		Preload("Roles").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update persists all fields of a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// UpdateWithAudit persists a user and its audit entry atomically
func (r *GormUserRepository) UpdateWithAudit(user *models.User, audit *models.AuditLog) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		if audit != nil {
			if err := tx.Create(audit).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// TouchActivity updates the user's last_activity_at to now
func (r *GormUserRepository) TouchActivity(id uint64) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).
		Update("last_activity_at", time.Now()).Error
}

// RecordLogin updates last_login_at and last_activity_at to now
func (r *GormUserRepository) RecordLogin(id uint64) error {
	now := time.Now()
	return r.db.Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_login_at":    now,
			"last_activity_at": now,
		}).Error
}

// Delete soft deletes a user
func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Delete(&models.User{}, id).Error
}

// UsernameTaken reports whether another user holds the username
func (r *GormUserRepository) UsernameTaken(username string, excludeID uint64) (bool, error) {
	return r.columnTaken("username", username, excludeID)
}

// EmailTaken reports whether another user holds the email
func (r *GormUserRepository) EmailTaken(email string, excludeID uint64) (bool, error) {
	return r.columnTaken("email", email, excludeID)
}

// PhoneTaken reports whether another user holds the phone number
func (r *GormUserRepository) PhoneTaken(phone string, excludeID uint64) (bool, error) {
	return r.columnTaken("phone", phone, excludeID)
}

func (r *GormUserRepository) columnTaken(column, value string, excludeID uint64) (bool, error) {
	var count int64
	query := r.db.Model(&models.User{}).Where(column+" = ?", value)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByIDs counts how many of the given user IDs exist
func (r *GormUserRepository) CountByIDs(userIDs []uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("id IN ?", userIDs).Count(&count).Error
	return count, err
}
