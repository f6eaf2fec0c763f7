package repository

import (
	"time"

	"github.com/jisort/user-task-api/internal/models"
	"gorm.io/gorm"
)

// GormTokenRepository is a GORM implementation of TokenRepository
type GormTokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &GormTokenRepository{db: db}
}

// Create stores a new access token
func (r *GormTokenRepository) Create(token *models.AccessToken) error {
	return r.db.Create(token).Error
}

// FindByID finds a token by ID
func (r *GormTokenRepository) FindByID(id uint64) (*models.AccessToken, error) {
	var token models.AccessToken
	if err := r.db.First(&token, id).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// TouchLastUsed updates the token's last_used_at to now
func (r *GormTokenRepository) TouchLastUsed(id uint64) error {
	return r.db.Model(&models.AccessToken{}).Where("id = ?", id).
		Update("last_used_at", time.Now()).Error
}

// Delete removes a single token
func (r *GormTokenRepository) Delete(id uint64) error {
	return r.db.Delete(&models.AccessToken{}, id).Error
}

// DeleteForUser removes every token belonging to a user
func (r *GormTokenRepository) DeleteForUser(userID uint64) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.AccessToken{}).Error
}
