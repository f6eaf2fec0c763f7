package database

import (
	"fmt"
	"log"
	"time"

	"github.com/jisort/user-task-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var defaultPermissions = []string{
	"users.view",
	"users.create",
	"users.update",
	"users.delete",
	"users.manage",
}

// Seed creates the default roles, permissions, and bootstrap accounts.
// Every write is idempotent so the seeder can run on each boot.
func Seed(db *gorm.DB) error {
	perms := make(map[string]models.Permission, len(defaultPermissions))
	for _, name := range defaultPermissions {
		var perm models.Permission
		if err := db.Where(models.Permission{Name: name}).FirstOrCreate(&perm).Error; err != nil {
			return fmt.Errorf("failed to seed permission %s: %w", name, err)
		}
		perms[name] = perm
	}

	adminRole, err := seedRole(db, "admin", defaultPermissions, perms)
	if err != nil {
		return err
	}
	userRole, err := seedRole(db, "user", []string{"users.view"}, perms)
	if err != nil {
		return err
	}

	if err := seedUser(db, "admin@example.com", "Admin", "User", "admin", adminRole); err != nil {
		return err
	}
	if err := seedUser(db, "user@example.com", "Regular", "User", "user", userRole); err != nil {
		return err
	}

	log.Println("Database seeded")
	return nil
}

func seedRole(db *gorm.DB, name string, permNames []string, perms map[string]models.Permission) (*models.Role, error) {
	var role models.Role
	if err := db.Where(models.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
		return nil, fmt.Errorf("failed to seed role %s: %w", name, err)
	}

	grant := make([]models.Permission, 0, len(permNames))
	for _, pn := range permNames {
		grant = append(grant, perms[pn])
	}
	if err := db.Model(&role).Association("Permissions").Replace(grant); err != nil {
		return nil, fmt.Errorf("failed to grant permissions to %s: %w", name, err)
	}

	return &role, nil
}

func seedUser(db *gorm.DB, email, firstName, lastName, username string, role *models.Role) error {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now()
	user := models.User{
		FirstName:       firstName,
		LastName:        lastName,
		Username:        username,
		Email:           email,
		PasswordHash:    string(hash),
		Status:          models.UserStatusActive,
		EmailVerifiedAt: &now,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to seed user %s: %w", email, err)
	}

	return db.Model(&user).Association("Roles").Append(role)
}
