package database

import (
	"testing"

	"github.com/jisort/user-task-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func seedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
	))
	return db
}

func TestSeed(t *testing.T) {
	db := seedDB(t)
	require.NoError(t, Seed(db))

	var permCount, roleCount, userCount int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&permCount).Error)
	require.NoError(t, db.Model(&models.Role{}).Count(&roleCount).Error)
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.Equal(t, int64(5), permCount)
	require.Equal(t, int64(2), roleCount)
	require.Equal(t, int64(2), userCount)

	var admin models.User
	require.NoError(t, db.Preload("Roles.Permissions").
		Where("email = ?", "admin@example.com").First(&admin).Error)
	require.True(t, admin.HasRole("admin"))
	require.True(t, admin.HasPermission("users.manage"))

	var regular models.User
	require.NoError(t, db.Preload("Roles.Permissions").
		Where("email = ?", "user@example.com").First(&regular).Error)
	require.True(t, regular.HasRole("user"))
	require.True(t, regular.HasPermission("users.view"))
	require.False(t, regular.HasPermission("users.delete"))
}

func TestSeedIsIdempotent(t *testing.T) {
	db := seedDB(t)
	require.NoError(t, Seed(db))
	require.NoError(t, Seed(db))

	var permCount, roleCount, userCount int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&permCount).Error)
	require.NoError(t, db.Model(&models.Role{}).Count(&roleCount).Error)
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.Equal(t, int64(5), permCount)
	require.Equal(t, int64(2), roleCount)
	require.Equal(t, int64(2), userCount)
}
