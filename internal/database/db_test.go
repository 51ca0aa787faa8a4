package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/access"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/models"
)

func testIdentity() access.IdentityConfig {
	return access.IdentityConfig{
		SuperuserID:       "ffffffff-ffff-ffff-ffff-ffffffffffff",
		SystemAccountID:   "00000000-0000-0000-0000-000000000001",
		TemplateAccountID: "00000000-0000-0000-0000-000000000002",
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestOpenSQLiteInMemory(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, sqlDB.Ping())
}

func TestAutoMigrateAndSeedIsIdempotent(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	identity := testIdentity()
	require.NoError(t, AutoMigrateAndSeed(db, identity))
	require.NoError(t, AutoMigrateAndSeed(db, identity))

	var roleCount int64
	require.NoError(t, db.Model(&models.Role{}).Count(&roleCount).Error)
	require.EqualValues(t, 3, roleCount)

	var admin models.Role
	require.NoError(t, db.First(&admin, "id = ?", RoleAdminID).Error)
	require.NotNil(t, admin.ParentID)
	require.Equal(t, RoleUserID, *admin.ParentID)

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.EqualValues(t, 3, userCount)

	var superuser models.User
	require.NoError(t, db.First(&superuser, "id = ?", identity.SuperuserID).Error)
	require.Equal(t, "superuser", superuser.Username)
	require.NotEmpty(t, superuser.PasswordHash)
}
