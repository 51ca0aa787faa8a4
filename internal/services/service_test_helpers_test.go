package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/access"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/models"
)

const (
	testSuperuserID = "ffffffff-ffff-ffff-ffff-ffffffffffff"
	testSystemID    = "00000000-0000-0000-0000-000000000001"
	testTemplateID  = "00000000-0000-0000-0000-000000000002"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMembership{},
		&models.Role{},
		&models.PermissionGrant{},
		&models.Invitation{},
		&models.Rotation{},
		&models.ProviderInstance{},
		&models.RotationProvider{},
		&models.AccessAuditEntry{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func newServiceTestResolver(t *testing.T, db *gorm.DB) *access.Resolver {
	t.Helper()

	resolver, err := access.NewResolver(db, access.IdentityConfig{
		SuperuserID:       testSuperuserID,
		SystemAccountID:   testSystemID,
		TemplateAccountID: testTemplateID,
	}, nil)
	require.NoError(t, err)
	return resolver
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestInvitation(t *testing.T, db *gorm.DB, creatorID, code string) *models.Invitation {
	t.Helper()

	inv := &models.Invitation{
		AuditedModel: models.AuditedModel{CreatedByUserID: creatorID},
		Email:        code + "@example.com",
		Code:         code,
		Status:       "pending",
	}
	require.NoError(t, db.Create(inv).Error)
	return inv
}
