package database

import (
	"gorm.io/gorm"

	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
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
	)
}
