package database

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/access"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/models"
)

// Well-known role ids seeded on first start. The parent pointer runs from the
// more privileged role to the less privileged one.
const (
	RoleUserID       = "role-user"
	RoleAdminID      = "role-admin"
	RoleSuperadminID = "role-superadmin"
)

// SeedData populates the role chain and the well-known accounts. It is
// idempotent: existing rows are left untouched.
func SeedData(db *gorm.DB, identity access.IdentityConfig) error {
	if err := identity.Validate(); err != nil {
		return err
	}

	userRoleID := RoleUserID
	adminRoleID := RoleAdminID

	roles := []models.Role{
		{
			BaseModel:   models.BaseModel{ID: RoleUserID},
			Name:        "user",
			Description: "Standard user access",
		},
		{
			BaseModel:   models.BaseModel{ID: RoleAdminID},
			Name:        "admin",
			Description: "Administrative access",
			ParentID:    &userRoleID,
		},
		{
			BaseModel:   models.BaseModel{ID: RoleSuperadminID},
			Name:        "superadmin",
			Description: "Unrestricted access",
			ParentID:    &adminRoleID,
		},
	}

	for _, role := range roles {
		if err := db.Where(models.Role{BaseModel: models.BaseModel{ID: role.ID}}).Attrs(role).FirstOrCreate(&models.Role{}).Error; err != nil {
			return err
		}
	}

	accounts := []models.User{
		{
			AuditedModel: models.AuditedModel{BaseModel: models.BaseModel{ID: identity.SuperuserID}},
			Username:     "superuser",
			Email:        "superuser@localhost",
			DisplayName:  "Superuser",
			IsActive:     true,
		},
		{
			AuditedModel: models.AuditedModel{BaseModel: models.BaseModel{ID: identity.SystemAccountID}},
			Username:     "system",
			Email:        "system@localhost",
			DisplayName:  "System Account",
			IsActive:     false,
		},
		{
			AuditedModel: models.AuditedModel{BaseModel: models.BaseModel{ID: identity.TemplateAccountID}},
			Username:     "template",
			Email:        "template@localhost",
			DisplayName:  "Template Account",
			IsActive:     false,
		},
	}

	for _, account := range accounts {
		hash, err := randomPasswordHash()
		if err != nil {
			return err
		}
		account.PasswordHash = hash

		if err := db.Where(models.User{AuditedModel: models.AuditedModel{BaseModel: models.BaseModel{ID: account.ID}}}).
			Attrs(account).
			FirstOrCreate(&models.User{}).Error; err != nil {
			return err
		}
	}

	return nil
}

// randomPasswordHash produces an unguessable credential for the seeded
// accounts. They are not meant to be logged into until an operator rotates
// the password.
func randomPasswordHash() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("seed: generate password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(raw)), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("seed: hash password: %w", err)
	}
	return string(hash), nil
}
