package models

import "time"

// User describes platform accounts, including the well-known superuser,
// system, and template accounts seeded at migration time.
type User struct {
	AuditedModel

	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	DisplayName string `json:"display_name"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	Memberships []TeamMembership `gorm:"foreignKey:UserID" json:"memberships,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// TableName overrides the default table name for GORM.
func (User) TableName() string {
	return "users"
}
