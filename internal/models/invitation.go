package models

import "time"

// Invitation invites an email address onto the platform. It is an ordinary
// protected resource: visibility outside the creator flows entirely through
// permission grants.
type Invitation struct {
	AuditedModel

	Email  string `gorm:"not null;index" json:"email"`
	Code   string `gorm:"uniqueIndex;not null" json:"code"`
	Status string `gorm:"type:varchar(16);not null;default:pending" json:"status"`

	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// TableName overrides the default table name for GORM.
func (Invitation) TableName() string {
	return "invitations"
}
