package models

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrGrantPrincipalInvalid is returned when a grant does not address exactly
// one of user, team, or role.
var ErrGrantPrincipalInvalid = errors.New("permission grant: exactly one of user_id, team_id, role_id must be set")

// CapabilitySet holds the six orthogonal capability booleans stored on a
// grant. The resolver reads these directly; implication between capabilities
// is applied when the grant is authored, never at read time.
type CapabilitySet struct {
	CanView    bool `gorm:"default:false" json:"can_view"`
	CanExecute bool `gorm:"default:false" json:"can_execute"`
	CanCopy    bool `gorm:"default:false" json:"can_copy"`
	CanEdit    bool `gorm:"default:false" json:"can_edit"`
	CanDelete  bool `gorm:"default:false" json:"can_delete"`
	CanShare   bool `gorm:"default:false" json:"can_share"`
}

// PermissionGrant authorizes one principal a set of capabilities on one
// resource, optionally time-limited. Exactly one of UserID, TeamID, RoleID is
// set.
type PermissionGrant struct {
	AuditedModel

	ResourceType string `gorm:"type:varchar(64);not null;index:idx_grant_resource,priority:1" json:"resource_type"`
	ResourceID   string `gorm:"type:uuid;not null;index:idx_grant_resource,priority:2" json:"resource_id"`

	UserID *string `gorm:"type:uuid;index" json:"user_id,omitempty"`
	TeamID *string `gorm:"type:uuid;index" json:"team_id,omitempty"`
	RoleID *string `gorm:"type:uuid;index" json:"role_id,omitempty"`

	CapabilitySet `gorm:"embedded"`

	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
}

// TableName overrides the default table name for GORM.
func (PermissionGrant) TableName() string {
	return "permission_grants"
}

// BeforeSave enforces the principal XOR invariant at the persistence boundary.
func (g *PermissionGrant) BeforeSave(tx *gorm.DB) error {
	count := 0
	for _, id := range []*string{g.UserID, g.TeamID, g.RoleID} {
		if id != nil && *id != "" {
			count++
		}
	}
	if count != 1 {
		return ErrGrantPrincipalInvalid
	}
	return nil
}

// ActiveAt reports whether the grant is live at the supplied instant. An
// expired grant is never deleted by the engine, only ignored.
func (g *PermissionGrant) ActiveAt(t time.Time) bool {
	return g.ExpiresAt == nil || g.ExpiresAt.After(t)
}
