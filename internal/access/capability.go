package access

import (
	"fmt"
	"strings"

	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/models"
)

// Capability identifies one of the six orthogonal permission bits a grant can
// carry.
type Capability string

const (
	CapabilityView    Capability = "view"
	CapabilityExecute Capability = "execute"
	CapabilityCopy    Capability = "copy"
	CapabilityEdit    Capability = "edit"
	CapabilityDelete  Capability = "delete"
	CapabilityShare   Capability = "share"
)

// ErrUnknownCapability indicates a capability string outside the six known bits.
var ErrUnknownCapability = fmt.Errorf("access: unknown capability")

// ParseCapability normalises and validates a capability string.
func ParseCapability(value string) (Capability, error) {
	c := Capability(strings.ToLower(strings.TrimSpace(value)))
	switch c {
	case CapabilityView, CapabilityExecute, CapabilityCopy, CapabilityEdit, CapabilityDelete, CapabilityShare:
		return c, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownCapability, value)
	}
}

// ApplyCapability sets the stored booleans for an authored grant.
// Execute, copy, edit, and delete imply view; share implies all six. This is
// authoring-time normalisation only: the resolver reads the booleans as
// stored and never re-derives implication.
func ApplyCapability(set *models.CapabilitySet, c Capability) error {
	switch c {
	case CapabilityView:
		set.CanView = true
	case CapabilityExecute:
		set.CanExecute = true
		set.CanView = true
	case CapabilityCopy:
		set.CanCopy = true
		set.CanView = true
	case CapabilityEdit:
		set.CanEdit = true
		set.CanView = true
	case CapabilityDelete:
		set.CanDelete = true
		set.CanView = true
	case CapabilityShare:
		set.CanView = true
		set.CanExecute = true
		set.CanCopy = true
		set.CanEdit = true
		set.CanDelete = true
		set.CanShare = true
	default:
		return fmt.Errorf("%w %q", ErrUnknownCapability, c)
	}
	return nil
}

// Allows reports whether the stored capability set satisfies the requested
// capability.
func Allows(set models.CapabilitySet, c Capability) bool {
	switch c {
	case CapabilityView:
		return set.CanView
	case CapabilityExecute:
		return set.CanExecute
	case CapabilityCopy:
		return set.CanCopy
	case CapabilityEdit:
		return set.CanEdit
	case CapabilityDelete:
		return set.CanDelete
	case CapabilityShare:
		return set.CanShare
	default:
		return false
	}
}

// MinimumRole is the coarse gate distinguishing read/use operations from
// administrative mutation on specially-owned records.
type MinimumRole string

const (
	MinimumRoleNone  MinimumRole = ""
	MinimumRoleUser  MinimumRole = "user"
	MinimumRoleAdmin MinimumRole = "admin"
)

// ParseMinimumRole validates a minimum role string; empty means none.
func ParseMinimumRole(value string) (MinimumRole, error) {
	m := MinimumRole(strings.ToLower(strings.TrimSpace(value)))
	switch m {
	case MinimumRoleNone, MinimumRoleUser, MinimumRoleAdmin:
		return m, nil
	default:
		return "", fmt.Errorf("access: unknown minimum role %q", value)
	}
}

// adminClass reports whether the gate requires admin-level access.
func (m MinimumRole) adminClass() bool {
	return m == MinimumRoleAdmin
}

// MinimumRoleFor returns the conventional gate for a capability: edit and
// delete are administrative, the read/use class carries no gate.
func MinimumRoleFor(c Capability) MinimumRole {
	switch c {
	case CapabilityEdit, CapabilityDelete:
		return MinimumRoleAdmin
	default:
		return MinimumRoleNone
	}
}
