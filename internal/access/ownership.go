package access

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/models"
)

// SpecialRules lets a resource type short-circuit generic grant evaluation
// for requesters with an intrinsic relationship to the record. A nil decision
// means no special rule applies and evaluation continues.
type SpecialRules interface {
	Evaluate(ctx context.Context, db *gorm.DB, rec *Record, req CheckRequest) (*Decision, error)
}

// userRules grants a user full visibility of their own account record,
// bypassing grants entirely.
type userRules struct{}

func (userRules) Evaluate(_ context.Context, _ *gorm.DB, rec *Record, req CheckRequest) (*Decision, error) {
	if rec.ID == req.RequesterID {
		d := grant("own user record")
		return &d, nil
	}
	return nil, nil
}

// teamRules lets current members read their team record without an explicit
// grant. Administrative mutation still flows through grant evaluation.
type teamRules struct{}

func (teamRules) Evaluate(ctx context.Context, db *gorm.DB, rec *Record, req CheckRequest) (*Decision, error) {
	if req.MinimumRole.adminClass() {
		return nil, nil
	}

	var count int64
	err := db.WithContext(ctx).
		Model(&models.TeamMembership{}).
		Where("team_id = ? AND user_id = ?", rec.ID, req.RequesterID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("access: team membership lookup: %w", err)
	}
	if count > 0 {
		d := grant("team member")
		return &d, nil
	}
	return nil, nil
}

// evaluateOwnership applies the ordered special-ownership rules; first match
// wins. A nil decision means no rule applied and the caller continues to
// generic grant evaluation.
//
// The referred flag disables only the creator bypass: a child resource's
// creator must not inherit parent-level rights merely by having created the
// child. The superuser/system/template ownership rules apply regardless of
// referred.
func (r *Resolver) evaluateOwnership(ctx context.Context, rt *ResourceType, rec *Record, req CheckRequest, class PrincipalClass, referred bool) (*Decision, error) {
	// Soft-deleted rows are opaque to everyone but the superuser.
	if rec.DeletedAt != nil && class != ClassSuperuser {
		d := deny("resource is deleted")
		return &d, nil
	}

	if class == ClassSuperuser {
		d := grant("superuser")
		return &d, nil
	}

	if rt.Rules != nil {
		d, err := rt.Rules.Evaluate(ctx, r.db, rec, req)
		if err != nil || d != nil {
			return d, err
		}
	}

	creator := rec.CreatedByUserID

	if !referred && creator != "" && creator == req.RequesterID && creator != r.identity.SuperuserID {
		d := grant("created by requester")
		return &d, nil
	}

	// Superuser-owned records are private to the superuser, creator bypass
	// included.
	if creator == r.identity.SuperuserID {
		d := deny("record is restricted to the superuser")
		return &d, nil
	}

	// System-owned records are visible by default but admin-protected.
	if creator == r.identity.SystemAccountID {
		if req.MinimumRole.adminClass() {
			if req.RequesterID == r.identity.SystemAccountID {
				d := grant("system account manages its own records")
				return &d, nil
			}
			d := deny("system-owned record requires administrative access")
			return &d, nil
		}
		d := grant("system-owned record is readable by default")
		return &d, nil
	}

	// Template-owned records are universally usable but not editable.
	if creator == r.identity.TemplateAccountID {
		if req.MinimumRole.adminClass() {
			if req.RequesterID == r.identity.SystemAccountID {
				d := grant("system account manages template records")
				return &d, nil
			}
			d := deny("template-owned records are read-only")
			return &d, nil
		}
		d := grant("template-owned record is usable by everyone")
		return &d, nil
	}

	return nil, nil
}
