package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/models"
)

// IdentityConfig carries the well-known account IDs the resolver needs. They
// are configuration constants injected at construction, never read from
// process-wide state.
type IdentityConfig struct {
	SuperuserID       string `mapstructure:"superuser_id"`
	SystemAccountID   string `mapstructure:"system_account_id"`
	TemplateAccountID string `mapstructure:"template_account_id"`
}

// Validate ensures all well-known IDs are present and distinct.
func (c IdentityConfig) Validate() error {
	ids := map[string]string{
		"superuser_id":        strings.TrimSpace(c.SuperuserID),
		"system_account_id":   strings.TrimSpace(c.SystemAccountID),
		"template_account_id": strings.TrimSpace(c.TemplateAccountID),
	}
	seen := make(map[string]string, len(ids))
	for name, id := range ids {
		if id == "" {
			return fmt.Errorf("access: identity config: %s is required", name)
		}
		if other, dup := seen[id]; dup {
			return fmt.Errorf("access: identity config: %s and %s share the same id", other, name)
		}
		seen[id] = name
	}
	return nil
}

// PrincipalClass classifies a requester.
type PrincipalClass string

const (
	ClassSuperuser       PrincipalClass = "superuser"
	ClassSystemAccount   PrincipalClass = "system_account"
	ClassTemplateAccount PrincipalClass = "template_account"
	ClassRegularUser     PrincipalClass = "regular_user"
)

// Classify resolves a requester ID into its principal class.
func (c IdentityConfig) Classify(requesterID string) PrincipalClass {
	switch requesterID {
	case c.SuperuserID:
		return ClassSuperuser
	case c.SystemAccountID:
		return ClassSystemAccount
	case c.TemplateAccountID:
		return ClassTemplateAccount
	default:
		return ClassRegularUser
	}
}

// principalSet is the expanded identity a grant query matches against: the
// requester plus current team memberships and the transitively expanded role
// set.
type principalSet struct {
	UserID  string
	TeamIDs []string
	RoleIDs []string
}

// PrincipalResolver resolves team and role membership for regular users. It
// performs pure read queries; membership is always evaluated live.
type PrincipalResolver struct {
	db *gorm.DB
}

// NewPrincipalResolver constructs a principal resolver over the database.
func NewPrincipalResolver(db *gorm.DB) (*PrincipalResolver, error) {
	if db == nil {
		return nil, errors.New("access: principal resolver: db is required")
	}
	return &PrincipalResolver{db: db}, nil
}

// principalsOf expands the requester into the full principal set.
func (r *PrincipalResolver) principalsOf(ctx context.Context, userID string) (principalSet, error) {
	set := principalSet{UserID: userID}

	var memberships []models.TeamMembership
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&memberships).Error; err != nil {
		return set, fmt.Errorf("access: load memberships: %w", err)
	}

	teamSeen := make(map[string]struct{}, len(memberships))
	roleSeed := make([]string, 0, len(memberships))
	for _, m := range memberships {
		if _, ok := teamSeen[m.TeamID]; !ok {
			teamSeen[m.TeamID] = struct{}{}
			set.TeamIDs = append(set.TeamIDs, m.TeamID)
		}
		roleSeed = append(roleSeed, m.RoleID)
	}

	roles, err := r.expandRoleAncestors(ctx, roleSeed)
	if err != nil {
		return set, err
	}
	set.RoleIDs = roles

	return set, nil
}

// expandRoleAncestors walks parent pointers from each held role towards the
// less privileged end of the forest, collecting the full ancestor set. A
// holder of admin therefore also satisfies grants addressed to user. The
// visited set keeps the walk total even on corrupt parent chains.
func (r *PrincipalResolver) expandRoleAncestors(ctx context.Context, roleIDs []string) ([]string, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}

	visited := make(map[string]struct{}, len(roleIDs))
	var collected []string

	pending := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		if id == "" {
			continue
		}
		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}
		collected = append(collected, id)
		pending = append(pending, id)
	}

	for len(pending) > 0 {
		var roles []models.Role
		if err := r.db.WithContext(ctx).
			Where("id IN ?", pending).
			Find(&roles).Error; err != nil {
			return nil, fmt.Errorf("access: load roles: %w", err)
		}

		pending = pending[:0]
		for _, role := range roles {
			if role.ParentID == nil || *role.ParentID == "" {
				continue
			}
			parent := *role.ParentID
			if _, ok := visited[parent]; ok {
				continue
			}
			visited[parent] = struct{}{}
			collected = append(collected, parent)
			pending = append(pending, parent)
		}
	}

	return collected, nil
}
