package access

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/models"
)

// activeGrants returns the grants scoped to the resource that any of the
// requester's principals hold and that are live at the given instant. Expired
// grants are filtered out entirely, never partially honored; there is no
// default allow.
func activeGrants(ctx context.Context, db *gorm.DB, resourceType, resourceID string, p principalSet, at time.Time) ([]models.PermissionGrant, error) {
	principal := db.Where("user_id = ?", p.UserID)
	if len(p.TeamIDs) > 0 {
		principal = principal.Or("team_id IN ?", p.TeamIDs)
	}
	if len(p.RoleIDs) > 0 {
		principal = principal.Or("role_id IN ?", p.RoleIDs)
	}

	var grants []models.PermissionGrant
	err := db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Where("deleted_at IS NULL").
		Where("expires_at IS NULL OR expires_at > ?", at).
		Where(principal).
		Find(&grants).Error
	if err != nil {
		return nil, fmt.Errorf("access: load grants: %w", err)
	}

	return grants, nil
}
