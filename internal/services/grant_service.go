package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/access"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/models"
	apperrors "github.com/ZephyrexTechnologies/ServerFramework-sub002/pkg/errors"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/pkg/metrics"
)

// ErrGrantNotFound indicates the requested grant row does not exist.
var ErrGrantNotFound = apperrors.New("GRANT_NOT_FOUND", "Grant not found", http.StatusNotFound)

// GrantService manages the permission grant lifecycle. Authoring applies the
// capability implication rules; authorization for every mutation flows
// through the resolution engine.
type GrantService struct {
	db       *gorm.DB
	resolver *access.Resolver
}

// NewGrantService constructs a grant service.
func NewGrantService(db *gorm.DB, resolver *access.Resolver) (*GrantService, error) {
	if db == nil {
		return nil, errors.New("grant service: db is required")
	}
	if resolver == nil {
		return nil, errors.New("grant service: resolver is required")
	}
	return &GrantService{db: db, resolver: resolver}, nil
}

// CreateGrantInput describes the payload accepted by CreateGrant. Exactly one
// principal field must be set.
type CreateGrantInput struct {
	ResourceType string
	ResourceID   string

	UserID *string
	TeamID *string
	RoleID *string

	PermissionType access.Capability
	ExpiresAt      *time.Time
	Metadata       map[string]any
}

// CreateGrant authors a new grant. The requester must hold SHARE on the
// target resource; the superuser and the system account may grant
// unconditionally.
func (s *GrantService) CreateGrant(ctx context.Context, requesterID string, input CreateGrantInput) (*models.PermissionGrant, error) {
	ctx = ensureContext(ctx)

	capability, err := access.ParseCapability(string(input.PermissionType))
	if err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}

	identity := s.resolver.Identity()
	if requesterID != identity.SuperuserID && requesterID != identity.SystemAccountID {
		if err := s.requireDecision(ctx, access.CheckRequest{
			RequesterID:  requesterID,
			ResourceType: input.ResourceType,
			ResourceID:   input.ResourceID,
			Capability:   access.CapabilityShare,
		}); err != nil {
			return nil, err
		}
	}

	if input.ExpiresAt != nil && !input.ExpiresAt.After(time.Now().UTC()) {
		return nil, apperrors.NewBadRequest("expiration must be in the future")
	}

	grant := &models.PermissionGrant{
		AuditedModel: models.AuditedModel{CreatedByUserID: requesterID},
		ResourceType: input.ResourceType,
		ResourceID:   input.ResourceID,
		UserID:       input.UserID,
		TeamID:       input.TeamID,
		RoleID:       input.RoleID,
		ExpiresAt:    input.ExpiresAt,
	}
	if err := access.ApplyCapability(&grant.CapabilitySet, capability); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}
	if len(input.Metadata) > 0 {
		raw, marshalErr := json.Marshal(input.Metadata)
		if marshalErr != nil {
			return nil, apperrors.NewBadRequest("metadata must be JSON serialisable")
		}
		grant.Metadata = datatypes.JSON(raw)
	}

	if err := s.db.WithContext(ctx).Create(grant).Error; err != nil {
		if errors.Is(err, models.ErrGrantPrincipalInvalid) {
			return nil, apperrors.NewBadRequest(models.ErrGrantPrincipalInvalid.Error())
		}
		return nil, fmt.Errorf("grant service: create grant: %w", err)
	}

	metrics.GrantMutations.WithLabelValues("create").Inc()
	return grant, nil
}

// UpdateGrantInput describes mutable grant fields.
type UpdateGrantInput struct {
	PermissionType *access.Capability
	ExpiresAt      *time.Time
	ClearExpiry    bool
}

// UpdateGrant mutates an existing grant. The requester needs admin-level
// access to the grant row itself, or SHARE on the target resource.
func (s *GrantService) UpdateGrant(ctx context.Context, requesterID, grantID string, input UpdateGrantInput) (*models.PermissionGrant, error) {
	ctx = ensureContext(ctx)

	grant, err := s.loadGrant(ctx, grantID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeGrantMutation(ctx, requesterID, grant, access.CapabilityEdit); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"updated_by_user_id": requesterID,
	}
	if input.PermissionType != nil {
		var set models.CapabilitySet
		if err := access.ApplyCapability(&set, *input.PermissionType); err != nil {
			return nil, apperrors.NewBadRequest(err.Error())
		}
		updates["can_view"] = set.CanView
		updates["can_execute"] = set.CanExecute
		updates["can_copy"] = set.CanCopy
		updates["can_edit"] = set.CanEdit
		updates["can_delete"] = set.CanDelete
		updates["can_share"] = set.CanShare
	}
	switch {
	case input.ClearExpiry:
		updates["expires_at"] = nil
	case input.ExpiresAt != nil:
		updates["expires_at"] = input.ExpiresAt.UTC()
	}

	if err := s.db.WithContext(ctx).Model(grant).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("grant service: update grant: %w", err)
	}

	metrics.GrantMutations.WithLabelValues("update").Inc()
	return s.loadGrant(ctx, grantID)
}

// DeleteGrant soft-deletes a grant. Expired grants need no deletion: the
// resolver already ignores them.
func (s *GrantService) DeleteGrant(ctx context.Context, requesterID, grantID string) error {
	ctx = ensureContext(ctx)

	grant, err := s.loadGrant(ctx, grantID)
	if err != nil {
		return err
	}

	if err := s.authorizeGrantMutation(ctx, requesterID, grant, access.CapabilityDelete); err != nil {
		return err
	}

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Model(grant).Updates(map[string]any{
		"deleted_at":         now,
		"updated_by_user_id": requesterID,
	}).Error
	if err != nil {
		return fmt.Errorf("grant service: delete grant: %w", err)
	}

	metrics.GrantMutations.WithLabelValues("delete").Inc()
	return nil
}

// ListGrants returns the live grants scoped to a resource. The requester
// must hold SHARE on the resource.
func (s *GrantService) ListGrants(ctx context.Context, requesterID, resourceType, resourceID string) ([]models.PermissionGrant, error) {
	ctx = ensureContext(ctx)

	if err := s.requireDecision(ctx, access.CheckRequest{
		RequesterID:  requesterID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Capability:   access.CapabilityShare,
	}); err != nil {
		return nil, err
	}

	var grants []models.PermissionGrant
	err := s.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Where("deleted_at IS NULL").
		Order("created_at ASC").
		Find(&grants).Error
	if err != nil {
		return nil, fmt.Errorf("grant service: list grants: %w", err)
	}
	return grants, nil
}

// authorizeGrantMutation resolves whether the requester may mutate a grant
// row: admin-level access to the row itself, or SHARE on the target resource.
// The second path deliberately works even when the grant row was created by
// the system account, which would otherwise admin-protect it.
func (s *GrantService) authorizeGrantMutation(ctx context.Context, requesterID string, grant *models.PermissionGrant, capability access.Capability) error {
	direct, err := s.resolver.CheckPermission(ctx, access.CheckRequest{
		RequesterID:  requesterID,
		ResourceType: models.PermissionGrant{}.TableName(),
		ResourceID:   grant.ID,
		Capability:   capability,
		MinimumRole:  access.MinimumRoleAdmin,
	})
	if err != nil {
		return apperrors.Wrap(err, "permission resolution failed")
	}
	if direct.Allowed() {
		return nil
	}

	viaTarget, err := s.resolver.CheckPermission(ctx, access.CheckRequest{
		RequesterID:  requesterID,
		ResourceType: grant.ResourceType,
		ResourceID:   grant.ResourceID,
		Capability:   access.CapabilityShare,
	})
	if err != nil {
		return apperrors.Wrap(err, "permission resolution failed")
	}
	if viaTarget.Allowed() {
		return nil
	}

	return apperrors.ErrForbidden
}

// requireDecision maps a resolution outcome onto service errors: a missing
// resource surfaces as not-found, every other non-grant as forbidden.
func (s *GrantService) requireDecision(ctx context.Context, req access.CheckRequest) error {
	decision, err := s.resolver.CheckPermission(ctx, req)
	if err != nil {
		return apperrors.Wrap(err, "permission resolution failed")
	}
	switch {
	case decision.Allowed():
		return nil
	case decision.NotFound():
		return apperrors.ErrNotFound
	default:
		return apperrors.ErrForbidden
	}
}

func (s *GrantService) loadGrant(ctx context.Context, grantID string) (*models.PermissionGrant, error) {
	var grant models.PermissionGrant
	err := s.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&grant, "id = ?", grantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGrantNotFound
		}
		return nil, fmt.Errorf("grant service: load grant: %w", err)
	}
	return &grant, nil
}
