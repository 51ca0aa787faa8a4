package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/access"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/models"
	apperrors "github.com/ZephyrexTechnologies/ServerFramework-sub002/pkg/errors"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/pkg/validator"
)

// InvitationService is the CRUD collaborator for invitations. Every operation
// consults the resolution engine before touching the row; read denials
// surface as not-found so callers never learn whether the row exists.
type InvitationService struct {
	db       *gorm.DB
	resolver *access.Resolver
}

// NewInvitationService constructs an invitation service.
func NewInvitationService(db *gorm.DB, resolver *access.Resolver) (*InvitationService, error) {
	if db == nil {
		return nil, errors.New("invitation service: db is required")
	}
	if resolver == nil {
		return nil, errors.New("invitation service: resolver is required")
	}
	return &InvitationService{db: db, resolver: resolver}, nil
}

// CreateInvitationInput describes the payload accepted by Create.
type CreateInvitationInput struct {
	Email     string     `json:"email" validate:"required,email"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Create persists a new invitation owned by the requester.
func (s *InvitationService) Create(ctx context.Context, requesterID string, input CreateInvitationInput) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if err := validator.ValidateStruct(input); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}
	email := input.Email

	code, err := generateInviteCode()
	if err != nil {
		return nil, fmt.Errorf("invitation service: generate code: %w", err)
	}

	inv := &models.Invitation{
		AuditedModel: models.AuditedModel{CreatedByUserID: requesterID},
		Email:        email,
		Code:         code,
		Status:       "pending",
		ExpiresAt:    input.ExpiresAt,
	}

	if err := s.db.WithContext(ctx).Create(inv).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("invitation code collision, retry")
		}
		return nil, fmt.Errorf("invitation service: create: %w", err)
	}

	return inv, nil
}

// Get returns an invitation when the requester may view it.
func (s *InvitationService) Get(ctx context.Context, requesterID, invitationID string) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	if err := s.authorize(ctx, requesterID, invitationID, access.CapabilityView); err != nil {
		return nil, err
	}

	var inv models.Invitation
	if err := s.db.WithContext(ctx).First(&inv, "id = ?", invitationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("invitation service: load: %w", err)
	}
	return &inv, nil
}

// List returns the live invitations created by the requester.
func (s *InvitationService) List(ctx context.Context, requesterID string) ([]models.Invitation, error) {
	ctx = ensureContext(ctx)

	var invs []models.Invitation
	err := s.db.WithContext(ctx).
		Where("created_by_user_id = ?", requesterID).
		Where("deleted_at IS NULL").
		Order("created_at ASC").
		Find(&invs).Error
	if err != nil {
		return nil, fmt.Errorf("invitation service: list: %w", err)
	}
	return invs, nil
}

// Delete soft-deletes an invitation when the requester holds delete access.
func (s *InvitationService) Delete(ctx context.Context, requesterID, invitationID string) error {
	ctx = ensureContext(ctx)

	if err := s.authorize(ctx, requesterID, invitationID, access.CapabilityDelete); err != nil {
		return err
	}

	now := time.Now().UTC()
	err := s.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("id = ?", invitationID).
		Updates(map[string]any{
			"deleted_at":         now,
			"updated_by_user_id": requesterID,
		}).Error
	if err != nil {
		return fmt.Errorf("invitation service: delete: %w", err)
	}
	return nil
}

// authorize runs the engine for one invitation operation. View denials map
// to not-found; mutation denials map to forbidden.
func (s *InvitationService) authorize(ctx context.Context, requesterID, invitationID string, capability access.Capability) error {
	decision, err := s.resolver.CheckPermission(ctx, access.CheckRequest{
		RequesterID:  requesterID,
		ResourceType: models.Invitation{}.TableName(),
		ResourceID:   invitationID,
		Capability:   capability,
		MinimumRole:  access.MinimumRoleFor(capability),
	})
	if err != nil {
		return apperrors.Wrap(err, "permission resolution failed")
	}

	switch {
	case decision.Allowed():
		return nil
	case decision.NotFound():
		return apperrors.ErrNotFound
	case capability == access.CapabilityView:
		return apperrors.ErrNotFound
	default:
		return apperrors.ErrForbidden
	}
}

func generateInviteCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
