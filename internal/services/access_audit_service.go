package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/access"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/models"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/pkg/logger"
)

// AccessAuditService persists permission decisions for operators. Recording
// happens outside the resolver, which stays a pure read path.
type AccessAuditService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewAccessAuditService constructs the audit service.
func NewAccessAuditService(db *gorm.DB) (*AccessAuditService, error) {
	if db == nil {
		return nil, errors.New("access audit service: db is required")
	}
	return &AccessAuditService{
		db:  db,
		log: logger.WithModule("access-audit"),
	}, nil
}

// Record stores the outcome of a permission resolution. Failures are logged
// and swallowed: auditing must never turn a decision into an error.
func (s *AccessAuditService) Record(ctx context.Context, requesterID string, req access.CheckRequest, decision access.Decision) {
	ctx = ensureContext(ctx)

	entry := models.AccessAuditEntry{
		RequesterID:  requesterID,
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		Capability:   string(req.Capability),
		Result:       string(decision.Result),
		Reason:       decision.Reason,
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.log.Warn("failed to record access decision",
			zap.String("resource_type", req.ResourceType),
			zap.String("resource_id", req.ResourceID),
			zap.Error(err),
		)
	}
}

// PruneBefore hard-deletes audit entries created before the cutoff and
// returns the number of rows removed.
func (s *AccessAuditService) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.AccessAuditEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("access audit service: prune: %w", result.Error)
	}
	return result.RowsAffected, nil
}
