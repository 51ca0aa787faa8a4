package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel provides shared fields for all persistent models.
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures UUID identifiers are generated automatically.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// AuditedModel extends BaseModel with ownership and soft-delete columns.
// Every resource the permission engine protects embeds it; the engine reads
// created_by_user_id for the ownership rules and deleted_at for visibility.
type AuditedModel struct {
	BaseModel

	CreatedByUserID string     `gorm:"type:uuid;index" json:"created_by_user_id"`
	UpdatedByUserID *string    `gorm:"type:uuid" json:"updated_by_user_id,omitempty"`
	DeletedAt       *time.Time `gorm:"index" json:"-"`
}
