package models

import "gorm.io/datatypes"

// Rotation schedules a set of provider instances. Grant-wise it is a plain
// parent resource; its join rows defer their permission decisions to it.
type Rotation struct {
	AuditedModel

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
}

// TableName overrides the default table name for GORM.
func (Rotation) TableName() string {
	return "rotations"
}

// ProviderInstance is a configured provider a rotation can cycle through.
type ProviderInstance struct {
	AuditedModel

	Name        string         `gorm:"not null" json:"name"`
	ProviderKey string         `gorm:"type:varchar(64);not null;index" json:"provider_key"`
	Settings    datatypes.JSON `json:"settings,omitempty"`
}

// TableName overrides the default table name for GORM.
func (ProviderInstance) TableName() string {
	return "provider_instances"
}

// RotationProvider joins a rotation to a provider instance. It holds no
// grants of its own; access is delegated to its parents in declaration order
// (rotation first, then provider instance).
type RotationProvider struct {
	AuditedModel

	RotationID         string `gorm:"type:uuid;not null;index" json:"rotation_id"`
	ProviderInstanceID string `gorm:"type:uuid;not null;index" json:"provider_instance_id"`
	Position           int    `gorm:"default:0" json:"position"`

	Rotation         *Rotation         `gorm:"foreignKey:RotationID" json:"rotation,omitempty"`
	ProviderInstance *ProviderInstance `gorm:"foreignKey:ProviderInstanceID" json:"provider_instance,omitempty"`
}

// TableName overrides the default table name for GORM.
func (RotationProvider) TableName() string {
	return "rotation_providers"
}
