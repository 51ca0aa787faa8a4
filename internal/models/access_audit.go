package models

// AccessAuditEntry records the outcome of a permission resolution for audit
// purposes. The reason string is for operators only and is never returned to
// an unauthorized caller.
type AccessAuditEntry struct {
	BaseModel

	RequesterID  string `gorm:"type:uuid;not null;index" json:"requester_id"`
	ResourceType string `gorm:"type:varchar(64);not null;index" json:"resource_type"`
	ResourceID   string `gorm:"type:uuid;not null" json:"resource_id"`
	Capability   string `gorm:"type:varchar(16);not null" json:"capability"`
	Result       string `gorm:"type:varchar(16);not null;index" json:"result"`
	Reason       string `json:"reason"`
}

// TableName overrides the default table name for GORM.
func (AccessAuditEntry) TableName() string {
	return "access_audit_entries"
}
