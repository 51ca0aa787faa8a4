package models

// Role is a node in the role forest. ParentID points from a MORE privileged
// role to a LESS privileged one (admin.parent_id references user), so a holder
// of admin also satisfies grants addressed to user. The ancestor walk lives in
// the access package; reversing the direction silently changes who inherits
// from whom.
type Role struct {
	BaseModel

	Name        string  `gorm:"uniqueIndex;not null" json:"name"`
	Description string  `json:"description"`
	ParentID    *string `gorm:"type:uuid;index" json:"parent_id,omitempty"`

	Parent *Role `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
}

// TableName overrides the default table name for GORM.
func (Role) TableName() string {
	return "roles"
}
