package models

// Team groups users for shared grants. Membership carries a role, so a grant
// addressed to a team or to a role reaches users through their memberships.
type Team struct {
	AuditedModel

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`

	Memberships []TeamMembership `gorm:"foreignKey:TeamID" json:"memberships,omitempty"`
}

// TableName overrides the default table name for GORM.
func (Team) TableName() string {
	return "teams"
}

// TeamMembership links a user to a team with the role held inside that team.
type TeamMembership struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_membership_user_team,priority:1" json:"user_id"`
	TeamID string `gorm:"type:uuid;not null;uniqueIndex:idx_membership_user_team,priority:2" json:"team_id"`
	RoleID string `gorm:"type:uuid;not null;index" json:"role_id"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Team *Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Role *Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

// TableName overrides the default table name for GORM.
func (TeamMembership) TableName() string {
	return "team_memberships"
}
