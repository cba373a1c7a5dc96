package models

// SettingsMainID is the identifier of the single Settings row per deployment.
const SettingsMainID = "main"

// Settings is the process-wide configuration row mutated by admin commands.
// Exactly one row exists per deployment, keyed by SettingsMainID.
type Settings struct {
	Identifier          string `gorm:"primaryKey;size:31"`
	ContractCooldownSec int    `gorm:"default:0;not null"`
	StaffIsProtected    bool   `gorm:"default:true;not null"`

	Channels []FeedbackChannel `gorm:"foreignKey:SettingsID"`
	Tags     []FeedbackTag     `gorm:"foreignKey:SettingsID"`
	Roles    []RoleRequirement `gorm:"foreignKey:SettingsID"`
}

// FeedbackChannel is a forum channel registered for feedback contracts.
type FeedbackChannel struct {
	ChannelID  string `gorm:"primaryKey;size:31"`
	SettingsID string `gorm:"size:31;not null;index"`
}

// FeedbackTag is a forum tag that marks a thread as open for feedback.
type FeedbackTag struct {
	TagID      string `gorm:"primaryKey;size:31"`
	SettingsID string `gorm:"size:31;not null;index"`
}

// Role types for RoleRequirement rows.
const (
	RoleTypeRegular = "regular"
	RoleTypeVeteran = "veteran"
)

// RoleRequirement maps a role type to a guild role and the feedback-point
// threshold that earns it. Role ownership is derived from points, never
// stored: a user owns the role iff points >= Requirement.
type RoleRequirement struct {
	RoleType    string `gorm:"primaryKey;size:31"`
	SettingsID  string `gorm:"size:31;not null;index"`
	RoleID      string `gorm:"size:31"`
	Requirement int    `gorm:"default:1;not null"`
}
