package models

// Thread is a feedback thread the bot has seen at least one collaborator
// operation on. The owner is always an implicit collaborator, so the count
// starts at 1.
type Thread struct {
	ThreadID          string `gorm:"primaryKey;size:31"`
	OwnerID           string `gorm:"size:31;not null"`
	CollaboratorCount int    `gorm:"default:1;not null"`

	Collaborators []Collaborator `gorm:"foreignKey:ThreadID"`
}

// Collaborator marks a user as allowed to act on a thread's contracts.
type Collaborator struct {
	ThreadID string `gorm:"primaryKey;size:31"`
	UserID   string `gorm:"primaryKey;size:31"`
}
