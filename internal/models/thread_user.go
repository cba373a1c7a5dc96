package models

import "time"

// ThreadUser is the per-thread-per-user activity record. It carries the
// contract cooldown timestamp and the pointer to the user's outstanding
// contract message, which is non-nil exactly while a contract is unfulfilled.
type ThreadUser struct {
	ThreadID                string     `gorm:"primaryKey;size:31"`
	UserID                  string     `gorm:"primaryKey;size:31"`
	LastContractPosted      *time.Time
	ActiveContractMessageID *string `gorm:"size:31"`
	IsCollaborator          bool    `gorm:"default:false;not null"`
	// Thread-scoped block, reserved for per-thread moderation.
	IsBlocked bool `gorm:"default:false;not null"`
}
