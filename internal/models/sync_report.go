package models

import "time"

// Role sync actions recorded in SyncReport rows.
const (
	SyncActionAdd    = "add"
	SyncActionRemove = "remove"
)

// SyncReport is an audit row for a single role add/remove attempted by the
// reconciler. Error is empty on success. RunID groups the rows of one bulk
// resync run.
type SyncReport struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	RunID     string `gorm:"size:36;index"`
	UserID    string `gorm:"size:31;index"`
	RoleID    string `gorm:"size:31"`
	Action    string `gorm:"size:8"`
	Error     string `gorm:"type:text"`
	CreatedAt time.Time
}
