package models

// User is a Discord user known to the bot. Rows are created lazily on first
// reference and never deleted.
type User struct {
	UserID         string `gorm:"primaryKey;size:31"`
	FeedbackPoints int    `gorm:"default:0;not null"`
	IsBlocked      bool   `gorm:"default:false;not null"`
	AllowPings     bool   `gorm:"default:true;not null"`
	AcceptedRules  bool   `gorm:"default:false;not null"`
}
