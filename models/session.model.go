package models

import (
	"time"

	"gorm.io/gorm"
)

// Session tracks one issued token and the last time it was used.
type Session struct {
	gorm.Model
	TokenID      string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"-"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	IPAddress    string    `json:"ip_address"`
	Device       string    `json:"device"`
	LastActivity time.Time `gorm:"not null;index" json:"last_activity"`
}
