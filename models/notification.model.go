package models

import "time"

// NotificationType enum values, one per transition that notifies someone
const (
	NotificationVerificationSubmitted   = "verification_submitted"
	NotificationVerificationApproved    = "verification_approved"
	NotificationVerificationRejected    = "verification_rejected"
	NotificationPostingSubmitted        = "posting_submitted"
	NotificationPostingApproved         = "posting_approved"
	NotificationPostingRejected         = "posting_rejected"
	NotificationNewApplication          = "new_application"
	NotificationApplicationStatusUpdate = "application_status_update"
)

// Notification is owned by its recipient. The system only inserts rows.
type Notification struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	RecipientID      uint      `gorm:"not null;index:idx_notification_recipient_time,priority:1" json:"recipient_id"`
	SenderID         *uint     `json:"sender_id"`
	Type             string    `gorm:"type:varchar(40);not null" json:"notification_type"`
	Title            string    `gorm:"type:varchar(255);not null" json:"title"`
	Message          string    `gorm:"type:text;not null" json:"message"`
	Read             bool      `gorm:"column:is_read;default:false" json:"read"`
	IsFavorite       bool      `gorm:"default:false" json:"is_favorite"`
	IsArchived       bool      `gorm:"default:false" json:"is_archived"`
	Timestamp        time.Time `gorm:"not null;index:idx_notification_recipient_time,priority:2" json:"timestamp"`
	RelatedPostingID *uint     `json:"related_posting_id"`
}

func (Notification) TableName() string {
	return "notifications"
}
