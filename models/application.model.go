package models

import (
	"time"

	"gorm.io/gorm"
)

// ApplicationStatus enum values
const (
	ApplicationSubmitted   = "submitted"
	ApplicationUnderReview = "under_review"
	ApplicationAccepted    = "accepted"
	ApplicationRejected    = "rejected"
	ApplicationWithdrawn   = "withdrawn"
)

// Application is unique per (student, posting); the index enforces it, not the service.
type Application struct {
	gorm.Model
	StudentID       uint      `gorm:"not null;uniqueIndex:idx_application_student_posting" json:"student_id"`
	Student         *User     `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	PostingID       uint      `gorm:"not null;uniqueIndex:idx_application_student_posting;index" json:"posting_id"`
	Posting         *Posting  `gorm:"foreignKey:PostingID" json:"posting,omitempty"`
	Resume          string    `gorm:"default:''" json:"resume,omitempty"`
	Note            string    `gorm:"type:text" json:"note"`
	Status          string    `gorm:"type:varchar(20);not null;default:'submitted';index" json:"status"`
	StatusUpdatedAt time.Time `json:"status_updated_at"`
}

func (Application) TableName() string {
	return "applications"
}
