package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Posting lifecycle, controlled by the owning organization
const (
	PostingActive = "Active"
	PostingClosed = "Closed"
)

// ApprovalStatus enum values, controlled by admins
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// OpportunityTypes lists the accepted opportunity_type values.
var OpportunityTypes = []string{
	"assistantship",
	"volunteer",
	"internship",
	"job",
	"scholarship",
	"events",
	"sports",
	"leadership",
	"other",
}

type Posting struct {
	gorm.Model
	OrganizationID  uint                        `gorm:"not null;index" json:"organization_id"`
	Organization    *User                       `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Title           string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description     string                      `gorm:"type:text;not null" json:"description"`
	Deadline        time.Time                   `gorm:"not null;index" json:"deadline"`
	Tags            datatypes.JSONSlice[string] `json:"tags"`
	OpportunityType string                      `gorm:"type:varchar(20);not null;default:'other'" json:"opportunity_type"`
	Status          string                      `gorm:"type:varchar(10);not null;default:'Active'" json:"status"`
	ApprovalStatus  string                      `gorm:"type:varchar(10);not null;default:'pending';index" json:"approval_status"`
	ApprovedAt      *time.Time                  `json:"approved_at"`
	ApprovedBy      *uint                       `json:"approved_by"`
	RejectionReason *string                     `gorm:"type:text" json:"rejection_reason"`
}

func (Posting) TableName() string {
	return "postings"
}
