package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VerificationStatus enum values
const (
	VerificationUnverified = "unverified"
	VerificationPending    = "pending"
	VerificationVerified   = "verified"
	VerificationRejected   = "rejected"
)

// Profile extends User one-to-one and carries the role plus role specific fields.
type Profile struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	Role   Role `gorm:"type:varchar(20);not null;index" json:"role"`

	// Student
	FullName       string                      `gorm:"default:''" json:"full_name"`
	AcademicYear   string                      `gorm:"default:''" json:"academic_year"`
	Major          string                      `gorm:"default:''" json:"major"`
	Bio            string                      `gorm:"type:text" json:"bio"`
	Skills         datatypes.JSONSlice[string] `json:"skills"`
	PortfolioLinks datatypes.JSONSlice[string] `json:"portfolio_links"`

	// Organization
	OrgName     string            `gorm:"default:''" json:"org_name"`
	OrgLogo     string            `gorm:"default:''" json:"org_logo"`
	Description string            `gorm:"type:text" json:"description"`
	Mission     string            `gorm:"type:text" json:"mission"`
	Website     string            `gorm:"default:''" json:"website"`
	Address     string            `gorm:"default:''" json:"address"`
	Department  string            `gorm:"default:''" json:"department"`
	SocialLinks datatypes.JSONMap `json:"social_links"`
	IsPublic    bool              `gorm:"default:true" json:"is_public"`

	// Verification, meaningful for organizations only
	VerificationStatus      string     `gorm:"type:varchar(20);not null;default:'unverified';index" json:"verification_status"`
	VerificationDocument    string     `gorm:"default:''" json:"verification_document,omitempty"`
	InstitutionalEmail      string     `gorm:"default:''" json:"institutional_email,omitempty"`
	VerificationReason      *string    `gorm:"type:text" json:"verification_reason"`
	VerificationSubmittedAt *time.Time `json:"verification_submitted_at"`
	VerifiedAt              *time.Time `json:"verified_at"`
}

// IsVerifiedOrganization gates posting creation.
func (p *Profile) IsVerifiedOrganization() bool {
	return p.Role == RoleOrganization && p.VerificationStatus == VerificationVerified
}

func (Profile) TableName() string {
	return "profiles"
}
