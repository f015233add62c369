package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"campuslink/models"
	"campuslink/storage"

	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// VerificationPolicy decides which institutional emails and documents are accepted.
// An empty EmailDomains list accepts any well formed address.
type VerificationPolicy struct {
	EmailDomains []string
	Document     storage.Policy
}

func (p VerificationPolicy) checkEmail(email string) string {
	if email == "" {
		return "institutional email is required"
	}
	if !emailPattern.MatchString(email) {
		return "institutional email must be a valid email address"
	}
	if len(p.EmailDomains) == 0 {
		return ""
	}
	domain := email[strings.LastIndexByte(email, '@')+1:]
	for _, suffix := range p.EmailDomains {
		if strings.HasSuffix(domain, suffix) {
			return ""
		}
	}
	return fmt.Sprintf("institutional email must end with one of: %s", strings.Join(p.EmailDomains, ", "))
}

type VerificationService struct {
	base
	policy VerificationPolicy
}

type SubmitVerificationInput struct {
	InstitutionalEmail string
	Document           *storage.Upload
}

// ParseDecision accepts "approve" or "reject".
func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case DecisionApprove, DecisionReject:
		return d, nil
	}
	return "", validationError("Invalid action", map[string]string{"action": "action must be approve or reject"})
}

// Submit moves an unverified or rejected organization to pending.
func (s *VerificationService) Submit(ctx context.Context, actor Actor, in SubmitVerificationInput) (*models.Profile, error) {
	if err := actor.require(models.RoleOrganization, "Only organizations can request verification"); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	profile, err := s.profileByUser(db, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := submittable(profile.VerificationStatus); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.InstitutionalEmail))
	fields := map[string]string{}
	if msg := s.policy.checkEmail(email); msg != "" {
		fields["institutional_email"] = msg
	}
	if in.Document == nil {
		fields["document"] = "verification document is required"
	}
	if len(fields) > 0 {
		return nil, validationError("Validation failed", fields)
	}

	ref, err := s.storeUpload(ctx, "document", in.Document, s.policy.Document, fmt.Sprintf("verification/%d", actor.UserID))
	if err != nil {
		return nil, err
	}

	previous := profile.VerificationDocument
	submittedAt := s.timestamp()
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Profile{}).
			Where("id = ? AND verification_status IN ?", profile.ID,
				[]string{models.VerificationUnverified, models.VerificationRejected}).
			Updates(map[string]any{
				"verification_status":       models.VerificationPending,
				"verification_document":     ref,
				"institutional_email":       email,
				"verification_submitted_at": submittedAt,
				"verification_reason":       nil,
				"verified_at":               nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return newError(KindInvalidState, "Verification is already pending or completed")
		}

		name := profile.OrgName
		if name == "" {
			name = email
		}
		return s.ledger.appendToAdmins(tx, NotificationInput{
			SenderID: &actor.UserID,
			Type:     models.NotificationVerificationSubmitted,
			Title:    "Verification request submitted",
			Message:  fmt.Sprintf("%s submitted a verification request.", name),
		})
	})
	if err != nil {
		s.discard(ctx, ref)
		return nil, err
	}

	if previous != "" && previous != ref {
		s.discard(ctx, previous)
	}
	log.Printf("[VERIFICATION] profile %d submitted for review", profile.ID)

	return s.profileByUser(db, actor.UserID)
}

func submittable(status string) error {
	switch status {
	case models.VerificationUnverified, models.VerificationRejected:
		return nil
	case models.VerificationPending:
		return newError(KindInvalidState, "Verification is already pending")
	case models.VerificationVerified:
		return newError(KindInvalidState, "Organization is already verified")
	}
	return newError(KindInvalidState, fmt.Sprintf("Unknown verification status %q", status))
}

// Review approves or rejects a pending verification request.
// A request that is missing or no longer pending is reported as NotFoundOrProcessed.
func (s *VerificationService) Review(ctx context.Context, admin AdminCapability, profileID uint, decision Decision, reason string) (*models.Profile, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if decision == DecisionReject && reason == "" {
		return nil, validationError("Validation failed", map[string]string{"reason": "reason is required when rejecting"})
	}

	var profile models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviewedAt := s.timestamp()
		updates := map[string]any{}
		switch decision {
		case DecisionApprove:
			updates["verification_status"] = models.VerificationVerified
			updates["verified_at"] = reviewedAt
			if reason != "" {
				updates["verification_reason"] = reason
			} else {
				updates["verification_reason"] = nil
			}
		case DecisionReject:
			updates["verification_status"] = models.VerificationRejected
			updates["verified_at"] = nil
			updates["verification_reason"] = reason
		default:
			return validationError("Invalid action", map[string]string{"action": "action must be approve or reject"})
		}

		res := tx.Model(&models.Profile{}).
			Where("id = ? AND role = ? AND verification_status = ?", profileID, models.RoleOrganization, models.VerificationPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return newError(KindNotFoundOrProcessed, "Profile not found or not pending verification")
		}
		if err := tx.First(&profile, profileID).Error; err != nil {
			return err
		}

		adminID := admin.UserID()
		note := NotificationInput{RecipientID: profile.UserID, SenderID: &adminID}
		if decision == DecisionApprove {
			note.Type = models.NotificationVerificationApproved
			note.Title = "Organization verified"
			note.Message = "Your organization has been verified. You can now create postings."
			if reason != "" {
				note.Message += " Note: " + reason
			}
		} else {
			note.Type = models.NotificationVerificationRejected
			note.Title = "Verification rejected"
			note.Message = "Your verification request was rejected. Reason: " + reason
		}
		return s.ledger.Append(tx, note)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[VERIFICATION] profile %d %s by admin %d", profileID, profile.VerificationStatus, admin.UserID())
	return &profile, nil
}

// PendingVerification is one entry of the admin review queue.
type PendingVerification struct {
	ProfileID          uint       `json:"profile_id"`
	UserID             uint       `json:"user_id"`
	OrgName            string     `json:"org_name"`
	Email              string     `json:"email"`
	InstitutionalEmail string     `json:"institutional_email"`
	DocumentURL        string     `json:"document_url"`
	SubmittedAt        *time.Time `json:"submitted_at"`
}

// ListPending returns pending requests, oldest submission first.
func (s *VerificationService) ListPending(ctx context.Context, admin AdminCapability, page Page) ([]PendingVerification, int64, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, 0, err
	}
	db := s.db.WithContext(ctx)
	q := db.Model(&models.Profile{}).
		Where("role = ? AND verification_status = ?", models.RoleOrganization, models.VerificationPending)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := page.Bounds()
	var profiles []models.Profile
	if err := q.Session(&gorm.Session{}).
		Order("verification_submitted_at asc, id asc").
		Offset(offset).Limit(limit).
		Find(&profiles).Error; err != nil {
		return nil, 0, err
	}

	emails, err := userEmails(db, profiles)
	if err != nil {
		return nil, 0, err
	}

	out := make([]PendingVerification, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, PendingVerification{
			ProfileID:          p.ID,
			UserID:             p.UserID,
			OrgName:            p.OrgName,
			Email:              emails[p.UserID],
			InstitutionalEmail: p.InstitutionalEmail,
			DocumentURL:        s.resolveURL(ctx, p.VerificationDocument),
			SubmittedAt:        p.VerificationSubmittedAt,
		})
	}
	return out, total, nil
}

func userEmails(db *gorm.DB, profiles []models.Profile) (map[uint]string, error) {
	ids := make([]uint, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}
	emails := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return emails, nil
	}
	var users []models.User
	if err := db.Select("id", "email").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		emails[u.ID] = u.Email
	}
	return emails, nil
}

// VerificationStatus is an organization's view of its own verification.
type VerificationStatus struct {
	Status             string     `json:"verification_status"`
	InstitutionalEmail string     `json:"institutional_email"`
	Reason             *string    `json:"verification_reason"`
	SubmittedAt        *time.Time `json:"verification_submitted_at"`
	VerifiedAt         *time.Time `json:"verified_at"`
	CanSubmit          bool       `json:"can_submit"`
}

func (s *VerificationService) Status(ctx context.Context, actor Actor) (*VerificationStatus, error) {
	if err := actor.require(models.RoleOrganization, "Only organizations have a verification status"); err != nil {
		return nil, err
	}
	profile, err := s.profileByUser(s.db.WithContext(ctx), actor.UserID)
	if err != nil {
		return nil, err
	}
	return &VerificationStatus{
		Status:             profile.VerificationStatus,
		InstitutionalEmail: profile.InstitutionalEmail,
		Reason:             profile.VerificationReason,
		SubmittedAt:        profile.VerificationSubmittedAt,
		VerifiedAt:         profile.VerifiedAt,
		CanSubmit:          submittable(profile.VerificationStatus) == nil,
	}, nil
}

