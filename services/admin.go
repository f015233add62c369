package services

import (
	"context"

	"campuslink/models"
)

type AdminService struct {
	base
	postings *PostingService
}

// Stats is the admin dashboard summary.
type Stats struct {
	PendingVerifications  int64            `json:"pending_verifications"`
	VerifiedOrganizations int64            `json:"verified_organizations"`
	PendingPostings       int64            `json:"pending_postings"`
	VisiblePostings       int64            `json:"visible_postings"`
	Students              int64            `json:"students"`
	Applications          map[string]int64 `json:"applications"`
}

func (s *AdminService) Stats(ctx context.Context, admin AdminCapability) (*Stats, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	stats := &Stats{Applications: map[string]int64{}}

	orgs := func(status string, dest *int64) error {
		return db.Model(&models.Profile{}).
			Where("role = ? AND verification_status = ?", models.RoleOrganization, status).
			Count(dest).Error
	}
	if err := orgs(models.VerificationPending, &stats.PendingVerifications); err != nil {
		return nil, err
	}
	if err := orgs(models.VerificationVerified, &stats.VerifiedOrganizations); err != nil {
		return nil, err
	}
	if err := db.Model(&models.Posting{}).Where("approval_status = ?", models.ApprovalPending).Count(&stats.PendingPostings).Error; err != nil {
		return nil, err
	}
	if err := visibleScope(db, s.today()).Select("postings.id").Count(&stats.VisiblePostings).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Profile{}).Where("role = ?", models.RoleStudent).Count(&stats.Students).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		Status string
		Total  int64
	}
	if err := db.Model(&models.Application{}).Select("status, count(*) as total").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.Applications[r.Status] = r.Total
	}
	return stats, nil
}
