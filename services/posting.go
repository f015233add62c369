package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"slices"
	"strings"
	"time"

	"campuslink/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const deadlineLayout = "2006-01-02"

type PostingService struct {
	base
	batchSize int
}

// PostingInput carries the editable fields of a posting.
type PostingInput struct {
	Title           string   `json:"title" validate:"required,max=255"`
	Description     string   `json:"description" validate:"required"`
	Deadline        string   `json:"deadline" validate:"required"`
	OpportunityType string   `json:"opportunity_type" validate:"required,oneof=assistantship volunteer internship job scholarship events sports leadership other"`
	Tags            []string `json:"tags" validate:"max=20,dive,max=50"`
}

// check validates the input and returns the parsed deadline and tags.
func (in *PostingInput) check(today time.Time) (time.Time, []string, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Deadline = strings.TrimSpace(in.Deadline)
	in.OpportunityType = strings.ToLower(strings.TrimSpace(in.OpportunityType))

	fields := map[string]string{}
	if err := mergeFields(fields, validateStruct(in)); err != nil {
		return time.Time{}, nil, err
	}

	var deadline time.Time
	if _, seen := fields["deadline"]; !seen {
		d, err := time.ParseInLocation(deadlineLayout, in.Deadline, time.UTC)
		switch {
		case err != nil:
			fields["deadline"] = "deadline must be a date in YYYY-MM-DD format"
		case !d.After(today):
			fields["deadline"] = "deadline must be in the future"
		default:
			deadline = d
		}
	}
	if len(fields) > 0 {
		return time.Time{}, nil, validationError("Validation failed", fields)
	}
	return deadline, normalizeTags(in.Tags), nil
}

// normalizeTags trims tags and drops case-insensitive duplicates, keeping the first spelling.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		key := strings.ToLower(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// Create stores a new posting awaiting admin review. Only verified organizations may post.
func (s *PostingService) Create(ctx context.Context, actor Actor, in PostingInput) (*models.Posting, error) {
	if err := actor.require(models.RoleOrganization, "Only organizations can create postings"); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	profile, err := s.profileByUser(db, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !profile.IsVerifiedOrganization() {
		return nil, newError(KindNotVerified, "Your organization must be verified before creating postings")
	}

	deadline, tags, err := in.check(s.today())
	if err != nil {
		return nil, err
	}

	posting := models.Posting{
		OrganizationID:  actor.UserID,
		Title:           in.Title,
		Description:     in.Description,
		Deadline:        deadline,
		Tags:            tags,
		OpportunityType: in.OpportunityType,
		Status:          models.PostingActive,
		ApprovalStatus:  models.ApprovalPending,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&posting).Error; err != nil {
			return err
		}
		return s.ledger.appendToAdmins(tx, NotificationInput{
			SenderID:         &actor.UserID,
			Type:             models.NotificationPostingSubmitted,
			Title:            "New posting awaiting review",
			Message:          fmt.Sprintf("%s submitted %q for review.", orgLabel(profile), posting.Title),
			RelatedPostingID: &posting.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[POSTING] posting %d created by organization %d", posting.ID, actor.UserID)
	return &posting, nil
}

func orgLabel(p *models.Profile) string {
	if p.OrgName != "" {
		return p.OrgName
	}
	return fmt.Sprintf("Organization #%d", p.UserID)
}

// Review approves or rejects a pending posting.
func (s *PostingService) Review(ctx context.Context, admin AdminCapability, postingID uint, decision Decision, reason string) (*models.Posting, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if decision == DecisionReject && reason == "" {
		return nil, validationError("Validation failed", map[string]string{"reason": "reason is required when rejecting"})
	}

	adminID := admin.UserID()
	var posting models.Posting
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{}
		switch decision {
		case DecisionApprove:
			updates["approval_status"] = models.ApprovalApproved
			updates["approved_at"] = s.timestamp()
			updates["approved_by"] = adminID
			updates["rejection_reason"] = nil
		case DecisionReject:
			updates["approval_status"] = models.ApprovalRejected
			updates["approved_at"] = nil
			updates["approved_by"] = nil
			updates["rejection_reason"] = reason
		default:
			return validationError("Invalid action", map[string]string{"action": "action must be approve or reject"})
		}

		res := tx.Model(&models.Posting{}).
			Where("id = ? AND approval_status = ?", postingID, models.ApprovalPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return newError(KindNotFoundOrProcessed, "Posting not found or not pending approval")
		}
		if err := tx.First(&posting, postingID).Error; err != nil {
			return err
		}

		note := NotificationInput{
			RecipientID:      posting.OrganizationID,
			SenderID:         &adminID,
			RelatedPostingID: &posting.ID,
		}
		if decision == DecisionApprove {
			note.Type = models.NotificationPostingApproved
			note.Title = "Posting approved"
			note.Message = fmt.Sprintf("Your posting %q has been approved and is now visible to students.", posting.Title)
		} else {
			note.Type = models.NotificationPostingRejected
			note.Title = "Posting rejected"
			note.Message = fmt.Sprintf("Your posting %q was rejected. Reason: %s", posting.Title, reason)
		}
		return s.ledger.Append(tx, note)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[POSTING] posting %d %s by admin %d", postingID, posting.ApprovalStatus, adminID)
	return &posting, nil
}

// owned loads a posting and checks that actor is its organization.
func (s *PostingService) owned(tx *gorm.DB, actor Actor, postingID uint) (*models.Posting, error) {
	if err := actor.require(models.RoleOrganization, "Only organizations can manage postings"); err != nil {
		return nil, err
	}
	posting, err := findPosting(tx, postingID)
	if err != nil {
		return nil, err
	}
	if posting.OrganizationID != actor.UserID {
		return nil, newError(KindAccessDenied, "You do not own this posting")
	}
	return posting, nil
}

func findPosting(tx *gorm.DB, postingID uint) (*models.Posting, error) {
	var posting models.Posting
	if err := tx.First(&posting, postingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "Posting not found")
		}
		return nil, err
	}
	return &posting, nil
}

// SetStatus opens or closes a posting. It does not depend on the approval status.
func (s *PostingService) SetStatus(ctx context.Context, actor Actor, postingID uint, status string) (*models.Posting, error) {
	switch {
	case strings.EqualFold(status, models.PostingActive):
		status = models.PostingActive
	case strings.EqualFold(status, models.PostingClosed):
		status = models.PostingClosed
	default:
		return nil, validationError("Validation failed", map[string]string{"status": "status must be Active or Closed"})
	}

	db := s.db.WithContext(ctx)
	posting, err := s.owned(db, actor, postingID)
	if err != nil {
		return nil, err
	}
	if err := db.Model(posting).Update("status", status).Error; err != nil {
		return nil, err
	}
	posting.Status = status
	log.Printf("[POSTING] posting %d set %s by organization %d", postingID, status, actor.UserID)
	return posting, nil
}

// Update edits a posting that is still awaiting review.
func (s *PostingService) Update(ctx context.Context, actor Actor, postingID uint, in PostingInput) (*models.Posting, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.owned(db, actor, postingID); err != nil {
		return nil, err
	}
	deadline, tags, err := in.check(s.today())
	if err != nil {
		return nil, err
	}

	res := db.Model(&models.Posting{}).
		Where("id = ? AND approval_status = ?", postingID, models.ApprovalPending).
		Updates(map[string]any{
			"title":            in.Title,
			"description":      in.Description,
			"deadline":         deadline,
			"tags":             datatypes.JSONSlice[string](tags),
			"opportunity_type": in.OpportunityType,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, newError(KindInvalidState, "Only postings awaiting review can be edited")
	}
	return findPosting(db, postingID)
}

// Delete soft deletes a posting owned by actor.
func (s *PostingService) Delete(ctx context.Context, actor Actor, postingID uint) error {
	db := s.db.WithContext(ctx)
	if _, err := s.owned(db, actor, postingID); err != nil {
		return err
	}
	return db.Delete(&models.Posting{}, postingID).Error
}

// publicProfileColumns are the organization fields shown next to a posting.
var publicProfileColumns = []string{"id", "user_id", "role", "org_name", "org_logo", "website", "is_public", "verification_status"}

// withPublicOrganization preloads the owner of the posting at path ("" or
// "Posting.") without account or verification details.
func withPublicOrganization(tx *gorm.DB, path string) *gorm.DB {
	return tx.
		Preload(path+"Organization", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Preload(path+"Organization.Profile", func(db *gorm.DB) *gorm.DB { return db.Select(publicProfileColumns) })
}

// Get loads a posting regardless of visibility.
func (s *PostingService) Get(ctx context.Context, postingID uint) (*models.Posting, error) {
	return findPosting(withPublicOrganization(s.db.WithContext(ctx), ""), postingID)
}

// View returns a posting to a caller allowed to see it: anyone while it is
// visible, otherwise only its organization or an admin.
func (s *PostingService) View(ctx context.Context, actor Actor, postingID uint) (*models.Posting, error) {
	posting, err := s.Get(ctx, postingID)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleAdmin || (actor.Role == models.RoleOrganization && posting.OrganizationID == actor.UserID) {
		return posting, nil
	}
	if _, err := s.loadVisible(s.db.WithContext(ctx), postingID); err != nil {
		return nil, newError(KindNotFound, "Posting not found")
	}
	return posting, nil
}

// visibleScope selects postings students may see as of today.
func visibleScope(tx *gorm.DB, today time.Time) *gorm.DB {
	return tx.Model(&models.Posting{}).
		Select("postings.*").
		Joins("JOIN profiles ON profiles.user_id = postings.organization_id AND profiles.deleted_at IS NULL").
		Where("postings.approval_status = ?", models.ApprovalApproved).
		Where("postings.status = ?", models.PostingActive).
		Where("postings.deadline >= ?", today).
		Where("profiles.verification_status = ?", models.VerificationVerified)
}

// loadVisible returns the posting if students can currently see it.
// An existing but hidden posting yields PostingClosed.
func (s *PostingService) loadVisible(tx *gorm.DB, postingID uint) (*models.Posting, error) {
	var posting models.Posting
	err := visibleScope(tx, s.today()).Where("postings.id = ?", postingID).Take(&posting).Error
	if err == nil {
		return &posting, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := findPosting(tx, postingID); err != nil {
		return nil, err
	}
	return nil, newError(KindPostingClosed, "This opportunity is no longer accepting applications")
}

// PostingFilter narrows ListVisible. Zero fields match everything.
type PostingFilter struct {
	Type           string
	Tag            string
	Search         string
	DeadlineFrom   *time.Time
	DeadlineTo     *time.Time
	OrganizationID uint
}

func (f PostingFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Type != "" {
		q = q.Where("postings.opportunity_type = ?", strings.ToLower(f.Type))
	}
	if f.DeadlineFrom != nil {
		q = q.Where("postings.deadline >= ?", f.DeadlineFrom.UTC())
	}
	if f.DeadlineTo != nil {
		q = q.Where("postings.deadline <= ?", f.DeadlineTo.UTC())
	}
	if f.OrganizationID != 0 {
		q = q.Where("postings.organization_id = ?", f.OrganizationID)
	}
	return q
}

// matches applies the tag and text filters, which run over JSON tags in memory.
func (f PostingFilter) matches(p models.Posting) bool {
	if f.Tag != "" && !slices.ContainsFunc(p.Tags, func(t string) bool { return strings.EqualFold(t, f.Tag) }) {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		haystack := strings.ToLower(strings.Join(append([]string{p.Title, p.Description, p.OpportunityType}, p.Tags...), " "))
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}

// ListVisible yields visible postings newest first, fetching them in id
// keyed batches. Each range over the sequence re-evaluates "today".
func (s *PostingService) ListVisible(ctx context.Context, filter PostingFilter) iter.Seq2[models.Posting, error] {
	return func(yield func(models.Posting, error) bool) {
		today := s.today()
		var cursor uint
		for {
			q := withPublicOrganization(filter.apply(visibleScope(s.db.WithContext(ctx), today)), "")
			if cursor > 0 {
				q = q.Where("postings.id < ?", cursor)
			}
			var batch []models.Posting
			if err := q.Order("postings.id desc").Limit(s.batchSize).Find(&batch).Error; err != nil {
				yield(models.Posting{}, fmt.Errorf("list visible postings: %w", err))
				return
			}
			for _, p := range batch {
				if !filter.matches(p) {
					continue
				}
				if !yield(p, nil) {
					return
				}
			}
			if len(batch) < s.batchSize {
				return
			}
			cursor = batch[len(batch)-1].ID
		}
	}
}

// OwnedPosting is a posting as its organization sees it.
type OwnedPosting struct {
	models.Posting
	ApplicationCount int64 `json:"application_count"`
}

// ListMine returns every posting of the calling organization, newest first,
// with the number of live applications.
func (s *PostingService) ListMine(ctx context.Context, actor Actor) ([]OwnedPosting, error) {
	if err := actor.require(models.RoleOrganization, "Only organizations have postings"); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var postings []models.Posting
	if err := db.Where("organization_id = ?", actor.UserID).Order("created_at desc, id desc").Find(&postings).Error; err != nil {
		return nil, err
	}
	if len(postings) == 0 {
		return []OwnedPosting{}, nil
	}

	ids := make([]uint, len(postings))
	for i, p := range postings {
		ids[i] = p.ID
	}
	var rows []struct {
		PostingID uint
		Total     int64
	}
	if err := db.Model(&models.Application{}).
		Select("posting_id, count(*) as total").
		Where("posting_id IN ? AND status <> ?", ids, models.ApplicationWithdrawn).
		Group("posting_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.PostingID] = r.Total
	}

	out := make([]OwnedPosting, len(postings))
	for i, p := range postings {
		out[i] = OwnedPosting{Posting: p, ApplicationCount: counts[p.ID]}
	}
	return out, nil
}

// ListPending returns the posting review queue, oldest first.
func (s *PostingService) ListPending(ctx context.Context, admin AdminCapability, page Page) ([]models.Posting, int64, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, 0, err
	}
	q := s.db.WithContext(ctx).Model(&models.Posting{}).Where("approval_status = ?", models.ApprovalPending)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := page.Bounds()
	var postings []models.Posting
	if err := q.Session(&gorm.Session{}).
		Preload("Organization.Profile").
		Order("created_at asc, id asc").
		Offset(offset).Limit(limit).
		Find(&postings).Error; err != nil {
		return nil, 0, err
	}
	return postings, total, nil
}
