package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"unicode/utf8"

	"campuslink/models"
	"campuslink/storage"

	"gorm.io/gorm"
)

const maxNoteLength = 2000

// applicationTransitions is the forward graph organizations may drive.
var applicationTransitions = map[string][]string{
	models.ApplicationSubmitted:   {models.ApplicationUnderReview},
	models.ApplicationUnderReview: {models.ApplicationAccepted, models.ApplicationRejected},
}

var applicationStatuses = []string{
	models.ApplicationSubmitted,
	models.ApplicationUnderReview,
	models.ApplicationAccepted,
	models.ApplicationRejected,
	models.ApplicationWithdrawn,
}

type ApplicationService struct {
	base
	postings     *PostingService
	resumePolicy storage.Policy
}

// Apply records a student's application to a visible posting.
// Uniqueness per (student, posting) is enforced by the database index.
func (s *ApplicationService) Apply(ctx context.Context, actor Actor, postingID uint, resume *storage.Upload, note string) (*models.Application, error) {
	if err := actor.require(models.RoleStudent, "Only students can apply"); err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) > maxNoteLength {
		return nil, validationError("Validation failed", map[string]string{"note": fmt.Sprintf("note must be at most %d characters", maxNoteLength)})
	}

	db := s.db.WithContext(ctx)
	posting, err := s.postings.loadVisible(db, postingID)
	if err != nil {
		return nil, err
	}

	// Saves an upload for the common case; the unique index still decides.
	if _, err := s.existing(db, actor.UserID, postingID); err == nil {
		return nil, newError(KindDuplicate, "You have already applied to this opportunity")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var ref string
	if resume != nil {
		ref, err = s.storeUpload(ctx, "resume", resume, s.resumePolicy, fmt.Sprintf("resumes/%d", actor.UserID))
		if err != nil {
			return nil, err
		}
	}

	application := models.Application{
		StudentID:       actor.UserID,
		PostingID:       posting.ID,
		Resume:          ref,
		Note:            note,
		Status:          models.ApplicationSubmitted,
		StatusUpdatedAt: s.timestamp(),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&application).Error; err != nil {
			if isUniqueViolation(err) {
				return newError(KindDuplicate, "You have already applied to this opportunity")
			}
			return err
		}

		var student models.Profile
		name := "A student"
		if err := tx.Where("user_id = ?", actor.UserID).First(&student).Error; err == nil && student.FullName != "" {
			name = student.FullName
		}
		return s.ledger.Append(tx, NotificationInput{
			RecipientID:      posting.OrganizationID,
			SenderID:         &actor.UserID,
			Type:             models.NotificationNewApplication,
			Title:            "New application received",
			Message:          fmt.Sprintf("%s applied to %q.", name, posting.Title),
			RelatedPostingID: &posting.ID,
		})
	})
	if err != nil {
		s.discard(ctx, ref)
		return nil, err
	}

	log.Printf("[APPLICATION] student %d applied to posting %d", actor.UserID, posting.ID)
	return &application, nil
}

func (s *ApplicationService) existing(tx *gorm.DB, studentID, postingID uint) (*models.Application, error) {
	var application models.Application
	err := tx.Where("student_id = ? AND posting_id = ?", studentID, postingID).Take(&application).Error
	if err != nil {
		return nil, err
	}
	return &application, nil
}

func findApplication(tx *gorm.DB, id uint) (*models.Application, error) {
	var application models.Application
	err := tx.Preload("Posting", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).First(&application, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "Application not found")
		}
		return nil, err
	}
	return &application, nil
}

// UpdateStatus moves an application along the review graph on behalf of the
// organization owning its posting, and notifies the student.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor Actor, applicationID uint, status string) (*models.Application, error) {
	if err := actor.require(models.RoleOrganization, "Only organizations can update application status"); err != nil {
		return nil, err
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if !slices.Contains(applicationStatuses, status) {
		return nil, validationError("Validation failed", map[string]string{"status": "status must be one of: " + strings.Join(applicationStatuses, ", ")})
	}

	var application *models.Application
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		application, err = findApplication(tx, applicationID)
		if err != nil {
			return err
		}
		if application.Posting == nil || application.Posting.OrganizationID != actor.UserID {
			return newError(KindAccessDenied, "You do not own this posting")
		}

		from := application.Status
		if !slices.Contains(applicationTransitions[from], status) {
			return newError(KindInvalidState, fmt.Sprintf("Cannot move an application from %s to %s", from, status))
		}

		changedAt := s.timestamp()
		res := tx.Model(&models.Application{}).
			Where("id = ? AND status = ?", applicationID, from).
			Updates(map[string]any{"status": status, "status_updated_at": changedAt})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return newError(KindInvalidState, "Application status changed, reload and try again")
		}
		application.Status = status
		application.StatusUpdatedAt = changedAt

		return s.ledger.Append(tx, NotificationInput{
			RecipientID:      application.StudentID,
			SenderID:         &actor.UserID,
			Type:             models.NotificationApplicationStatusUpdate,
			Title:            "Application status updated",
			Message:          fmt.Sprintf("Your application to %q is now %s.", application.Posting.Title, strings.ReplaceAll(status, "_", " ")),
			RelatedPostingID: &application.PostingID,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[APPLICATION] application %d moved to %s by organization %d", applicationID, status, actor.UserID)
	return application, nil
}

// Withdraw lets a student retract an application that has not been decided.
func (s *ApplicationService) Withdraw(ctx context.Context, actor Actor, applicationID uint) (*models.Application, error) {
	if err := actor.require(models.RoleStudent, "Only students can withdraw applications"); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	application, err := findApplication(db, applicationID)
	if err != nil {
		return nil, err
	}
	if application.StudentID != actor.UserID {
		return nil, newError(KindAccessDenied, "You can only withdraw your own applications")
	}

	changedAt := s.timestamp()
	res := db.Model(&models.Application{}).
		Where("id = ? AND status IN ?", applicationID, []string{models.ApplicationSubmitted, models.ApplicationUnderReview}).
		Updates(map[string]any{"status": models.ApplicationWithdrawn, "status_updated_at": changedAt})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, newError(KindInvalidState, fmt.Sprintf("An application that is %s cannot be withdrawn", strings.ReplaceAll(application.Status, "_", " ")))
	}
	application.Status = models.ApplicationWithdrawn
	application.StatusUpdatedAt = changedAt
	return application, nil
}

// Eligibility tells the student page whether to offer the apply button.
type Eligibility struct {
	CanApply            bool                `json:"can_apply"`
	ExistingApplication *models.Application `json:"existing_application"`
	Message             string              `json:"message"`
}

func (s *ApplicationService) CanApply(ctx context.Context, actor Actor, postingID uint) (*Eligibility, error) {
	if !actor.Authenticated() {
		return &Eligibility{Message: "Please log in to apply"}, nil
	}
	if actor.Role != models.RoleStudent {
		return &Eligibility{Message: "Only students can apply"}, nil
	}

	db := s.db.WithContext(ctx)
	if _, err := s.postings.loadVisible(db, postingID); err != nil {
		if errors.Is(err, ErrPostingClosed) {
			return &Eligibility{Message: err.Error()}, nil
		}
		return nil, err
	}

	existing, err := s.existing(db, actor.UserID, postingID)
	switch {
	case err == nil:
		return &Eligibility{ExistingApplication: existing, Message: "You have already applied to this opportunity"}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return &Eligibility{CanApply: true, Message: "Apply now"}, nil
}

// ListMine returns the calling student's applications, newest first.
func (s *ApplicationService) ListMine(ctx context.Context, actor Actor) ([]models.Application, error) {
	if err := actor.require(models.RoleStudent, "Only students have applications"); err != nil {
		return nil, err
	}
	var applications []models.Application
	q := s.db.WithContext(ctx).Preload("Posting", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
	err := withPublicOrganization(q, "Posting.").
		Where("student_id = ?", actor.UserID).
		Order("created_at desc, id desc").
		Find(&applications).Error
	return applications, err
}

// ListForOrganization returns applications to the caller's postings,
// optionally restricted to one posting.
func (s *ApplicationService) ListForOrganization(ctx context.Context, actor Actor, postingID uint) ([]models.Application, error) {
	db := s.db.WithContext(ctx)
	if postingID != 0 {
		if _, err := s.postings.owned(db, actor, postingID); err != nil {
			return nil, err
		}
	} else if err := actor.require(models.RoleOrganization, "Only organizations can review applications"); err != nil {
		return nil, err
	}

	q := db.Model(&models.Application{}).
		Joins("JOIN postings ON postings.id = applications.posting_id AND postings.deleted_at IS NULL").
		Where("postings.organization_id = ?", actor.UserID)
	if postingID != 0 {
		q = q.Where("applications.posting_id = ?", postingID)
	}

	var applications []models.Application
	err := q.Select("applications.*").
		Preload("Student.Profile").
		Preload("Posting").
		Order("applications.created_at desc, applications.id desc").
		Find(&applications).Error
	return applications, err
}

// ApplicationDetail adds a resolved resume link to an application.
type ApplicationDetail struct {
	models.Application
	ResumeURL string `json:"resume_url"`
}

// Detail is readable by the applicant, the posting's organization and admins.
func (s *ApplicationService) Detail(ctx context.Context, actor Actor, applicationID uint) (*ApplicationDetail, error) {
	if !actor.Authenticated() {
		return nil, newError(KindUnauthenticated, "Please log in")
	}
	db := s.db.WithContext(ctx)
	application, err := findApplication(db, applicationID)
	if err != nil {
		return nil, err
	}

	allowed := false
	switch actor.Role {
	case models.RoleStudent:
		allowed = application.StudentID == actor.UserID
	case models.RoleOrganization:
		allowed = application.Posting != nil && application.Posting.OrganizationID == actor.UserID
	case models.RoleAdmin:
		allowed = true
	}
	if !allowed {
		return nil, newError(KindAccessDenied, "You cannot view this application")
	}

	var student models.User
	if err := db.Preload("Profile").First(&student, application.StudentID).Error; err == nil {
		application.Student = &student
	}
	return &ApplicationDetail{Application: *application, ResumeURL: s.resolveURL(ctx, application.Resume)}, nil
}
