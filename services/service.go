// Package services holds the verification, posting approval and application
// state machines together with the notification ledger they write to.
package services

import (
	"context"
	"errors"
	"log"
	"time"

	"campuslink/models"
	"campuslink/storage"

	"github.com/jinzhu/now"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures New. Zero values fall back to the defaults below.
type Options struct {
	Blobs          storage.BlobStore
	Clock          func() time.Time
	EmailDomains   []string
	DocumentPolicy storage.Policy
	ResumePolicy   storage.Policy
	LogoPolicy     storage.Policy
	PasswordCost   int
}

// Services bundles every service sharing one database handle.
type Services struct {
	Profiles      *ProfileService
	Sessions      *SessionService
	Verification  *VerificationService
	Postings      *PostingService
	Applications  *ApplicationService
	Notifications *NotificationService
	Admin         *AdminService
}

func New(db *gorm.DB, opts Options) *Services {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if len(opts.DocumentPolicy.AllowedTypes) == 0 {
		opts.DocumentPolicy.AllowedTypes = storage.DocumentTypes
	}
	if opts.DocumentPolicy.MaxBytes == 0 {
		opts.DocumentPolicy.MaxBytes = 5 << 20
	}
	if len(opts.ResumePolicy.AllowedTypes) == 0 {
		opts.ResumePolicy.AllowedTypes = storage.ResumeTypes
	}
	if opts.ResumePolicy.MaxBytes == 0 {
		opts.ResumePolicy.MaxBytes = 5 << 20
	}
	if len(opts.LogoPolicy.AllowedTypes) == 0 {
		opts.LogoPolicy.AllowedTypes = storage.ImageTypes
	}
	if opts.LogoPolicy.MaxBytes == 0 {
		opts.LogoPolicy.MaxBytes = 2 << 20
	}
	if opts.PasswordCost == 0 {
		opts.PasswordCost = bcrypt.DefaultCost
	}

	ledger := &NotificationService{db: db, clock: opts.Clock}
	b := base{db: db, clock: opts.Clock, blobs: opts.Blobs, ledger: ledger}

	postings := &PostingService{base: b, batchSize: 100}
	return &Services{
		Profiles:      &ProfileService{base: b, cost: opts.PasswordCost, logoPolicy: opts.LogoPolicy},
		Sessions:      &SessionService{base: b},
		Verification:  &VerificationService{base: b, policy: VerificationPolicy{EmailDomains: opts.EmailDomains, Document: opts.DocumentPolicy}},
		Postings:      postings,
		Applications:  &ApplicationService{base: b, postings: postings, resumePolicy: opts.ResumePolicy},
		Notifications: ledger,
		Admin:         &AdminService{base: b, postings: postings},
	}
}

type base struct {
	db     *gorm.DB
	clock  func() time.Time
	blobs  storage.BlobStore
	ledger *NotificationService
}

func (b *base) timestamp() time.Time {
	return b.clock().UTC()
}

// today is the UTC start of the current day; deadlines compare against it.
func (b *base) today() time.Time {
	return now.With(b.timestamp()).BeginningOfDay()
}

// discard removes a blob whose owning row was never written.
func (b *base) discard(ctx context.Context, ref string) {
	if ref == "" || b.blobs == nil {
		return
	}
	if err := b.blobs.Delete(ctx, ref); err != nil {
		logStorage("failed to remove orphaned blob %s: %v", ref, err)
	}
}

func logStorage(format string, args ...any) {
	log.Printf("[STORAGE] "+format, args...)
}

func (b *base) profileByUser(tx *gorm.DB, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "Profile not found")
		}
		return nil, err
	}
	return &profile, nil
}

// Page is a 1-based page request.
type Page struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// Bounds returns the row offset and the clamped page size.
func (p Page) Bounds() (offset, limit int) {
	page, limit := p.Page, p.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return (page - 1) * limit, limit
}

// Decision is an admin's verdict on a pending item.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Default is the instance served over HTTP. main sets it once at startup.
var Default *Services
