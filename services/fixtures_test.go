package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"campuslink/database"
	"campuslink/models"
	"campuslink/storage"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ctx = context.Background()

// memoryStore is an in-process BlobStore.
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failPut error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStore) Put(_ context.Context, key, contentType string, _ int64, body io.Reader) (string, error) {
	if m.failPut != nil {
		return "", m.failPut
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
	return key, nil
}

func (m *memoryStore) URL(_ context.Context, ref string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[ref]; !ok {
		return "", errors.New("no such object")
	}
	return "mem://" + ref, nil
}

func (m *memoryStore) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, ref)
	delete(m.types, ref)
	return nil
}

func (m *memoryStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	t     *testing.T
	db    *gorm.DB
	svc   *Services
	blobs *memoryStore
	clock *fakeClock
	seq   int
}

// fixedNow is a Tuesday morning; "today" for every test is 2026-03-10.
var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	// One connection keeps the in-memory database alive and serialises writers.
	sqlDB, err := sql.Open(sqlite.DriverName, "file::memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := database.Open(sqlite.New(sqlite.Config{Conn: sqlDB}), logger.Silent)
	require.NoError(t, err)

	f := &fixture{t: t, db: db, blobs: newMemoryStore(), clock: &fakeClock{now: fixedNow}}
	f.svc = New(db, Options{
		Blobs:        f.blobs,
		Clock:        f.clock.Now,
		EmailDomains: []string{".edu", ".ac", ".org"},
		PasswordCost: bcrypt.MinCost,
	})
	return f
}

func (f *fixture) register(role models.Role) Actor {
	f.t.Helper()
	f.seq++
	email := fmt.Sprintf("%s%d@example.com", role, f.seq)
	var (
		user *models.User
		err  error
	)
	if role == models.RoleAdmin {
		user, err = f.svc.Profiles.CreateAdmin(ctx, "Admin", email, "password123")
	} else {
		user, err = f.svc.Profiles.Register(ctx, RegisterInput{
			Name:     fmt.Sprintf("%s %d", role, f.seq),
			Email:    email,
			Password: "password123",
			Role:     string(role),
		})
	}
	require.NoError(f.t, err)
	return Actor{UserID: user.ID, Role: role}
}

func (f *fixture) admin() AdminCapability {
	f.t.Helper()
	capability, err := f.register(models.RoleAdmin).Admin()
	require.NoError(f.t, err)
	return capability
}

// orgWithStatus registers an organization and forces its verification status.
func (f *fixture) orgWithStatus(status string) Actor {
	f.t.Helper()
	org := f.register(models.RoleOrganization)
	updates := map[string]any{"verification_status": status}
	if status == models.VerificationVerified {
		updates["verified_at"] = fixedNow
	}
	require.NoError(f.t, f.db.Model(&models.Profile{}).Where("user_id = ?", org.UserID).Updates(updates).Error)
	return org
}

func (f *fixture) profile(userID uint) models.Profile {
	f.t.Helper()
	var p models.Profile
	require.NoError(f.t, f.db.Where("user_id = ?", userID).First(&p).Error)
	return p
}

// insertPosting writes a posting row directly, bypassing the approval flow.
func (f *fixture) insertPosting(org Actor, approval, status string, deadline time.Time) *models.Posting {
	f.t.Helper()
	f.seq++
	p := &models.Posting{
		OrganizationID:  org.UserID,
		Title:           fmt.Sprintf("Posting %d", f.seq),
		Description:     "Help wanted",
		Deadline:        deadline,
		Tags:            []string{"Research"},
		OpportunityType: "internship",
		Status:          status,
		ApprovalStatus:  approval,
	}
	require.NoError(f.t, f.db.Create(p).Error)
	return p
}

func (f *fixture) visiblePosting(org Actor) *models.Posting {
	return f.insertPosting(org, models.ApprovalApproved, models.PostingActive, day(7))
}

func (f *fixture) notifications(userID uint) []models.Notification {
	f.t.Helper()
	var out []models.Notification
	require.NoError(f.t, f.db.Where("recipient_id = ?", userID).Order("id").Find(&out).Error)
	return out
}

// day returns the UTC midnight offset days from the fixed "today".
func day(offset int) time.Time {
	return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func pdfUpload(size int) *storage.Upload {
	data := pdfBytes
	if size > len(data) {
		data = append(append([]byte{}, pdfBytes...), bytes.Repeat([]byte{' '}, size-len(pdfBytes))...)
	}
	return &storage.Upload{Filename: "doc.pdf", ContentType: "application/pdf", Size: int64(len(data)), Body: bytes.NewReader(data)}
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "unexpected error: %v", err)
}
