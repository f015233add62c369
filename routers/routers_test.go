package routers_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campuslink/config"
	"campuslink/database"
	"campuslink/models"
	adminRoutes "campuslink/routers/adminRoutes"
	authRoutes "campuslink/routers/authRoutes"
	notificationRoutes "campuslink/routers/notificationRoutes"
	organizationRoutes "campuslink/routers/organizationRoutes"
	postingRoutes "campuslink/routers/postingRoutes"
	studentRoutes "campuslink/routers/studentRoutes"
	userProfileRoutes "campuslink/routers/userRoutes"
	"campuslink/services"
	"campuslink/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	t   *testing.T
	app *fiber.App
	db  *gorm.DB
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	config.AppConfig = &config.Config{
		JWTKey:               "test-secret",
		AutoLogout:           time.Hour,
		ApplyRateLimit:       100,
		ApplyRateLimitWindow: time.Minute,
	}

	sqlDB, err := sql.Open(sqlite.DriverName, "file::memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := database.Open(sqlite.New(sqlite.Config{Conn: sqlDB}), logger.Silent)
	require.NoError(t, err)

	services.Default = services.New(db, services.Options{
		Blobs:        storage.NewLocalStore(t.TempDir(), "/uploads"),
		EmailDomains: []string{".edu"},
		PasswordCost: bcrypt.MinCost,
	})

	app := fiber.New()
	authRoutes.SetupAuthRoutes(app)
	userProfileRoutes.SetupUserRoutes(app)
	postingRoutes.SetupPostingRoutes(app)
	studentRoutes.SetupStudentRoutes(app, nil)
	organizationRoutes.SetupOrganizationRoutes(app)
	adminRoutes.SetupAdminRoutes(app)
	notificationRoutes.SetupNotificationRoutes(app)

	return &harness{t: t, app: app, db: db}
}

func (h *harness) call(method, path, token string, body any) (int, envelope) {
	h.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(h.t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	var out envelope
	require.NoError(h.t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (h *harness) register(email, role string) uint {
	h.t.Helper()
	status, out := h.call(http.MethodPost, "/auth/register", "", fiber.Map{
		"name":     "Test " + role,
		"email":    email,
		"password": "password123",
		"role":     role,
	})
	require.Equal(h.t, http.StatusCreated, status, out.Message)
	var user struct {
		ID uint `json:"ID"`
	}
	require.NoError(h.t, json.Unmarshal(out.Data, &user))
	return user.ID
}

func (h *harness) login(email string) string {
	h.t.Helper()
	status, out := h.call(http.MethodPost, "/auth/login", "", fiber.Map{"email": email, "password": "password123"})
	require.Equal(h.t, http.StatusOK, status, out.Message)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(h.t, json.Unmarshal(out.Data, &data))
	require.NotEmpty(h.t, data.Token)
	return data.Token
}

func (h *harness) adminToken() string {
	h.t.Helper()
	_, err := services.Default.Profiles.CreateAdmin(context.Background(), "Admin", "admin@example.com", "password123")
	require.NoError(h.t, err)
	return h.login("admin@example.com")
}

func (h *harness) verify(userID uint) {
	h.t.Helper()
	require.NoError(h.t, h.db.Model(&models.Profile{}).Where("user_id = ?", userID).
		Updates(map[string]any{"verification_status": models.VerificationVerified, "verified_at": time.Now().UTC()}).Error)
}

func id(t *testing.T, raw json.RawMessage) uint {
	t.Helper()
	var v struct {
		ID uint `json:"ID"`
	}
	require.NoError(t, json.Unmarshal(raw, &v))
	require.NotZero(t, v.ID)
	return v.ID
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func TestOpportunityLifecycle(t *testing.T) {
	h := newHarness(t)

	orgID := h.register("club@example.com", "organization")
	h.register("student@example.com", "student")
	orgToken := h.login("club@example.com")
	studentToken := h.login("student@example.com")
	adminToken := h.adminToken()

	posting := fiber.Map{
		"title":            "Research assistant",
		"description":      "Help with lab work",
		"deadline":         futureDate(14),
		"opportunity_type": "assistantship",
		"tags":             []string{"Biology", "lab"},
	}

	status, out := h.call(http.MethodPost, "/organization/postings", orgToken, posting)
	assert.Equal(t, http.StatusForbidden, status, "unverified organizations cannot post")

	h.verify(orgID)
	status, out = h.call(http.MethodPost, "/organization/postings", orgToken, posting)
	require.Equal(t, http.StatusCreated, status, out.Message)
	postingID := id(t, out.Data)

	var list struct {
		Postings []json.RawMessage `json:"postings"`
	}
	status, out = h.call(http.MethodGet, "/postings", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(out.Data, &list))
	assert.Empty(t, list.Postings, "pending postings stay hidden")

	status, out = h.call(http.MethodPatch, fmt.Sprintf("/admin/postings/%d", postingID), adminToken, fiber.Map{"action": "approve"})
	require.Equal(t, http.StatusOK, status, out.Message)

	status, out = h.call(http.MethodPatch, fmt.Sprintf("/admin/postings/%d", postingID), adminToken, fiber.Map{"action": "approve"})
	assert.Equal(t, http.StatusConflict, status, "a processed posting cannot be reviewed twice")

	status, out = h.call(http.MethodGet, "/postings?type=assistantship&tag=biology", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(out.Data, &list))
	assert.Len(t, list.Postings, 1)

	var eligibility services.Eligibility
	status, out = h.call(http.MethodGet, fmt.Sprintf("/postings/%d/can-apply", postingID), "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(out.Data, &eligibility))
	assert.False(t, eligibility.CanApply)
	assert.Equal(t, "Please log in to apply", eligibility.Message)

	status, out = h.call(http.MethodGet, fmt.Sprintf("/postings/%d/can-apply", postingID), studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(out.Data, &eligibility))
	assert.True(t, eligibility.CanApply)

	status, out = h.call(http.MethodPost, fmt.Sprintf("/student/postings/%d/apply", postingID), studentToken, fiber.Map{"note": "Keen to help"})
	require.Equal(t, http.StatusCreated, status, out.Message)
	applicationID := id(t, out.Data)

	status, _ = h.call(http.MethodPost, fmt.Sprintf("/student/postings/%d/apply", postingID), studentToken, fiber.Map{"note": "Again"})
	assert.Equal(t, http.StatusConflict, status)

	status, out = h.call(http.MethodGet, fmt.Sprintf("/organization/postings/%d/applications", postingID), orgToken, nil)
	require.Equal(t, http.StatusOK, status)
	var applications []json.RawMessage
	require.NoError(t, json.Unmarshal(out.Data, &applications))
	assert.Len(t, applications, 1)

	status, out = h.call(http.MethodPatch, fmt.Sprintf("/organization/applications/%d/status", applicationID), orgToken, fiber.Map{"status": "under_review"})
	require.Equal(t, http.StatusOK, status, out.Message)

	status, _ = h.call(http.MethodPatch, fmt.Sprintf("/organization/applications/%d/status", applicationID), orgToken, fiber.Map{"status": "submitted"})
	assert.Equal(t, http.StatusConflict, status)

	status, out = h.call(http.MethodGet, fmt.Sprintf("/applications/%d", applicationID), studentToken, nil)
	require.Equal(t, http.StatusOK, status, out.Message)

	var inbox services.NotificationList
	status, out = h.call(http.MethodGet, "/notifications", studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(out.Data, &inbox))
	require.Len(t, inbox.Items, 1)
	assert.Equal(t, models.NotificationApplicationStatusUpdate, inbox.Items[0].Type)
	assert.Zero(t, inbox.UnreadCount, "viewing the inbox marks it read")
}

func TestRoleGates(t *testing.T) {
	h := newHarness(t)

	h.register("student@example.com", "student")
	studentToken := h.login("student@example.com")

	status, _ := h.call(http.MethodGet, "/student/applications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.call(http.MethodGet, "/organization/postings", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = h.call(http.MethodGet, "/admin/stats", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = h.call(http.MethodGet, "/student/applications", studentToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, out := h.call(http.MethodPost, "/auth/register", "", fiber.Map{
		"name": "Sneaky", "email": "sneaky@example.com", "password": "password123", "role": "admin",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(out.Data), "role")
}

func TestSessionLifecycle(t *testing.T) {
	h := newHarness(t)

	h.register("student@example.com", "student")
	token := h.login("student@example.com")

	status, _ := h.call(http.MethodGet, "/user/profile", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = h.call(http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = h.call(http.MethodGet, "/user/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status, "logged out tokens are rejected")

	token = h.login("student@example.com")
	config.AppConfig.AutoLogout = time.Nanosecond
	time.Sleep(time.Millisecond)
	status, out := h.call(http.MethodGet, "/user/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, out.Message, "inactivity")

	config.AppConfig.AutoLogout = time.Hour
	status, _ = h.call(http.MethodGet, "/user/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status, "an idle session is ended, not just refused")
}

func TestLoginFailures(t *testing.T) {
	h := newHarness(t)
	h.register("student@example.com", "student")

	status, _ := h.call(http.MethodPost, "/auth/login", "", fiber.Map{"email": "student@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.call(http.MethodPost, "/auth/login", "", fiber.Map{"email": "not-an-email", "password": "password123"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}
