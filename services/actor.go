package services

import (
	"time"

	"campuslink/models"
)

// Actor is the authenticated caller as established by the request layer.
type Actor struct {
	UserID uint
	Role   models.Role
}

func (a Actor) Authenticated() bool {
	return a.UserID != 0 && a.Role.Valid()
}

// AdminCapability proves the holder passed the admin check.
// Only Actor.Admin can produce a usable one.
type AdminCapability struct {
	userID uint
}

func (c AdminCapability) UserID() uint {
	return c.userID
}

func (c AdminCapability) valid() bool {
	return c.userID != 0
}

// Admin mints the admin capability for actors holding the Admin role.
func (a Actor) Admin() (AdminCapability, error) {
	if !a.Authenticated() || a.Role != models.RoleAdmin {
		return AdminCapability{}, newError(KindAccessDenied, "Admin role required")
	}
	return AdminCapability{userID: a.UserID}, nil
}

func (a Actor) require(role models.Role, message string) error {
	if !a.Authenticated() || a.Role != role {
		return newError(KindAccessDenied, message)
	}
	return nil
}

func requireAdmin(admin AdminCapability) error {
	if !admin.valid() {
		return newError(KindAccessDenied, "Admin role required")
	}
	return nil
}

// SessionContext is the idle state of the caller's session, supplied by the request layer.
type SessionContext struct {
	LastActivity time.Time
}

// Expired reports whether the session idled longer than timeout as of now.
func (s SessionContext) Expired(now time.Time, timeout time.Duration) bool {
	if timeout <= 0 || s.LastActivity.IsZero() {
		return false
	}
	return now.Sub(s.LastActivity) > timeout
}
