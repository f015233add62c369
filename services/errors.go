package services

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Kind classifies a failed operation for the caller.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindUnauthenticated     Kind = "unauthenticated"
	KindAccessDenied        Kind = "access_denied"
	KindNotFound            Kind = "not_found"
	KindNotFoundOrProcessed Kind = "not_found_or_processed"
	KindDuplicate           Kind = "duplicate"
	KindInvalidState        Kind = "invalid_state"
	KindNotVerified         Kind = "not_verified"
	KindPostingClosed       Kind = "posting_closed"
)

// Error is returned for every failure the acting user can correct.
// Fields carries per-field messages for validation failures.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrDuplicate) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrValidation          = &Error{Kind: KindValidation}
	ErrUnauthenticated     = &Error{Kind: KindUnauthenticated}
	ErrAccessDenied        = &Error{Kind: KindAccessDenied}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrNotFoundOrProcessed = &Error{Kind: KindNotFoundOrProcessed}
	ErrDuplicate           = &Error{Kind: KindDuplicate}
	ErrInvalidState        = &Error{Kind: KindInvalidState}
	ErrNotVerified         = &Error{Kind: KindNotVerified}
	ErrPostingClosed       = &Error{Kind: KindPostingClosed}
)

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func validationError(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// KindOf returns the kind of a service error, or "" for infrastructure errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// isUniqueViolation recognises duplicate key errors from every supported driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint")
}
