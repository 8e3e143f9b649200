package xerrors

import "errors"
import "github.com/jackc/pgx/v5/pgconn"

func ParsePGErrorCode(err error) string {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrTransport      = errors.New("transport failure")
)

// Session / deep link
var (
	ErrNoSession     = errors.New("no active session")
	ErrInvalidTokens = errors.New("invalid or consumed tokens")
	ErrStaleResult   = errors.New("stale async result")
)

// Profile creation / update
var (
	ErrUserIDRequired   = errors.New("user ID required")
	ErrPhoneRequired    = errors.New("phone number is required")
	ErrFullNameRequired = errors.New("full name is required")
	ErrCityRequired     = errors.New("city is required")
	ErrInvalidPhone     = errors.New("invalid 10-digit phone number")
	ErrNoProfile        = errors.New("profile not found")
	ErrNoRowReturned    = errors.New("no row returned from upsert")
)

// Community content
var (
	ErrNotVerified        = errors.New("profile not verified for write access")
	ErrRecordMissing      = errors.New("record not found")
	ErrTitleRequired      = errors.New("title is required")
	ErrBloodGroupRequired = errors.New("blood group is required")
)

// ValidationError keeps the offending field so handlers can echo it back.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Err.Error() + " (field: " + e.Field + ")"
}

func (e *ValidationError) Unwrap() error { return e.Err }

func NewValidation(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
