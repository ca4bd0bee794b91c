package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCacheNotFound means no persisted calendar cache exists yet.
	ErrCacheNotFound = errors.New("calendar cache not found")

	// ErrCorruptCache means the persisted cache file exists but could not be
	// decoded or fails structural validation. Callers treat it as not found.
	ErrCorruptCache = errors.New("calendar cache is corrupt")

	// ErrDataSourceUnavailable means every configured holiday provider failed
	// for a fetch. The gateway does not retry; that is the caller's call.
	ErrDataSourceUnavailable = errors.New("all calendar data sources unavailable")

	// ErrCalendarUnavailable means a year the calculation needs could not be
	// obtained. The calculation aborts; there is no partial result.
	ErrCalendarUnavailable = errors.New("required calendar year unavailable")
)

// ValidationError rejects bad input before any calendar work starts. It is
// never retried, unlike data-availability errors.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a request field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
