// Package common defines shared constants and sentinel errors used across
// server and client layers of Journey Connect. Callers should use errors.Is
// to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrValidation marks a missing or malformed required field.
	ErrValidation = errors.New("validation error")

	// ErrAuthorization is returned when the caller's role lacks permission.
	ErrAuthorization = errors.New("access denied")

	// ErrAlreadyDecided is returned when a rent payment was already
	// confirmed or rejected.
	ErrAlreadyDecided = errors.New("payment already decided")

	// ErrUpstreamUnavailable wraps failures of the auth provider or the
	// object store.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Session lifecycle errors.
	ErrSessionExpired = errors.New("session expired")
)

// Invalid builds a validation error naming the offending field.
func Invalid(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}
