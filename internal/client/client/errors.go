package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/journeyconnect/journeyconnect/internal/common"
)

// ErrUnavailable is returned when the server cannot be reached at all.
var ErrUnavailable = errors.New("server unavailable")

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("%s (%d)", e.Code, e.Status)
}

// Unwrap maps the status back to the matching sentinel error.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return common.ErrValidation
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusForbidden:
		return common.ErrAuthorization
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrAlreadyDecided
	case http.StatusBadGateway:
		return common.ErrUpstreamUnavailable
	default:
		return common.ErrorInternal
	}
}
