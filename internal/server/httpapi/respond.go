package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/server/observability"
)

const maxJSONBody = 1 << 20

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorBody{Error: code})
}

// errorStatus maps a service error to its HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrAuthorization):
		return http.StatusForbidden, "access_denied"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, common.ErrAlreadyDecided):
		return http.StatusConflict, "already_decided"
	case errors.Is(err, common.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "upstream_unavailable"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}

// writeServiceError answers with the mapped status. Client errors carry the
// error text; server errors are logged and reported instead.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		observability.CaptureRequestErr(r.Context(), err, map[string]string{"path": r.URL.Path})
		writeError(w, status, code)
		return
	}
	if status == http.StatusBadGateway {
		s.log.Warn(r.Context(), "upstream failure", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody{Error: code, Message: err.Error()})
}
