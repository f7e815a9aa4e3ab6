package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"devconnect_go/internal/domain"
)

// writeJSON is a small helper to send JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps domain sentinel errors to HTTP status codes. Validation
// and authorization failures surface directly; conflicts tell the caller to
// re-fetch state; transient store failures come back as 503 and are safe to
// retry.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrSelfRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNotConnected):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateRequest),
		errors.Is(err, domain.ErrAlreadyReviewed),
		errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrTransient):
		status = http.StatusServiceUnavailable
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
