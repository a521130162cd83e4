// Package httpx holds the JSON conventions of the portal's HTTP surface:
// the success and error envelopes and the mapping from domain errors to
// status codes.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diewo77/staff-portal/internal/store"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// JSON writes payload with the given status. A nil payload writes null.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if payload == nil {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("null"))
		return
	}
	// Marshal before the header goes out so a bad payload never sends a
	// 2xx with a broken body.
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// JSONError writes the error envelope.
func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// DomainError translates a store error into its status code and envelope.
// Persistence failures surface as 500s, visible and retryable, never
// swallowed.
func DomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		JSONError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, store.ErrConflict):
		JSONError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, store.ErrNotFound):
		JSONError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		JSONError(w, http.StatusInternalServerError, "persistence_error", nil)
	}
}
