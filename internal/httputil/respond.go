// Package httputil provides JSON response helpers shared by the gateway
// handlers and middleware.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/appsift/appstore-gateway/internal/errors"
)

// WriteJSON marshals data and writes it with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteRawJSON writes an already-encoded JSON payload verbatim. The
// catalog owns the payload shape; re-marshaling would reorder fields.
func WriteRawJSON(w http.ResponseWriter, status int, payload json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// WriteError writes the `{"error": message}` envelope.
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// WriteServiceError writes a classified error as the standard envelope.
func WriteServiceError(w http.ResponseWriter, err *errors.ServiceError) {
	if err == nil {
		WriteError(w, http.StatusInternalServerError, "unknown error")
		return
	}
	WriteError(w, err.HTTPStatus, err.Message)
}

// Unauthorized writes a 401 envelope.
func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	WriteError(w, http.StatusUnauthorized, message)
}

// InternalError writes a 500 envelope.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}
