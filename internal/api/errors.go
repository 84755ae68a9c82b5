package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wrenshall/mixcore/internal/console"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest           = "bad_request"
	ErrCodeNotFound             = "not_found"
	ErrCodeInternal             = "internal_error"
	ErrCodeNotConnected         = "not_connected"
	ErrCodeReadOnly             = "read_only"
	ErrCodeTypeMismatch         = "type_mismatch"
	ErrCodeConfirmationRequired = "confirmation_required"
	ErrCodeConnectionFailed     = "connection_failed"
	ErrCodeSendFailed           = "send_failed"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeConsoleError maps console sentinel errors onto HTTP responses.
func writeConsoleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, console.ErrNotConnected):
		writeError(w, http.StatusConflict, ErrCodeNotConnected, "no active console session")
	case errors.Is(err, console.ErrInvalidEndpoint):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, console.ErrReadOnly):
		writeError(w, http.StatusBadRequest, ErrCodeReadOnly, err.Error())
	case errors.Is(err, console.ErrTypeMismatch):
		writeError(w, http.StatusBadRequest, ErrCodeTypeMismatch, err.Error())
	case errors.Is(err, console.ErrConnectionFailed):
		writeError(w, http.StatusBadGateway, ErrCodeConnectionFailed, err.Error())
	default:
		writeError(w, http.StatusBadGateway, ErrCodeSendFailed, err.Error())
	}
}
