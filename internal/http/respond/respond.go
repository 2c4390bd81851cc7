// Package respond writes JSON bodies and the shared error envelope used by every handler.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	CodeInvalidBody       = "invalid_body"
	CodeValidation        = "validation_error"
	CodeInvalidTransition = "invalid_transition"
	CodeUnknownEntity     = "unknown_entity"
	CodeNotFound          = "not_found"
	CodeConflict          = "conflict"
	CodeInternal          = "internal_error"
)

type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{Error: ErrorDetail{Message: message, Code: code}})
}

func FieldError(w http.ResponseWriter, status int, code, field, message string) {
	JSON(w, status, ErrorBody{Error: ErrorDetail{Message: message, Code: code, Field: field}})
}

// Internal logs err and answers 500 without leaking its text.
func Internal(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	Error(w, http.StatusInternalServerError, CodeInternal, "internal error")
}
