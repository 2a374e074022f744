package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fnaconcept/site/internal/domain"
)

// ErrorResponse writes an error response to the client.
// It maps domain error codes to HTTP status codes and formats appropriately
// based on the Accept header (JSON for API requests, plain text otherwise).
func ErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	// Extract structured info from error
	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)
	op := domain.ErrorOp(err)

	// Map to HTTP status
	status := ErrorCodeToHTTPStatus(code)

	// Log error with context
	logError(logger, r, err, code, op, status)

	// Check if request expects JSON
	if acceptsJSON(r) {
		writeJSONError(w, status, code, message)
		return
	}

	// Plain text error for HTML responses
	http.Error(w, message, status)
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest // 400
	case domain.ENOTFOUND:
		return http.StatusNotFound // 404
	case domain.EDUPLICATE:
		return http.StatusConflict // 409
	case domain.ETOOLARGE:
		return http.StatusRequestEntityTooLarge // 413
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests // 429
	case domain.ENETWORK, domain.EUPSTREAM:
		return http.StatusBadGateway // 502
	case domain.ETIMEOUT:
		return http.StatusGatewayTimeout // 504
	case domain.EINTERNAL:
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}

// ValidationErrorResponse writes validation errors (field-level) to the response.
// For JSON requests, returns structured field errors.
// For HTML requests, returns a simple error message.
func ValidationErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		// Not a validation error, fall back to standard error response
		ErrorResponse(w, r, logger, err)
		return
	}

	logger.Info("validation error",
		"op", ve.Op,
		"field_count", len(ve.Fields),
		"path", r.URL.Path,
	)

	if acceptsJSON(r) {
		writeValidationJSON(w, ve)
		return
	}

	// For HTML forms, return simple error message without exposing internal details
	http.Error(w, domain.ValidationFailedMessage, http.StatusUnprocessableEntity)
}

// NotFoundResponse is a convenience wrapper for 404 errors.
func NotFoundResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	err := domain.Errorf(domain.ENOTFOUND, "", "Page introuvable.")
	ErrorResponse(w, r, logger, err)
}

// InternalErrorResponse logs err and answers 500 with InternalErrorMessage.
func InternalErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	ErrorResponse(w, r, logger, domain.Internal(err, "", "unexpected error"))
}

// logError logs the error with appropriate level based on status code.
func logError(logger *slog.Logger, r *http.Request, err error, code, op string, status int) {
	attrs := []any{
		"error", err.Error(),
		"code", code,
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
	}

	// Add operation if present
	if op != "" {
		attrs = append(attrs, "op", op)
	}

	switch {
	case status >= 500:
		logger.Error("server error", attrs...)
	case status >= 400:
		logger.Info("client error", attrs...)
	}
}

// acceptsJSON reports whether the client asked for JSON. Browsers and htmx
// get plain text.
func acceptsJSON(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	var body JSONError
	body.Error.Code = code
	body.Error.Message = message
	writeJSON(w, status, body)
}

// writeValidationJSON answers 422 with the field errors of ve.
func writeValidationJSON(w http.ResponseWriter, ve *domain.ValidationError) {
	var body JSONError
	body.Error.Code = domain.EINVALID
	body.Error.Message = domain.ValidationFailedMessage
	body.Error.Fields = ve.Fields
	writeJSON(w, http.StatusUnprocessableEntity, body)
}

// writeJSON writes v as a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError is a typed response structure for API errors.
type JSONError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	} `json:"error"`
}
