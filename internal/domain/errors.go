package domain

import (
	"errors"
	"fmt"
)

// Application error codes
const (
	EINVALID   = "invalid"    // Invalid input or validation failure
	ENOTFOUND  = "not_found"  // Resource not found
	EDUPLICATE = "duplicate"  // Same submission already received
	ETOOLARGE  = "too_large"  // Request entity too large
	ERATELIMIT = "rate_limit" // Rate limit exceeded
	EINTERNAL  = "internal"   // Internal server error

	// Submission failures, as seen by a client posting the contact form.
	ETIMEOUT  = "timeout"  // No answer within the submission timeout
	ENETWORK  = "network"  // No HTTP response at all (connection refused, DNS, reset)
	EUPSTREAM = "upstream" // The endpoint answered with a failing status
)

// User-facing messages for errors that carry no message of their own.
const (
	ValidationFailedMessage = "Veuillez corriger les champs indiqués."
	InternalErrorMessage    = "Une erreur interne s'est produite. Veuillez réessayer plus tard."
)

// Error represents an application error with structured information.
type Error struct {
	Code    string // Machine-readable error code
	Op      string // Operation that failed (e.g., "submission.submit")
	Message string // Human-readable message
	Err     error  // Underlying error

	// HTTPStatus is the status returned by a remote endpoint, for EUPSTREAM
	// errors. Zero means no response was received.
	HTTPStatus int
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf creates a new Error with the given code, operation, and formatted message.
func Errorf(code, op, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, code, op, message string) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// ErrorCode returns the code of the root error, or EINTERNAL if none.
// Validation errors report EINVALID.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return EINVALID
	}
	return EINTERNAL
}

// ErrorMessage returns the human-readable message of the error.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Code == EINTERNAL {
			return InternalErrorMessage
		}
		return e.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ValidationFailedMessage
	}
	return InternalErrorMessage
}

// ErrorOp returns the operation of the root error, if any.
func ErrorOp(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// ErrorHTTPStatus returns the remote HTTP status carried by the error, or 0.
func ErrorHTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus
	}
	return 0
}

// Convenience constructors for common error types

// NotFound creates a not found error.
func NotFound(op, resource, id string) *Error {
	return &Error{
		Code:    ENOTFOUND,
		Op:      op,
		Message: fmt.Sprintf("%s %q not found", resource, id),
	}
}

// Invalid creates a validation error.
func Invalid(op, message string) *Error {
	return &Error{
		Code:    EINVALID,
		Op:      op,
		Message: message,
	}
}

// Duplicate creates an error for a submission that was already received.
func Duplicate(op, message string) *Error {
	return &Error{
		Code:    EDUPLICATE,
		Op:      op,
		Message: message,
	}
}

// Internal creates an internal error, wrapping the underlying error.
func Internal(err error, op, message string) *Error {
	return &Error{
		Code:    EINTERNAL,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// RateLimit creates a rate limit error.
func RateLimit(op string) *Error {
	return &Error{
		Code:    ERATELIMIT,
		Op:      op,
		Message: "Too many requests. Please try again later.",
	}
}

// Timeout creates a submission timeout error.
func Timeout(err error, op string) *Error {
	return &Error{
		Code:    ETIMEOUT,
		Op:      op,
		Message: "request timed out",
		Err:     err,
	}
}

// Network creates an error for a request that never got an HTTP response.
func Network(err error, op string) *Error {
	return &Error{
		Code:    ENETWORK,
		Op:      op,
		Message: "endpoint unreachable",
		Err:     err,
	}
}

// Upstream creates an error for a failing HTTP status from a remote endpoint.
func Upstream(op string, status int) *Error {
	return &Error{
		Code:       EUPSTREAM,
		Op:         op,
		Message:    fmt.Sprintf("endpoint returned status %d", status),
		HTTPStatus: status,
	}
}

// ValidationError represents field-level validation errors.
type ValidationError struct {
	Op     string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: validation failed", e.Op)
}

// NewValidationError creates a new validation error with the first field error.
func NewValidationError(op, field, message string) *ValidationError {
	return &ValidationError{
		Op: op,
		Fields: map[string]string{
			field: message,
		},
	}
}

// AddFieldError adds a field error to an existing validation error.
// If err is not a ValidationError, returns a new one.
func AddFieldError(err error, field, message string) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		ve.Fields[field] = message
		return ve
	}
	return NewValidationError("", field, message)
}
