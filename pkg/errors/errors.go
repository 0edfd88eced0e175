package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with an HTTP status code.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("code=%d, message=%s", e.Code, e.Message)
}

// Is matches AppErrors by status code, so copies carrying details still
// compare equal to the sentinel they derive from.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Common errors
var (
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrConflict       = &AppError{Code: http.StatusConflict, Message: "Conflict"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
)

// New creates a new AppError.
func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// WithDetails returns a copy of err with details attached.
func WithDetails(err *AppError, details string) *AppError {
	return &AppError{Code: err.Code, Message: err.Message, Details: details}
}

// ValidationError carries per-field validation failures for form-style input.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

// NewValidation creates an empty ValidationError ready to collect fields.
func NewValidation() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a failure for a field and returns the error for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields[field] = message
	return e
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// GetStatusCode returns the HTTP status code carried by err, defaulting to 500.
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
