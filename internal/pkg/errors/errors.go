// Package errors provides the application error type shared by services
// and HTTP handlers.
//
// Services return *AppError for every failure a client can act on. Anything
// else reaching the HTTP layer is reported as an internal error.
//
// Import Path: eventforge.io/eventforge/internal/pkg/errors
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured application error with HTTP status and error code.
type AppError struct {
	// Code is a machine-readable error code (e.g., "EVENT_NOT_FOUND").
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// HTTPStatus is the corresponding HTTP status code.
	HTTPStatus int `json:"-"`

	// Params carries structured context for logs. It is not rendered.
	Params map[string]interface{} `json:"-"`

	// FieldErrors carries ordered field-level validation details.
	FieldErrors []FieldError `json:"field_errors,omitempty"`

	// Err is the wrapped underlying error.
	Err error `json:"-"`
}

// FieldError describes a field-level validation failure. Field is the
// request path of the offending value, e.g. "decisions[0].results".
type FieldError struct {
	Field string `json:"field"`
	Descr string `json:"descr"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an existing error into an AppError.
func Wrap(err error, code, message string, httpStatus int) *AppError {
	e := New(code, message, httpStatus)
	e.Err = err
	return e
}

// NotFound creates a 404 error.
func NotFound(code, message string) *AppError {
	return New(code, message, http.StatusNotFound)
}

// BadRequest creates a 400 error.
func BadRequest(code, message string) *AppError {
	return New(code, message, http.StatusBadRequest)
}

// IsAppError checks if an error is an AppError and returns it.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the AppError in err's chain, or "" if none.
func CodeOf(err error) string {
	if appErr, ok := IsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// FieldErrorsOf returns the field errors carried by err, if any.
func FieldErrorsOf(err error) []FieldError {
	if appErr, ok := IsAppError(err); ok {
		return appErr.FieldErrors
	}
	return nil
}
