package errors

import "net/http"

// Error codes are stable API identifiers. Messages are informational;
// clients should branch on Code.

// Event error codes.
const (
	CodeEventNotFound      = "EVENT_NOT_FOUND"
	CodeEventTitleConflict = "EVENT_TITLE_CONFLICT"
)

// Validation error codes.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeInvalidQuery       = "INVALID_QUERY_PARAMETER"
	CodeInvalidPath        = "INVALID_PATH_PARAMETER"
)

// Auth error codes.
const (
	CodeAuthFailed   = "AUTH_FAILED"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
	CodeForbidden    = "FORBIDDEN"
)

// Generic error codes.
const (
	CodeInternal           = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// titleField is the request path of the event title.
const titleField = "title"

// TitleNotUniqueDescr is reported for a title that already belongs to an event.
const TitleNotUniqueDescr = "The title is not unique."

// Convenience constructors using predefined codes.

// ErrValidationFailed wraps an ordered list of violations into a 400 error.
func ErrValidationFailed(violations []FieldError) *AppError {
	return &AppError{
		Code:        CodeValidationFailed,
		Message:     "event draft is invalid",
		HTTPStatus:  http.StatusBadRequest,
		FieldErrors: violations,
	}
}

// ErrEventNotFound creates an event not found error.
func ErrEventNotFound() *AppError {
	return &AppError{
		Code:       CodeEventNotFound,
		Message:    "event not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// ErrTitleConflict is returned when the store rejects a write because the
// title was taken after validation ran.
func ErrTitleConflict(title string) *AppError {
	return &AppError{
		Code:        CodeEventTitleConflict,
		Message:     "event title already exists",
		HTTPStatus:  http.StatusConflict,
		Params:      map[string]interface{}{"title": title},
		FieldErrors: []FieldError{{Field: titleField, Descr: TitleNotUniqueDescr}},
	}
}

// ErrInvalidRequestBody creates a bad request error for undecodable payloads.
func ErrInvalidRequestBody(err error) *AppError {
	return Wrap(err, CodeInvalidRequestBody, "request body is not a valid event draft", http.StatusBadRequest)
}
