package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes for the operation taxonomy
const (
	CodeUnauthenticated  ErrorCode = "AUTH_UNAUTHENTICATED"
	CodePermissionDenied ErrorCode = "AUTH_PERMISSION_DENIED"
	CodeNotFound         ErrorCode = "RES_NOT_FOUND"
	CodeInvalidArgument  ErrorCode = "REQ_INVALID_ARGUMENT"
	CodeInternal         ErrorCode = "SRV_INTERNAL"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new application error
func New(code ErrorCode, message string, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// Constructors per taxonomy entry

func Unauthenticated(details string) *AppError {
	return New(CodeUnauthenticated, "No caller identity supplied", details, nil)
}

func PermissionDenied(details string) *AppError {
	return New(CodePermissionDenied, "Caller does not own the target event", details, nil)
}

func NotFound(resource, id string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), fmt.Sprintf("%s ID: %s", resource, id), nil)
}

func InvalidArgument(details string) *AppError {
	return New(CodeInvalidArgument, "Invalid argument", details, nil)
}

func Internal(details string, cause error) *AppError {
	return New(CodeInternal, "Internal error", details, cause)
}

// Code extracts the error code, defaulting to CodeInternal for untyped errors.
func Code(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Wrap maps an arbitrary error onto the taxonomy: typed errors pass through
// untouched, anything else is surfaced as Internal. This is the single
// error-mapping layer every operation boundary goes through.
func Wrap(err error, details string) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(details, err)
}

// HTTPStatus maps an error onto an HTTP status code
func HTTPStatus(err error) int {
	switch Code(err) {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
