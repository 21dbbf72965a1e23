// Package errors defines the gateway's error taxonomy and the boundary
// where upstream catalog failures are translated into HTTP statuses.
package errors

import (
	stderrors "errors"
	"net/http"
	"strings"
)

// ErrorCode identifies an error category in API responses.
type ErrorCode string

const (
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// ServiceError is an error with an associated HTTP status.
type ServiceError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	cause      error
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *ServiceError) Unwrap() error {
	return e.cause
}

// WithDetails attaches a key/value pair for diagnostics.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *ServiceError {
	return &ServiceError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NotFound creates a 404 error.
func NotFound(message string) *ServiceError {
	return &ServiceError{
		Code:       CodeNotFound,
		Message:    message,
		HTTPStatus: http.StatusNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *ServiceError {
	return &ServiceError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Internal creates a 500 error wrapping the cause.
func Internal(message string, cause error) *ServiceError {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &ServiceError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		cause:      cause,
	}
}

// GetServiceError returns err as a *ServiceError, or nil if it is not one.
func GetServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if stderrors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}

// FromUpstream classifies a catalog failure by its message text.
//
// The catalog surfaces only a message string, so a substring check on
// "404" / "not found" is the one signal available for distinguishing a
// missing resource from any other failure. If the upstream wording ever
// changes, classification degrades to 500; that fragility is kept here,
// at the single point where upstream errors enter the gateway.
func FromUpstream(err error) *ServiceError {
	if err == nil {
		return nil
	}
	if svcErr := GetServiceError(err); svcErr != nil {
		return svcErr
	}

	msg := err.Error()
	if strings.Contains(msg, "404") || strings.Contains(msg, "not found") {
		return &ServiceError{
			Code:       CodeNotFound,
			Message:    msg,
			HTTPStatus: http.StatusNotFound,
			cause:      err,
		}
	}
	return Internal(msg, err)
}
