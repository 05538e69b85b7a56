// Package errors defines custom error types and error handling utilities for the riskboard service.
// Errors carry a machine-readable code and the HTTP status they map to.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/turtacn/riskboard/pkg/constants"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// AppError represents a structured error with additional metadata
type AppError interface {
	error

	// Code returns the API error code
	Code() constants.ErrorCode

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) AppError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) AppError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

type baseError struct {
	code        constants.ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

func (e *baseError) Error() string {
	msg := e.message
	if msg == "" {
		msg = e.description
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *baseError) Code() constants.ErrorCode { return e.code }

func (e *baseError) HTTPStatus() int { return e.httpStatus }

func (e *baseError) Description() string { return e.description }

func (e *baseError) Unwrap() error { return e.cause }

func (e *baseError) WithCause(cause error) AppError {
	e.cause = cause
	return e
}

func (e *baseError) WithMetadata(key string, value interface{}) AppError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

func (e *baseError) Metadata() map[string]interface{} { return e.metadata }

// NewError creates a new AppError with the specified parameters
func NewError(code constants.ErrorCode, httpStatus int, description string, message string) AppError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Predefined Error Constructors
// ================================================================================

// ErrInvalidRequest creates an invalid_request error
func ErrInvalidRequest(message string) AppError {
	return NewError(
		constants.ErrCodeInvalidRequest,
		http.StatusBadRequest,
		"The request is missing a required parameter or includes an invalid parameter value.",
		message,
	)
}

// ErrDatasetNotFound creates a not_found error for a dataset name
func ErrDatasetNotFound(name string) AppError {
	return NewError(
		constants.ErrCodeNotFound,
		http.StatusNotFound,
		"Dataset not found",
		fmt.Sprintf("No data loaded for %q", name),
	).WithMetadata("dataset", name)
}

// ErrUnsupportedFormat creates an unsupported_format error
func ErrUnsupportedFormat(format string) AppError {
	return NewError(
		constants.ErrCodeUnsupportedFormat,
		http.StatusBadRequest,
		"The requested export format is not supported.",
		fmt.Sprintf("Unsupported format: %s", format),
	).WithMetadata("format", format)
}

// ErrPayloadTooLarge creates a payload_too_large error
func ErrPayloadTooLarge(limit int64) AppError {
	return NewError(
		constants.ErrCodePayloadTooLarge,
		http.StatusRequestEntityTooLarge,
		"The uploaded file exceeds the configured limit.",
		fmt.Sprintf("Upload exceeds %d bytes", limit),
	).WithMetadata("limit", limit)
}

// ErrInternal creates an internal_error error
func ErrInternal(message string) AppError {
	return NewError(
		constants.ErrCodeInternal,
		http.StatusInternalServerError,
		"The server encountered an unexpected condition.",
		message,
	)
}

// ErrCacheUnavailable creates a service_unavailable error for the shared cache
func ErrCacheUnavailable(reason string) AppError {
	return NewError(
		constants.ErrCodeServiceUnavailable,
		http.StatusServiceUnavailable,
		"The shared cache is unavailable.",
		fmt.Sprintf("Cache unavailable: %s", reason),
	)
}

// ================================================================================
// Helpers
// ================================================================================

// As extracts an AppError from an error chain.
func As(err error) (AppError, bool) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HTTPStatusOf returns the HTTP status for any error, defaulting to 500.
func HTTPStatusOf(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Wrap attaches a cause to a fresh internal error.
func Wrap(err error, message string) AppError {
	return ErrInternal(message).WithCause(err)
}
