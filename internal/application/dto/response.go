// Package dto provides data transfer objects for the application layer.
package dto

import (
	"time"

	"github.com/turtacn/riskboard/pkg/constants"
	"github.com/turtacn/riskboard/pkg/errors"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorDTO   `json:"error,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorDTO describes a failed request.
type ErrorDTO struct {
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Description string                 `json:"description,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps data in a success envelope.
func SuccessResponse(data interface{}, traceID string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		TraceID:   traceID,
		Timestamp: time.Now().Unix(),
	}
}

// ErrorResponse renders err. Errors that are not AppErrors are reported as internal errors
// without leaking their text.
func ErrorResponse(err error, traceID string) *APIResponse {
	var errorDTO *ErrorDTO

	if appErr, ok := errors.As(err); ok {
		errorDTO = &ErrorDTO{
			Code:        string(appErr.Code()),
			Message:     appErr.Error(),
			Description: appErr.Description(),
		}
		if md := appErr.Metadata(); len(md) > 0 {
			errorDTO.Details = md
		}
	} else {
		errorDTO = &ErrorDTO{
			Code:        string(constants.ErrCodeInternal),
			Message:     "Internal server error",
			Description: "The server encountered an unexpected condition.",
		}
	}

	return &APIResponse{
		Success:   false,
		Error:     errorDTO,
		TraceID:   traceID,
		Timestamp: time.Now().Unix(),
	}
}
