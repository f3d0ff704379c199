// Package errors provides unified error handling for diard.
// It implements structured error types with error codes, HTTP status mapping,
// and retryable detection. Every failure crossing the transport boundary is
// an *AppError; the HTTP layer derives status and body from it.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// PipelineUnavailable creates an AppError for requests arriving before the
// diarization pipeline finished loading, or after it failed to load.
func PipelineUnavailable() *AppError {
	return &AppError{
		Code: ErrCodePipelineUnavailable, Message: "Pipeline not loaded. Please check server logs.",
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
	}
}

// UnsupportedMediaType creates an AppError for an upload that failed
// media-type validation. The declared type and allowed extensions are
// carried in Details for the client message.
func UnsupportedMediaType(declaredType, reason string) *AppError {
	return &AppError{
		Code: ErrCodeUnsupportedMedia, Message: reason,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"declared_type": declaredType},
	}
}

// InvalidInput creates an AppError for invalid request input.
func InvalidInput(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: reason,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// Engine creates an AppError for a failure inside staging or the underlying
// diarization engine. The original message is preserved for diagnosability.
func Engine(cause error) *AppError {
	return &AppError{
		Code: ErrCodeEngine, Message: fmt.Sprintf("Error processing audio: %v", cause),
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// Internal creates an AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "Internal server error",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}
