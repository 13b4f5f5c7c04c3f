package errors

import "fmt"

// ErrorType represents different categories of ingestion failures
type ErrorType string

const (
	ErrorTypeUnsupportedFormat       ErrorType = "unsupported_format"
	ErrorTypeOversizeInput           ErrorType = "oversize_input"
	ErrorTypeDecodeFailure           ErrorType = "decode_failure"
	ErrorTypeEmptyExtraction         ErrorType = "empty_extraction"
	ErrorTypePartialPageFailure      ErrorType = "partial_page_failure"
	ErrorTypeCollaboratorUnavailable ErrorType = "collaborator_unavailable"
	ErrorTypeInternal                ErrorType = "internal"
)

// AppError represents a structured pipeline error
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewUnsupportedFormatError creates an error for an unrecognized MIME type
// or extension
func NewUnsupportedFormatError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeUnsupportedFormat, Message: message, Cause: cause}
}

// NewOversizeInputError creates an error for a byte buffer exceeding the cap
func NewOversizeInputError(size, limit int64) *AppError {
	return &AppError{
		Type:    ErrorTypeOversizeInput,
		Message: fmt.Sprintf("file is %.1f MB, limit is %.1f MB", float64(size)/(1024*1024), float64(limit)/(1024*1024)),
	}
}

// NewDecodeFailureError creates an error for undecodable image or PDF bytes
func NewDecodeFailureError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeDecodeFailure, Message: message, Cause: cause}
}

// NewEmptyExtractionError creates an error for when every tier produced no
// usable text
func NewEmptyExtractionError(message string) *AppError {
	return &AppError{Type: ErrorTypeEmptyExtraction, Message: message}
}

// NewPartialPageFailureError creates a non-fatal diagnostic for multi-page
// documents where some pages failed while others produced text
func NewPartialPageFailureError(failed, total int) *AppError {
	return &AppError{
		Type:    ErrorTypePartialPageFailure,
		Message: fmt.Sprintf("%d of %d pages produced no text", failed, total),
	}
}

// NewCollaboratorUnavailableError creates an error for an unreachable or
// misconfigured rasterizer or vision client. Details should distinguish an
// install/configure problem from a network or auth problem.
func NewCollaboratorUnavailableError(message, details string, cause error) *AppError {
	return &AppError{Type: ErrorTypeCollaboratorUnavailable, Message: message, Details: details, Cause: cause}
}

// NewInternalError creates an error for unexpected failures
func NewInternalError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, Cause: cause}
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == errorType
	}
	return false
}
