package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code, so a step-specific error still
// matches the package sentinel for its code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeRetrievalUnavailable = "RETRIEVAL_UNAVAILABLE"
	ErrCodeInferenceFailure     = "INFERENCE_FAILURE"
	ErrCodeIngestionFailed      = "INGESTION_FAILED"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyQuestion        = NewDomainError(ErrCodeValidation, "question cannot be empty")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
)

// Pipeline errors
var (
	// ErrRetrievalUnavailable signals an empty or unreachable vector index.
	// The pipeline continues with zero context instead of aborting.
	ErrRetrievalUnavailable = NewDomainError(ErrCodeRetrievalUnavailable, "vector index is empty or unreachable")

	// ErrInferenceFailure signals a failed or timed-out inference call.
	// The pipeline aborts for the current request; no automatic retries.
	ErrInferenceFailure = NewDomainError(ErrCodeInferenceFailure, "inference call failed")
)

// Ingestion errors
var (
	ErrUnsupportedFileType = NewDomainError(ErrCodeIngestionFailed, "unsupported file type")
	ErrEmptyDocument       = NewDomainError(ErrCodeIngestionFailed, "document contains no extractable text")
)
