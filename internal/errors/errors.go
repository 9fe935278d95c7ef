// Package errors provides structured error types for the pairbench system.
// All errors include a category, code, message, and retryable flag for
// consistent error handling across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by system component.
type ErrorCategory string

const (
	ErrCategoryValidation  ErrorCategory = "VALIDATION"
	ErrCategoryDataAccess  ErrorCategory = "DATA_ACCESS"
	ErrCategoryMeasurement ErrorCategory = "MEASUREMENT"
	ErrCategoryWorkload    ErrorCategory = "WORKLOAD"
	ErrCategoryInternal    ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Validation codes
	CodeInvalidSize     = "INVALID_SIZE"
	CodeInvalidTarget   = "INVALID_TARGET"
	CodeInvalidRepeats  = "INVALID_REPEATS"
	CodeMalformedIDList = "MALFORMED_ID_LIST"
	CodeUnknownWorkload = "UNKNOWN_WORKLOAD"
	CodeUnknownVariant  = "UNKNOWN_VARIANT"

	// Data access codes
	CodeCollaboratorFailure = "COLLABORATOR_FAILURE"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
	CodeFixtureFetchFailed  = "FIXTURE_FETCH_FAILED"

	// Measurement codes
	CodeMeasurementDegraded = "MEASUREMENT_DEGRADED"

	// Workload codes
	CodeVariantFailed = "VARIANT_FAILED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// PairbenchError is the structured error type used throughout the system.
type PairbenchError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *PairbenchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *PairbenchError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *PairbenchError) Is(target error) bool {
	var t *PairbenchError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new PairbenchError.
func New(category ErrorCategory, code, message string) *PairbenchError {
	return &PairbenchError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new PairbenchError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *PairbenchError {
	return &PairbenchError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *PairbenchError) WithDetails(details map[string]interface{}) *PairbenchError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
func IsRetryable(err error) bool {
	var pe *PairbenchError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a PairbenchError.
func GetCategory(err error) ErrorCategory {
	var pe *PairbenchError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a PairbenchError.
func GetCode(err error) string {
	var pe *PairbenchError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// isRetryable determines if an error code is retryable. Collaborator
// failures on the measurement path are never retryable: a retry would
// mask the very latency difference a comparison exists to measure.
// Only fixture fetches made during seeding may be retried by the caller.
func isRetryable(category ErrorCategory, code string) bool {
	return category == ErrCategoryDataAccess && code == CodeFixtureFetchFailed
}

// Convenience constructors for common errors.

func NewValidationError(code, message string) *PairbenchError {
	return New(ErrCategoryValidation, code, message)
}

func NewDataAccessError(code, message string, cause error) *PairbenchError {
	return Wrap(ErrCategoryDataAccess, code, message, cause)
}

func NewMeasurementError(message string, cause error) *PairbenchError {
	return Wrap(ErrCategoryMeasurement, CodeMeasurementDegraded, message, cause)
}

func NewWorkloadError(message string, cause error) *PairbenchError {
	return Wrap(ErrCategoryWorkload, CodeVariantFailed, message, cause)
}

func NewInternalError(message string, cause error) *PairbenchError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
