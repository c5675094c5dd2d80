// Package errors provides structured error types for readbench.
// All errors include a category, code, message and optional cause so that
// setup failures can be told apart from recoverable per-attempt failures.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by the stage that produced them.
type ErrorCategory string

const (
	ErrCategorySetup    ErrorCategory = "SETUP"
	ErrCategoryQuery    ErrorCategory = "QUERY"
	ErrCategoryConfig   ErrorCategory = "CONFIG"
	ErrCategoryStorage  ErrorCategory = "STORAGE"
	ErrCategoryInternal ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Setup codes
	CodeOpenFailed   = "OPEN_FAILED"
	CodeSchemaFailed = "SCHEMA_FAILED"
	CodeSeedFailed   = "SEED_FAILED"
	CodeVerifyFailed = "VERIFY_FAILED"

	// Query codes
	CodeConnectFailed = "CONNECT_FAILED"
	CodeScanFailed    = "SCAN_FAILED"
	CodeAttemptPanic  = "ATTEMPT_PANIC"

	// Config codes
	CodeInvalidConfig = "INVALID_CONFIG"
	CodeUnknownEngine = "UNKNOWN_ENGINE"

	// Storage codes
	CodeUploadFailed = "UPLOAD_FAILED"
	CodeObjectExists = "OBJECT_EXISTS"

	// Internal codes
	CodeUnexpected    = "UNEXPECTED"
	CodeMetricsFailed = "METRICS_FAILED"
)

// BenchError is the structured error type used throughout the module.
type BenchError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Details  map[string]interface{}
	Cause    error
}

// Error returns a formatted error string.
func (e *BenchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *BenchError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *BenchError) Is(target error) bool {
	var t *BenchError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new BenchError.
func New(category ErrorCategory, code, message string) *BenchError {
	return &BenchError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Wrap creates a new BenchError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *BenchError {
	return &BenchError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *BenchError) WithDetails(details map[string]interface{}) *BenchError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsSetupFailure reports whether err (or its chain) is a dataset setup failure.
func IsSetupFailure(err error) bool {
	return GetCategory(err) == ErrCategorySetup
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a BenchError.
func GetCategory(err error) ErrorCategory {
	var be *BenchError
	if errors.As(err, &be) {
		return be.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a BenchError.
func GetCode(err error) string {
	var be *BenchError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// Convenience constructors for common errors.

func NewSetupError(code, message string, cause error) *BenchError {
	return Wrap(ErrCategorySetup, code, message, cause)
}

func NewQueryError(code, message string, cause error) *BenchError {
	return Wrap(ErrCategoryQuery, code, message, cause)
}

func NewConfigError(code, message string) *BenchError {
	return New(ErrCategoryConfig, code, message)
}

func NewStorageError(code, message string, cause error) *BenchError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewInternalError(message string, cause error) *BenchError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
