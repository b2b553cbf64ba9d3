// Package errors provides standardized error handling for the dialog analyzer.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Caller-contract violations: these abort a run immediately. Data-quality
// problems never appear here, they are surfaced as validation issues.
const (
	ErrCodeReferenceTimeMissing ErrorCode = "REFERENCE_TIME_MISSING"
	ErrCodeUnknownThresholdKey  ErrorCode = "UNKNOWN_THRESHOLD_KEY"
	ErrCodeInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"

	ErrCodeInputNotFound     ErrorCode = "INPUT_NOT_FOUND"
	ErrCodeInputUnreadable   ErrorCode = "INPUT_UNREADABLE"
	ErrCodeNoRecordsLoaded   ErrorCode = "NO_RECORDS_LOADED"
	ErrCodeSchemaCompileFail ErrorCode = "SCHEMA_COMPILE_FAILED"

	ErrCodeStoreConnectionFailed ErrorCode = "STORE_CONNECTION_FAILED"
	ErrCodeStoreWriteFailed      ErrorCode = "STORE_WRITE_FAILED"
	ErrCodeCacheUnavailable      ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeIndexWriteFailed      ErrorCode = "INDEX_WRITE_FAILED"
	ErrCodeReportWriteFailed     ErrorCode = "REPORT_WRITE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is allows errors.Is matching against another StandardError by code.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ==========================
// 2. Error Constructors
// ==========================

// NewReferenceTimeMissingError signals that expiry/freshness analysis was
// requested without a reference clock.
func NewReferenceTimeMissingError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReferenceTimeMissing,
		Message:   "Reference time is required for expiry and freshness analysis",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownThresholdKeyError signals an overridden threshold table naming
// a bucket or band the analyzer does not define.
func NewUnknownThresholdKeyError(table, key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownThresholdKey,
		Message:   "Unknown key in overridden threshold table",
		Details:   fmt.Sprintf("table: %s, key: %s", table, key),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidConfigurationError creates a non-retryable configuration error.
func NewInvalidConfigurationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidConfiguration,
		Message:   "Invalid analyzer configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInputNotFoundError creates a non-retryable input file error.
func NewInputNotFoundError(path string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputNotFound,
		Message:   "Input file not found",
		Details:   fmt.Sprintf("path: %s", path),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInputUnreadableError creates a non-retryable input read error.
func NewInputUnreadableError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputUnreadable,
		Message:   "Input file could not be read",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoRecordsLoadedError signals that the input produced zero usable records.
func NewNoRecordsLoadedError(path string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoRecordsLoaded,
		Message:   "No intent records could be parsed from input",
		Details:   fmt.Sprintf("path: %s", path),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaCompileFailedError creates a non-retryable schema error.
func NewSchemaCompileFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaCompileFail,
		Message:   "Intent record schema failed to compile",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreConnectionFailedError creates a retryable store connection error.
func NewStoreConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreConnectionFailed,
		Message:   "Report store connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreWriteFailedError creates a retryable store write error.
func NewStoreWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreWriteFailed,
		Message:   "Report store write error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Result cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexWriteFailedError creates a retryable issue-index write error.
func NewIndexWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexWriteFailed,
		Message:   "Issue index write error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportWriteFailedError creates a non-retryable report write error.
func NewReportWriteFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportWriteFailed,
		Message:   "Report file write error",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
