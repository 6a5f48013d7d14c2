// Package dberr defines the structured error type used across the storage
// engine and the three error kinds its callers must distinguish:
//
//   - TransactionAborted: a deadlock was detected while waiting for a lock.
//     The caller must run the abort path and retry the whole transaction.
//   - StorageFailure: reading or writing a page failed. Fatal to the
//     operation in progress; always propagated, never swallowed.
//   - UsageError: a programming-contract violation, such as releasing a lock
//     that is not held. Not a recoverable runtime condition.
package dberr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory classifies errors by their nature and appropriate handling strategy.
type ErrorCategory int

const (
	// ErrCategoryUser represents errors caused by invalid caller behavior.
	// These errors are fixable only by correcting the calling code.
	ErrCategoryUser ErrorCategory = iota

	// ErrCategorySystem represents errors requiring operator intervention,
	// such as I/O failures against the backing store.
	ErrCategorySystem

	// ErrCategoryConcurrency represents errors from concurrent transaction
	// conflicts. These are resolved by aborting and retrying the transaction.
	ErrCategoryConcurrency
)

// Error codes for the conditions the buffer pool surfaces to callers.
const (
	CodeTransactionAborted = "TRANSACTION_ABORTED"
	CodeStorageFailure     = "STORAGE_FAILURE"
	CodeUsageError         = "USAGE_ERROR"
)

// DBError represents a structured storage-engine error.
type DBError struct {
	// Code is a unique identifier for this error type (e.g. "TRANSACTION_ABORTED").
	Code string

	// Category classifies the error for appropriate handling strategy.
	Category ErrorCategory

	// Message is a human-readable description of what went wrong.
	Message string

	// Operation identifies the operation in progress when the error occurred
	// (e.g. "GetPage", "TransactionComplete").
	Operation string

	// Cause is the underlying error, if any, preserved for errors.Is/As.
	Cause error
}

// New creates a new DBError with the specified category, code, and message.
func New(category ErrorCategory, code, message string) *DBError {
	return &DBError{
		Code:     code,
		Category: category,
		Message:  message,
	}
}

// Wrap wraps an existing error with storage-engine context. If the error is
// already a DBError, the operation is filled in when not already set.
func Wrap(err error, code, operation string) *DBError {
	if err == nil {
		return nil
	}

	var dbErr *DBError
	if errors.As(err, &dbErr) {
		if dbErr.Operation != "" {
			return dbErr
		}
		// Annotate a copy; the original may still be referenced elsewhere.
		annotated := *dbErr
		annotated.Operation = operation
		return &annotated
	}

	return &DBError{
		Code:      code,
		Category:  ErrCategorySystem,
		Message:   err.Error(),
		Operation: operation,
		Cause:     err,
	}
}

// Error implements the standard error interface.
// Format: [CODE] message (operation: Op) caused by: underlying error
func (e *DBError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Operation != "" {
		b.WriteString(fmt.Sprintf(" (operation: %s)", e.Operation))
	}

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(" caused by: %v", e.Cause))
	}

	return b.String()
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *DBError) Unwrap() error {
	return e.Cause
}
