package dberr

import (
	"errors"
	"fmt"
)

// TransactionAborted creates the error returned when a transaction must abort
// because its lock wait would deadlock.
func TransactionAborted(operation, format string, args ...any) *DBError {
	err := New(ErrCategoryConcurrency, CodeTransactionAborted, fmt.Sprintf(format, args...))
	err.Operation = operation
	return err
}

// StorageFailure wraps an I/O error from the backing store.
func StorageFailure(cause error, operation, format string, args ...any) *DBError {
	return &DBError{
		Code:      CodeStorageFailure,
		Category:  ErrCategorySystem,
		Message:   fmt.Sprintf(format, args...),
		Operation: operation,
		Cause:     cause,
	}
}

// UsageError creates the error returned for caller-contract violations.
func UsageError(operation, format string, args ...any) *DBError {
	err := New(ErrCategoryUser, CodeUsageError, fmt.Sprintf(format, args...))
	err.Operation = operation
	return err
}

func hasCode(err error, code string) bool {
	var dbErr *DBError
	return errors.As(err, &dbErr) && dbErr.Code == code
}

// IsTransactionAborted reports whether err signals a deadlock-triggered abort.
func IsTransactionAborted(err error) bool {
	return hasCode(err, CodeTransactionAborted)
}

// IsStorageFailure reports whether err signals a backing-store I/O failure.
func IsStorageFailure(err error) bool {
	return hasCode(err, CodeStorageFailure)
}

// IsUsageError reports whether err signals a caller-contract violation.
func IsUsageError(err error) bool {
	return hasCode(err, CodeUsageError)
}
