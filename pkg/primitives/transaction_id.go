package primitives

import (
	"fmt"
	"sync/atomic"
)

var transactionCounter int64

// TransactionID identifies a single transaction. Instances are created once
// through NewTransactionID and passed around by pointer; map keys rely on
// pointer identity, which is stable for the lifetime of the transaction.
type TransactionID struct {
	id int64
}

// NewTransactionID creates a new unique transaction ID.
func NewTransactionID() *TransactionID {
	return &TransactionID{
		id: atomic.AddInt64(&transactionCounter, 1),
	}
}

// NewTransactionIDFromValue creates a TransactionID with a specific ID value.
// This is primarily used by tests and deserialization.
func NewTransactionIDFromValue(id int64) *TransactionID {
	return &TransactionID{
		id: id,
	}
}

func (tid *TransactionID) ID() int64 {
	return tid.id
}

func (tid *TransactionID) String() string {
	return fmt.Sprintf("TID-%d", tid.id)
}

// Equals checks if two transaction IDs refer to the same transaction.
func (tid *TransactionID) Equals(other *TransactionID) bool {
	if tid == nil || other == nil {
		return tid == other
	}
	return tid.id == other.id
}
