// Package transaction tracks per-transaction state: the permission each
// locked page was requested with, the set of pages the transaction dirtied,
// and the transaction's lifecycle status.
package transaction

// Permissions represents the access level a transaction requests on a page.
type Permissions int

const (
	// ReadOnly requests a shared lock.
	ReadOnly Permissions = iota
	// ReadWrite requests an exclusive lock.
	ReadWrite
)

func (p Permissions) String() string {
	switch p {
	case ReadOnly:
		return "READ_ONLY"
	case ReadWrite:
		return "READ_WRITE"
	default:
		return "UNKNOWN"
	}
}

// Status represents the lifecycle state of a transaction.
type Status int

const (
	StatusActive Status = iota
	StatusCommitted
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusCommitted:
		return "COMMITTED"
	case StatusAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}
