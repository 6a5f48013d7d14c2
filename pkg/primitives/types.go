package primitives

// TableID uniquely identifies a table. It is derived from hashing the path of
// the file backing the table, so the same path always produces the same ID.
type TableID uint64

// PageNumber represents a page number within a table file, starting at 0.
type PageNumber uint64

// SlotID represents a tuple slot number within a page.
type SlotID uint16

// InvalidTableID represents an invalid or unset table ID.
const InvalidTableID TableID = 0
