package primitives

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

// PageID uniquely identifies a page as (table, page number). It is a plain
// value type so it can be used directly as a map key: two PageIDs addressing
// the same page always compare equal, regardless of where they were created.
type PageID struct {
	tableID TableID
	pageNum PageNumber
}

// NewPageID creates a page ID for the given table and page number.
func NewPageID(tableID TableID, pageNum PageNumber) PageID {
	return PageID{
		tableID: tableID,
		pageNum: pageNum,
	}
}

// GetTableID returns the table this page belongs to.
func (pid PageID) GetTableID() TableID {
	return pid.tableID
}

// PageNo returns the page number within the table.
func (pid PageID) PageNo() PageNumber {
	return pid.pageNum
}

// Equals checks if two page IDs address the same page.
func (pid PageID) Equals(other PageID) bool {
	return pid == other
}

// Serialize returns this page ID as a fixed 16-byte representation.
func (pid PageID) Serialize() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(pid.tableID))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(pid.pageNum))
	return buf
}

// HashCode returns a stable hash of this page ID.
func (pid PageID) HashCode() uint64 {
	h := fnv.New64a()
	h.Write(pid.Serialize())
	return h.Sum64()
}

func (pid PageID) String() string {
	return fmt.Sprintf("PageID(table=%d, page=%d)", pid.tableID, pid.pageNum)
}
