package tuple

import (
	"fmt"

	"slotdb/pkg/primitives"
)

// RecordID is a reference to a stored tuple: the page holding it and the slot
// it occupies within that page.
type RecordID struct {
	PageID  primitives.PageID
	SlotNum primitives.SlotID
}

// NewRecordID creates a new RecordID.
func NewRecordID(pageID primitives.PageID, slotNum primitives.SlotID) *RecordID {
	return &RecordID{
		PageID:  pageID,
		SlotNum: slotNum,
	}
}

func (rid *RecordID) Equals(other *RecordID) bool {
	if other == nil {
		return false
	}
	return rid.PageID.Equals(other.PageID) && rid.SlotNum == other.SlotNum
}

func (rid *RecordID) String() string {
	return fmt.Sprintf("RecordID(page=%s, slot=%d)", rid.PageID.String(), rid.SlotNum)
}
