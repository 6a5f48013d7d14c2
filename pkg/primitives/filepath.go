package primitives

import (
	"hash/fnv"
)

// Filepath is the path of a file backing a table. Hashing it yields the
// table's stable identifier.
type Filepath string

// Hash derives the TableID for the file at this path using FNV-1a.
func (f Filepath) Hash() TableID {
	h := fnv.New64a()
	h.Write([]byte(f))
	return TableID(h.Sum64())
}
