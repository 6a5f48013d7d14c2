package memory

import (
	"sync"

	"slotdb/pkg/dberr"
	"slotdb/pkg/primitives"
	"slotdb/pkg/storage/page"
	"slotdb/pkg/tuple"
)

// TableInfo holds catalog metadata for one table.
type TableInfo struct {
	File       page.DbFile
	Name       string
	PrimaryKey string
}

func NewTableInfo(file page.DbFile, name, primaryKey string) *TableInfo {
	return &TableInfo{
		File:       file,
		Name:       name,
		PrimaryKey: primaryKey,
	}
}

func (ti *TableInfo) GetID() primitives.TableID {
	return ti.File.GetID()
}

// TableManager is the catalog mapping table names and IDs to their backing
// files. It is constructed once and handed to the PageStore and to the
// operators that need schema lookups; there is no ambient global.
type TableManager struct {
	nameToTable map[string]*TableInfo
	idToTable   map[primitives.TableID]*TableInfo
	mutex       sync.RWMutex
}

func NewTableManager() *TableManager {
	return &TableManager{
		nameToTable: make(map[string]*TableInfo),
		idToTable:   make(map[primitives.TableID]*TableInfo),
	}
}

// AddTable registers a table under the given name. A table already present
// under the same name or ID is replaced.
func (tm *TableManager) AddTable(f page.DbFile, name, primaryKey string) error {
	if f == nil {
		return dberr.UsageError("AddTable", "file cannot be nil")
	}
	if name == "" {
		return dberr.UsageError("AddTable", "table name cannot be empty")
	}

	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tableInfo := NewTableInfo(f, name, primaryKey)
	tableID := f.GetID()

	if existing, exists := tm.nameToTable[name]; exists {
		delete(tm.idToTable, existing.GetID())
	}
	if existing, exists := tm.idToTable[tableID]; exists {
		delete(tm.nameToTable, existing.Name)
	}

	tm.nameToTable[name] = tableInfo
	tm.idToTable[tableID] = tableInfo
	return nil
}

// GetDbFile resolves a table ID to its backing file.
func (tm *TableManager) GetDbFile(tableID primitives.TableID) (page.DbFile, error) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	tableInfo, exists := tm.idToTable[tableID]
	if !exists {
		return nil, dberr.UsageError("GetDbFile", "table with ID %d not found", tableID)
	}
	return tableInfo.File, nil
}

func (tm *TableManager) GetTableID(name string) (primitives.TableID, error) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	tableInfo, exists := tm.nameToTable[name]
	if !exists {
		return primitives.InvalidTableID, dberr.UsageError("GetTableID", "table %q not found", name)
	}
	return tableInfo.GetID(), nil
}

func (tm *TableManager) GetTableName(tableID primitives.TableID) (string, error) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	tableInfo, exists := tm.idToTable[tableID]
	if !exists {
		return "", dberr.UsageError("GetTableName", "table with ID %d not found", tableID)
	}
	return tableInfo.Name, nil
}

func (tm *TableManager) GetTupleDesc(tableID primitives.TableID) (*tuple.TupleDescription, error) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	tableInfo, exists := tm.idToTable[tableID]
	if !exists {
		return nil, dberr.UsageError("GetTupleDesc", "table with ID %d not found", tableID)
	}
	return tableInfo.File.GetTupleDesc(), nil
}

func (tm *TableManager) TableExists(name string) bool {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	_, exists := tm.nameToTable[name]
	return exists
}

// RemoveTable drops a table from the catalog and closes its backing file.
func (tm *TableManager) RemoveTable(name string) error {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tableInfo, exists := tm.nameToTable[name]
	if !exists {
		return dberr.UsageError("RemoveTable", "table %q not found", name)
	}

	delete(tm.nameToTable, name)
	delete(tm.idToTable, tableInfo.GetID())

	if err := tableInfo.File.Close(); err != nil {
		return dberr.StorageFailure(err, "RemoveTable", "failed to close file for table %q", name)
	}
	return nil
}

func (tm *TableManager) GetAllTableNames() []string {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()
	names := make([]string, 0, len(tm.nameToTable))
	for name := range tm.nameToTable {
		names = append(names, name)
	}
	return names
}

// Clear empties the catalog, closing every backing file. The first close
// failure is returned after all tables have been removed.
func (tm *TableManager) Clear() error {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	var firstErr error
	for _, tableInfo := range tm.idToTable {
		if err := tableInfo.File.Close(); err != nil && firstErr == nil {
			firstErr = dberr.StorageFailure(err, "Clear", "failed to close file for table %q", tableInfo.Name)
		}
	}

	clear(tm.nameToTable)
	clear(tm.idToTable)
	return firstErr
}
