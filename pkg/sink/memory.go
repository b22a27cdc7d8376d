// pkg/sink/memory.go
package sink

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/David-Botos/erp-ingress/pkg/model"
)

// MemoryStore keeps appended rows in memory. Used by tests and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	tables  map[string][]model.Row
	columns map[string][]string
	appends []string

	// FailOn makes Append fail for the named table
	FailOn string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables:  make(map[string][]model.Row),
		columns: make(map[string][]string),
	}
}

// Append stores a copy of every row of set
func (m *MemoryStore) Append(ctx context.Context, set model.RowSet) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailOn != "" && m.FailOn == set.Table {
		return 0, fmt.Errorf("append to %s failed", set.Table)
	}

	for _, row := range set.Rows {
		m.tables[set.Table] = append(m.tables[set.Table], row.Clone())
	}
	m.columns[set.Table] = append([]string(nil), set.Columns...)
	m.appends = append(m.appends, set.Table)
	return int64(set.Len()), nil
}

// Rows returns the rows appended to a table
func (m *MemoryStore) Rows(table string) []model.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Row(nil), m.tables[table]...)
}

// Columns returns the column order of the last append to a table
func (m *MemoryStore) Columns(table string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.columns[table]...)
}

// Tables returns the names of tables that received rows, sorted
func (m *MemoryStore) Tables() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Appends returns the table of every Append call in call order
func (m *MemoryStore) Appends() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.appends...)
}

// Ping always succeeds
func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
