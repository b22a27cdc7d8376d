// pkg/ingest/counts.go
package ingest

import (
	"sort"

	"github.com/David-Botos/erp-ingress/pkg/reader"
)

// RowCounts summarizes what one batch read and wrote
type RowCounts struct {
	Source           string           `json:"source"`
	BatchID          string           `json:"batch_id"`
	SnapshotDate     string           `json:"snapshot_date"`
	RecordsRead      int              `json:"records_read"`
	Tables           map[string]int64 `json:"tables"`
	CoercionFailures int              `json:"coercion_failures"`
	DroppedRows      int              `json:"dropped_rows"`
	Warnings         []reader.Warning `json:"warnings,omitempty"`
}

func newRowCounts(source string, batch Batch) *RowCounts {
	return &RowCounts{
		Source:       source,
		BatchID:      batch.ID,
		SnapshotDate: batch.Snapshot(),
		Tables:       make(map[string]int64),
	}
}

// RowsWritten returns the total rows appended across all tables
func (c *RowCounts) RowsWritten() int64 {
	var total int64
	for _, n := range c.Tables {
		total += n
	}
	return total
}

// TableNames returns the written tables, sorted
func (c *RowCounts) TableNames() []string {
	names := make([]string, 0, len(c.Tables))
	for name := range c.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
