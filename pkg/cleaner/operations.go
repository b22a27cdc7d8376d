// pkg/cleaner/operations.go
package cleaner

import (
	"fmt"
	"sort"
	"time"

	"github.com/David-Botos/erp-ingress/pkg/model"
)

// ColumnSummary aggregates the failures of one source column
type ColumnSummary struct {
	Source    string
	Column    string
	Target    string
	Count     int
	FirstLine int
	Sample    any // first offending raw value
}

// Summarize groups failures by source and column, ordered by source then column
func Summarize(failures []model.CoercionFailure) []ColumnSummary {
	type key struct{ source, column string }
	index := make(map[key]int)
	var summaries []ColumnSummary

	for _, f := range failures {
		k := key{f.Source, f.Column}
		i, ok := index[k]
		if !ok {
			index[k] = len(summaries)
			summaries = append(summaries, ColumnSummary{
				Source:    f.Source,
				Column:    f.Column,
				Target:    f.Target,
				FirstLine: f.Line,
				Sample:    f.RawValue,
			})
			i = len(summaries) - 1
		}
		summaries[i].Count++
		if f.Line < summaries[i].FirstLine {
			summaries[i].FirstLine = f.Line
			summaries[i].Sample = f.RawValue
		}
	}

	sort.SliceStable(summaries, func(a, b int) bool {
		if summaries[a].Source != summaries[b].Source {
			return summaries[a].Source < summaries[b].Source
		}
		return summaries[a].Column < summaries[b].Column
	})
	return summaries
}

// failureRowSet shapes failures as rows of QualityTable
func failureRowSet(failures []model.CoercionFailure, snapshot, recordedAt time.Time) model.RowSet {
	meta := QualityTableMetadata()
	rows := make([]model.Row, len(failures))
	for i, f := range failures {
		seen := f.SeenAt
		if seen.IsZero() {
			seen = recordedAt
		}
		rows[i] = model.Row{
			"upload_batch_id": f.BatchID,
			"snapshot_date":   snapshot,
			"source":          f.Source,
			"column_name":     f.Column,
			"line_number":     int64(f.Line),
			"original_value":  toNullableString(f.RawValue),
			"target_type":     f.Target,
			"reason":          f.Reason,
			"recorded_at":     seen.UTC().Format(time.RFC3339),
		}
	}
	return model.RowSet{Table: meta.Table, Columns: meta.ColumnNames(), Rows: rows}
}

// toNullableString renders a raw cell for storage, keeping nil as NULL
func toNullableString(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
