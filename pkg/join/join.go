// pkg/join/join.go
package join

import (
	"fmt"
	"sort"

	"github.com/David-Botos/erp-ingress/pkg/model"
)

// Lookup attaches a reference table to the primary column holding its key
type Lookup struct {
	ForeignKey string
	Table      *ReferenceTable
}

// LeftJoin joins every lookup onto primary in slice order. Each primary row
// appears exactly once in the output; rows without a match get nil attributes.
// Output columns are the primary columns followed by each lookup's attributes.
func LeftJoin(primary model.RowSet, lookups ...Lookup) (model.RowSet, error) {
	columns := append([]string(nil), primary.Columns...)
	present := make(map[string]bool, len(columns))
	for _, col := range columns {
		present[col] = true
	}

	for _, lk := range lookups {
		if lk.Table == nil {
			return model.RowSet{}, fmt.Errorf("lookup on %s has no reference table", lk.ForeignKey)
		}
		if !present[lk.ForeignKey] {
			return model.RowSet{}, fmt.Errorf("foreign key %s for %s is not a column of %s",
				lk.ForeignKey, lk.Table.Name, primary.Table)
		}
		for _, col := range lk.Table.Columns {
			if present[col] {
				return model.RowSet{}, fmt.Errorf("column %s from %s collides with an existing column",
					col, lk.Table.Name)
			}
			present[col] = true
			columns = append(columns, col)
		}
	}

	rows := make([]model.Row, len(primary.Rows))
	for i, src := range primary.Rows {
		row := src.Clone()
		for _, lk := range lookups {
			match, found := lk.Table.Lookup(src[lk.ForeignKey])
			for _, col := range lk.Table.Columns {
				if found {
					row[col] = match[col]
				} else {
					row[col] = nil
				}
			}
		}
		rows[i] = row
	}

	return model.RowSet{Table: primary.Table, Columns: columns, Rows: rows}, nil
}

// DedupByKey sorts rows by key and keeps one row per key according to policy.
// Ties keep their original relative order. Rows with a null key are dropped
// and counted.
func DedupByKey(set model.RowSet, key string, policy DedupPolicy) (model.RowSet, int) {
	type keyed struct {
		key string
		row model.Row
	}

	entries := make([]keyed, 0, len(set.Rows))
	dropped := 0
	for _, row := range set.Rows {
		k, ok := KeyOf(row[key])
		if !ok {
			dropped++
			continue
		}
		entries = append(entries, keyed{key: k, row: row})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].key < entries[j].key
	})

	rows := make([]model.Row, 0, len(entries))
	for i := 0; i < len(entries); {
		j := i
		for j < len(entries) && entries[j].key == entries[i].key {
			j++
		}
		if policy == KeepFirst {
			rows = append(rows, entries[i].row)
		} else {
			rows = append(rows, entries[j-1].row)
		}
		i = j
	}

	return model.RowSet{
		Table:   set.Table,
		Columns: append([]string(nil), set.Columns...),
		Rows:    rows,
	}, dropped
}
