// pkg/join/reference.go
package join

import (
	"fmt"
	"strings"

	"github.com/David-Botos/erp-ingress/pkg/model"
)

// DedupPolicy selects which row survives when several rows share a key
type DedupPolicy int

const (
	// KeepLast keeps the last row by original order
	KeepLast DedupPolicy = iota
	// KeepFirst keeps the first row by original order
	KeepFirst
)

// String returns the name of the policy
func (p DedupPolicy) String() string {
	switch p {
	case KeepLast:
		return "keep-last"
	case KeepFirst:
		return "keep-first"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// ReferenceTable is a lookup table with at most one row per key
type ReferenceTable struct {
	Name    string
	Key     string
	Columns []string // attribute columns carried into joins, key excluded

	index      map[string]model.Row
	nullKeys   int
	duplicates int
}

// NewReferenceTable indexes rows by key, resolving duplicate keys with policy.
// Rows whose key is null or blank are dropped.
func NewReferenceTable(
	name, key string,
	columns []string,
	rows []model.Row,
	policy DedupPolicy,
) (*ReferenceTable, error) {
	if key == "" {
		return nil, fmt.Errorf("reference table %s has no key column", name)
	}

	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if col == key {
			return nil, fmt.Errorf("reference table %s lists key %s as an attribute", name, key)
		}
		if seen[col] {
			return nil, fmt.Errorf("reference table %s lists column %s twice", name, col)
		}
		seen[col] = true
	}

	rt := &ReferenceTable{
		Name:    name,
		Key:     key,
		Columns: append([]string(nil), columns...),
		index:   make(map[string]model.Row, len(rows)),
	}

	for _, row := range rows {
		k, ok := KeyOf(row[key])
		if !ok {
			rt.nullKeys++
			continue
		}
		if _, exists := rt.index[k]; exists {
			rt.duplicates++
			if policy == KeepFirst {
				continue
			}
		}
		rt.index[k] = row
	}

	return rt, nil
}

// Lookup returns the row for a key value, if any
func (rt *ReferenceTable) Lookup(value any) (model.Row, bool) {
	k, ok := KeyOf(value)
	if !ok {
		return nil, false
	}
	row, found := rt.index[k]
	return row, found
}

// Len returns the number of distinct keys
func (rt *ReferenceTable) Len() int {
	return len(rt.index)
}

// NullKeys returns how many input rows were dropped for a null key
func (rt *ReferenceTable) NullKeys() int {
	return rt.nullKeys
}

// Duplicates returns how many input rows repeated an earlier key
func (rt *ReferenceTable) Duplicates() int {
	return rt.duplicates
}

// KeyOf renders a typed key value as a comparable string.
// Null and blank keys report false.
func KeyOf(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}
