package join

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/erp-ingress/pkg/model"
)

func slocTable(t *testing.T, policy DedupPolicy) *ReferenceTable {
	t.Helper()
	rows := []model.Row{
		{"sloc": "0001", "sloc_description": "Main"},
		{"sloc": "0002", "sloc_description": "Old"},
		{"sloc": nil, "sloc_description": "orphan"},
		{"sloc": "0002", "sloc_description": "New"},
	}
	rt, err := NewReferenceTable("storage_location", "sloc", []string{"sloc_description"}, rows, policy)
	require.NoError(t, err)
	return rt
}

func TestNewReferenceTable(t *testing.T) {
	rt := slocTable(t, KeepLast)
	assert.Equal(t, 2, rt.Len())
	assert.Equal(t, 1, rt.NullKeys())
	assert.Equal(t, 1, rt.Duplicates())

	row, ok := rt.Lookup("0002")
	require.True(t, ok)
	assert.Equal(t, "New", row["sloc_description"])

	first := slocTable(t, KeepFirst)
	row, ok = first.Lookup("0002")
	require.True(t, ok)
	assert.Equal(t, "Old", row["sloc_description"])

	_, ok = rt.Lookup(nil)
	assert.False(t, ok)
	_, ok = rt.Lookup("9999")
	assert.False(t, ok)
}

func TestNewReferenceTableRejectsBadColumns(t *testing.T) {
	_, err := NewReferenceTable("x", "", nil, nil, KeepLast)
	assert.Error(t, err)

	_, err = NewReferenceTable("x", "k", []string{"k"}, nil, KeepLast)
	assert.Error(t, err)

	_, err = NewReferenceTable("x", "k", []string{"a", "a"}, nil, KeepLast)
	assert.Error(t, err)
}

func TestLeftJoinKeepsUnmatchedRows(t *testing.T) {
	primary := model.RowSet{
		Table:   "master",
		Columns: []string{"material", "sloc"},
		Rows: []model.Row{
			{"material": "M1", "sloc": "0001"},
			{"material": "M2", "sloc": "0003"},
			{"material": "M3", "sloc": nil},
		},
	}

	out, err := LeftJoin(primary, Lookup{ForeignKey: "sloc", Table: slocTable(t, KeepLast)})
	require.NoError(t, err)

	assert.Equal(t, []string{"material", "sloc", "sloc_description"}, out.Columns)
	require.Len(t, out.Rows, 3)
	assert.Equal(t, "Main", out.Rows[0]["sloc_description"])
	assert.Nil(t, out.Rows[1]["sloc_description"])
	assert.Contains(t, out.Rows[1], "sloc_description")
	assert.Nil(t, out.Rows[2]["sloc_description"])

	// input rows are not modified
	assert.NotContains(t, primary.Rows[0], "sloc_description")
}

func TestLeftJoinMultipleLookupsInOrder(t *testing.T) {
	vendors, err := NewReferenceTable("vendor", "vendor", []string{"country", "search_term"}, []model.Row{
		{"vendor": "0000012345", "country": "DE", "search_term": "ACME"},
	}, KeepLast)
	require.NoError(t, err)

	primary := model.RowSet{
		Columns: []string{"material", "sloc", "vendor"},
		Rows: []model.Row{
			{"material": "M1", "sloc": "0001", "vendor": "0000012345"},
		},
	}

	out, err := LeftJoin(primary,
		Lookup{ForeignKey: "vendor", Table: vendors},
		Lookup{ForeignKey: "sloc", Table: slocTable(t, KeepLast)},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"material", "sloc", "vendor", "country", "search_term", "sloc_description"}, out.Columns)
	assert.Equal(t, "DE", out.Rows[0]["country"])
	assert.Equal(t, "Main", out.Rows[0]["sloc_description"])
}

func TestLeftJoinErrors(t *testing.T) {
	primary := model.RowSet{Columns: []string{"material", "sloc", "sloc_description"}}

	_, err := LeftJoin(primary, Lookup{ForeignKey: "sloc", Table: slocTable(t, KeepLast)})
	assert.ErrorContains(t, err, "collides")

	_, err = LeftJoin(model.RowSet{Columns: []string{"material"}},
		Lookup{ForeignKey: "sloc", Table: slocTable(t, KeepLast)})
	assert.ErrorContains(t, err, "not a column")

	_, err = LeftJoin(primary, Lookup{ForeignKey: "sloc"})
	assert.Error(t, err)
}

func TestDedupByKey(t *testing.T) {
	set := model.RowSet{
		Table:   "master",
		Columns: []string{"material", "plant"},
		Rows: []model.Row{
			{"material": "M2", "plant": "A"},
			{"material": "M1", "plant": "A"},
			{"material": nil, "plant": "X"},
			{"material": "M2", "plant": "B"},
			{"material": "M1", "plant": "B"},
			{"material": "M3", "plant": "A"},
		},
	}

	last, dropped := DedupByKey(set, "material", KeepLast)
	assert.Equal(t, 1, dropped)
	require.Len(t, last.Rows, 3)
	assert.Equal(t, "M1", last.Rows[0]["material"])
	assert.Equal(t, "B", last.Rows[0]["plant"])
	assert.Equal(t, "M2", last.Rows[1]["material"])
	assert.Equal(t, "B", last.Rows[1]["plant"])
	assert.Equal(t, "M3", last.Rows[2]["material"])

	first, _ := DedupByKey(set, "material", KeepFirst)
	require.Len(t, first.Rows, 3)
	assert.Equal(t, "A", first.Rows[0]["plant"])
	assert.Equal(t, "A", first.Rows[1]["plant"])
}

func TestDedupByKeyIsDeterministic(t *testing.T) {
	set := model.RowSet{Columns: []string{"k", "v"}}
	for i := 0; i < 200; i++ {
		set.Rows = append(set.Rows, model.Row{"k": string(rune('a' + i%7)), "v": i})
	}

	a, _ := DedupByKey(set, "k", KeepLast)
	b, _ := DedupByKey(set, "k", KeepLast)
	assert.Equal(t, a, b)
	require.Len(t, a.Rows, 7)
	// 'a' appears at i = 0, 7, ..., 196
	assert.Equal(t, 196, a.Rows[0]["v"])
}

func TestKeyOf(t *testing.T) {
	_, ok := KeyOf(nil)
	assert.False(t, ok)
	_, ok = KeyOf("  ")
	assert.False(t, ok)
	k, ok := KeyOf(int64(42))
	assert.True(t, ok)
	assert.Equal(t, "42", k)
}

func TestDedupPolicyString(t *testing.T) {
	assert.Equal(t, "keep-last", KeepLast.String())
	assert.Equal(t, "keep-first", KeepFirst.String())
}
