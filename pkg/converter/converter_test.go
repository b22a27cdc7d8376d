package converter

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/erp-ingress/pkg/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCoerceDecimal(t *testing.T) {
	c := NewTypeConverter(nil)
	tests := []struct {
		in   any
		want string
	}{
		{"1,234.50", "1234.5"},
		{" 42 ", "42"},
		{"1,234.50-", "-1234.5"},
		{"-7", "-7"},
		{3.25, "3.25"},
		{int64(12), "12"},
		{"1 000", "1000"},
	}
	for _, tt := range tests {
		got, ok := c.Coerce(tt.in, model.Decimal())
		require.True(t, ok, "input %v", tt.in)
		d, isDec := got.(decimal.Decimal)
		require.True(t, isDec, "input %v", tt.in)
		assert.Equal(t, tt.want, d.String(), "input %v", tt.in)
	}
}

func TestCoerceInteger(t *testing.T) {
	c := NewTypeConverter(nil)

	got, ok := c.Coerce("1,200", model.Integer())
	require.True(t, ok)
	assert.Equal(t, int64(1200), got)

	got, ok = c.Coerce(365.0, model.Integer())
	require.True(t, ok)
	assert.Equal(t, int64(365), got)

	got, ok = c.Coerce("12.0", model.Integer())
	require.True(t, ok)
	assert.Equal(t, int64(12), got)

	got, ok = c.Coerce("12.5", model.Integer())
	assert.False(t, ok)
	assert.Nil(t, got)

	got, ok = c.Coerce("99999999999999999999999", model.Integer())
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCoerceIsTotal(t *testing.T) {
	c := NewTypeConverter(nil)
	inputs := []any{
		nil, "", "   ", "\t", "garbage", "12abc", "--", "-", ".", ",", "1e99999999999",
		math.NaN(), math.Inf(1), math.Inf(-1), true, []byte("x"), struct{}{},
		time.Time{}, "31/02/2024", "99/99/9999", "NaN", "Infinity",
	}
	types := []model.FieldType{
		model.Text(), model.Decimal(), model.Integer(), model.Date(),
		model.Code(4), model.Presence("Z002"), model.Float(),
	}
	for _, ft := range types {
		for _, in := range inputs {
			assert.NotPanics(t, func() {
				got, ok := c.Coerce(in, ft)
				if !ok {
					assert.Nil(t, got)
				}
			}, "type %s input %#v", ft, in)
		}
	}
}

func TestCoerceBlankIsNullWithoutFailure(t *testing.T) {
	c := NewTypeConverter(nil)
	for _, ft := range []model.FieldType{model.Text(), model.Decimal(), model.Integer(), model.Date(), model.Code(4)} {
		for _, in := range []any{nil, "", "   "} {
			got, ok := c.Coerce(in, ft)
			assert.True(t, ok, "type %s input %q", ft, in)
			assert.Nil(t, got, "type %s input %q", ft, in)
		}
	}
}

func TestCoerceDate(t *testing.T) {
	c := NewTypeConverter(nil)
	tests := []struct {
		in   any
		want time.Time
	}{
		{"2024-01-15", date(2024, 1, 15)},
		{"2024-01-15 13:45:00", date(2024, 1, 15)},
		{"15/01/2024", date(2024, 1, 15)},
		{"03/04/2024", date(2024, 4, 3)},
		{"3.4.2024", date(2024, 4, 3)},
		{"03-04-2024", date(2024, 4, 3)},
		{"20240115", date(2024, 1, 15)},
		{45306.0, date(2024, 1, 15)},
		{"45306", date(2024, 1, 15)},
		{time.Date(2024, 1, 15, 18, 30, 0, 0, time.FixedZone("X", 3600)), date(2024, 1, 15)},
	}
	for _, tt := range tests {
		got, ok := c.Coerce(tt.in, model.Date())
		require.True(t, ok, "input %v", tt.in)
		assert.Equal(t, tt.want, got, "input %v", tt.in)
	}

	got, ok := c.Coerce("not a date", model.Date())
	assert.False(t, ok)
	assert.Nil(t, got)

	got, ok = c.Coerce(-5.0, model.Date())
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCoerceDateMonthFirst(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DayFirst = false
	c := NewTypeConverterWithConfig(nil, cfg)

	got, ok := c.Coerce("03/04/2024", model.Date())
	require.True(t, ok)
	assert.Equal(t, date(2024, 3, 4), got)

	// ISO stays unambiguous
	got, ok = c.Coerce("2024-04-03", model.Date())
	require.True(t, ok)
	assert.Equal(t, date(2024, 4, 3), got)
}

func TestCoerceDate1904Serials(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Use1904Dates = true
	c := NewTypeConverterWithConfig(nil, cfg)

	// the 1904 epoch shifts serials by 1462 days
	got, ok := c.Coerce(45306.0, model.Date())
	require.True(t, ok)
	assert.Equal(t, date(2028, 1, 16), got)
}

func TestCoerceCode(t *testing.T) {
	c := NewTypeConverter(nil)
	tests := []struct {
		in    any
		width int
		want  string
	}{
		{1.0, 4, "0001"},
		{"1", 4, "0001"},
		{"0001", 4, "0001"},
		{" 12 ", 4, "0012"},
		{int64(1000), 4, "1000"},
		{"12345", 4, "12345"},
		{"A001", 4, "A001"},
		{" SL-1 ", 4, "SL-1"},
		{"1.5", 4, "1.5"},
		{12345.0, 10, "0000012345"},
	}
	for _, tt := range tests {
		got, ok := c.Coerce(tt.in, model.Code(tt.width))
		require.True(t, ok, "input %v", tt.in)
		assert.Equal(t, tt.want, got, "input %v", tt.in)
	}
}

func TestCoerceTrimmedString(t *testing.T) {
	c := NewTypeConverter(nil)

	got, ok := c.Coerce("  hello  ", model.Text())
	require.True(t, ok)
	assert.Equal(t, "hello", got)

	got, ok = c.Coerce(100000123.0, model.Text())
	require.True(t, ok)
	assert.Equal(t, "100000123", got)

	got, ok = c.Coerce(date(2024, 1, 2), model.Text())
	require.True(t, ok)
	assert.Equal(t, "2024-01-02", got)
}

func TestCoercePresence(t *testing.T) {
	c := NewTypeConverter(nil)
	ft := model.Presence("Z002", "N/A")
	tests := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{"", false},
		{"   ", false},
		{"Z002", false},
		{" z002 ", false},
		{"n/a", false},
		{"X", true},
		{"ABC123", true},
		{1.0, true},
	}
	for _, tt := range tests {
		got, ok := c.Coerce(tt.in, ft)
		require.True(t, ok)
		assert.Equal(t, tt.want, got, "input %#v", tt.in)
	}
}

func TestConvertRecord(t *testing.T) {
	c := NewTypeConverter(nil)
	cols := []model.Column{
		model.Col("material", model.Text()),
		model.Col("qty", model.Decimal()),
		model.Col("posted", model.Date()),
		model.Col("sloc", model.Code(4)),
	}
	rec := model.CanonicalRecord{
		Line: 7,
		Fields: map[string]any{
			"material": " M-1 ",
			"qty":      "abc",
			"posted":   "",
			"sloc":     "1",
		},
		Extras: map[string]any{"Note": "x"},
	}

	typed, failures := c.ConvertRecord(rec, cols)
	assert.Equal(t, 7, typed.Line)
	assert.Equal(t, "M-1", typed.Fields["material"])
	assert.Nil(t, typed.Fields["qty"])
	assert.Nil(t, typed.Fields["posted"])
	assert.Equal(t, "0001", typed.Fields["sloc"])
	assert.Equal(t, map[string]any{"Note": "x"}, typed.Extras)

	require.Len(t, failures, 1)
	assert.Equal(t, "qty", failures[0].Column)
	assert.Equal(t, 7, failures[0].Line)
	assert.Equal(t, "abc", failures[0].RawValue)
	assert.Equal(t, "decimal", failures[0].Target)
}

func TestGenerateColumnDefinitions(t *testing.T) {
	meta := &model.TableMetadata{
		Table: "fact_test",
		Columns: []model.Column{
			{Name: "upload_batch_id", Type: model.Text(), Nullable: false},
			model.Col("qty", model.Decimal()),
			model.Col("lgort", model.Code(4)),
			model.Col("extra_columns", model.JSON()),
		},
	}

	defs, err := GenerateColumnDefinitions(meta, model.DialectPostgres)
	require.NoError(t, err)
	require.Len(t, defs, 5)
	assert.Equal(t, `"id" BIGSERIAL PRIMARY KEY`, defs[0])
	assert.Equal(t, `"upload_batch_id" TEXT NOT NULL`, defs[1])
	assert.Equal(t, `"qty" NUMERIC(18,3) NULL`, defs[2])
	assert.Equal(t, `"lgort" VARCHAR(40) NULL`, defs[3])
	assert.Equal(t, `"extra_columns" JSONB NULL`, defs[4])

	defs, err = GenerateColumnDefinitions(meta, model.DialectSQLite)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(defs[0], "INTEGER PRIMARY KEY AUTOINCREMENT"))
	assert.Equal(t, `"extra_columns" TEXT NULL`, defs[4])

	defs, err = GenerateColumnDefinitions(meta, model.DialectSnowflake)
	require.NoError(t, err)
	assert.Equal(t, `"qty" NUMBER(18,3) NULL`, defs[2])

	_, err = GenerateColumnDefinitions(meta, model.Dialect("oracle"))
	assert.Error(t, err)
}
