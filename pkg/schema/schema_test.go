package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/erp-ingress/pkg/model"
)

func testSchema() *SourceSchema {
	return New("TEST",
		RequiredField("material", model.Text(), "Material#", "Material #", "Material"),
		Field("plant", model.Code(4), "Plant", "Plant."),
		Field("std_price", model.Decimal(), "Std. Price", "Std Price"),
	)
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Material", "material"},
		{"  Material  ", "material"},
		{"MATERIAL", "material"},
		{"Std.   Price", "std. price"},
		{"\tStd. Price\r\n", "std. price"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHeader(tt.in), "input %q", tt.in)
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, testSchema().Validate())

	t.Run("duplicate field", func(t *testing.T) {
		s := New("X", Field("a", model.Text(), "A"), Field("a", model.Text(), "B"))
		assert.ErrorContains(t, s.Validate(), "twice")
	})

	t.Run("spelling claimed twice", func(t *testing.T) {
		s := New("X", Field("a", model.Text(), "Plant"), Field("b", model.Text(), " plant "))
		assert.ErrorContains(t, s.Validate(), "claimed by both")
	})

	t.Run("no headers", func(t *testing.T) {
		s := New("X", Field("a", model.Text()))
		assert.ErrorContains(t, s.Validate(), "no accepted headers")
	})

	t.Run("zero code width", func(t *testing.T) {
		s := New("X", Field("a", model.Code(0), "A"))
		assert.Error(t, s.Validate())
	})

	t.Run("no source", func(t *testing.T) {
		s := New("", Field("a", model.Text(), "A"))
		assert.Error(t, s.Validate())
	})
}

func TestResolveHeaderVariantInvariance(t *testing.T) {
	s := testSchema()
	for _, spelling := range []string{"Material#", "Material #", "Material", " material ", "MATERIAL#"} {
		res, err := s.Resolve([]string{spelling, "Plant"})
		require.NoError(t, err, spelling)

		h, ok := res.Header("material")
		require.True(t, ok, spelling)
		assert.Equal(t, spelling, h)

		rec := res.Apply(model.SourceRecord{Line: 2, Cells: map[string]any{spelling: "M-1", "Plant": "1000"}})
		assert.Equal(t, "M-1", rec.Fields["material"], spelling)
		assert.Equal(t, "1000", rec.Fields["plant"], spelling)
	}
}

func TestResolveMissingRequired(t *testing.T) {
	s := New("TEST",
		RequiredField("material", model.Text(), "Material"),
		RequiredField("plant", model.Code(4), "Plant"),
		Field("desc", model.Text(), "Description"),
	)

	_, err := s.Resolve([]string{"Description", "Other"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))

	var mismatch *SchemaMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "TEST", mismatch.Source)
	assert.Equal(t, []string{"material", "plant"}, mismatch.Missing)
	assert.Contains(t, err.Error(), "material, plant")
}

func TestResolveSynthesizesOptionalFields(t *testing.T) {
	res, err := testSchema().Resolve([]string{"Material"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"plant", "std_price"}, res.Synthesized())

	rec := res.Apply(model.SourceRecord{Line: 2, Cells: map[string]any{"Material": "M-1"}})
	require.Contains(t, rec.Fields, "plant")
	require.Contains(t, rec.Fields, "std_price")
	assert.Nil(t, rec.Fields["plant"])
	assert.Nil(t, rec.Fields["std_price"])
	assert.Nil(t, rec.Extras)
}

func TestResolveExtrasPassThrough(t *testing.T) {
	res, err := testSchema().Resolve([]string{"Material", "Comment", "Plant"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Comment"}, res.Extras())

	rec := res.Apply(model.SourceRecord{Line: 3, Cells: map[string]any{
		"Material": "M-1", "Comment": "keep me", "Plant": "10",
	}})
	assert.Equal(t, 3, rec.Line)
	assert.Equal(t, map[string]any{"Comment": "keep me"}, rec.Extras)
	assert.NotContains(t, rec.Fields, "Comment")
}

func TestResolvePrefersFirstDeclaredSpelling(t *testing.T) {
	// both spellings present: the earlier declared one wins, the other becomes an extra
	res, err := testSchema().Resolve([]string{"Material", "Material#"})
	require.NoError(t, err)

	h, _ := res.Header("material")
	assert.Equal(t, "Material#", h)
	assert.Equal(t, []string{"Material"}, res.Extras())
}

func TestColumnsFollowDeclarationOrder(t *testing.T) {
	cols := testSchema().Columns()
	require.Len(t, cols, 3)
	assert.Equal(t, "material", cols[0].Name)
	assert.Equal(t, model.KindCode, cols[1].Type.Kind)
	assert.Equal(t, []string{"material", "plant", "std_price"}, testSchema().FieldNames())
}
