package ingest

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/erp-ingress/pkg/schema"
)

func TestParseSnapshotDate(t *testing.T) {
	now := time.Date(2024, 5, 17, 22, 30, 0, 0, time.UTC)

	got, err := ParseSnapshotDate("", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseSnapshotDate(" 2023-12-31 ", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{"31/12/2023", "2023-13-01", "yesterday", "2023-12-31T00:00:00Z"} {
		_, err := ParseSnapshotDate(bad, now)
		assert.ErrorIs(t, err, ErrInvalidSnapshotDate, bad)
	}
}

func TestUUIDProvider(t *testing.T) {
	provider := UUIDProvider{Now: func() time.Time {
		return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	}}

	a, err := provider.NewBatch("")
	require.NoError(t, err)
	b, err := provider.NewBatch("2024-01-01")
	require.NoError(t, err)

	_, err = uuid.Parse(a.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "2024-01-02", a.Snapshot())
	assert.Equal(t, "2024-01-01", b.Snapshot())

	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), a.CreatedAt)

	_, err = provider.NewBatch("not-a-date")
	assert.Equal(t, ErrorCategoryInvalidInput, CategorizeError(err))
}

func TestSnapshotDefaultsToUTCDate(t *testing.T) {
	// 22:30 on the 17th in UTC-5 is already the 18th in UTC
	eastern := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2024, 5, 17, 22, 30, 0, 0, eastern)

	got, err := ParseSnapshotDate("", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 18, 0, 0, 0, 0, time.UTC), got)

	batch, err := UUIDProvider{Now: func() time.Time { return now }}.NewBatch("")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-18", batch.Snapshot())
	assert.Equal(t, time.UTC, batch.CreatedAt.Location())
	assert.True(t, batch.CreatedAt.Equal(now))
}

func TestCategorizeError(t *testing.T) {
	mismatch := &schema.SchemaMismatchError{Source: "MB52", Missing: []string{"matnr"}}

	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ErrorCategoryNone},
		{"schema mismatch", fmt.Errorf("wrapped: %w", mismatch), ErrorCategorySchemaMismatch},
		{"unknown source", fmt.Errorf("%w: X", ErrUnknownSource), ErrorCategoryInvalidInput},
		{"bad date", ErrInvalidSnapshotDate, ErrorCategoryInvalidInput},
		{"tagged", newError(ErrorCategoryStorage, "MB52", StageWrite, errors.New("disk full")), ErrorCategoryStorage},
		{"other", errors.New("connection reset"), ErrorCategoryStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeError(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := newError(ErrorCategoryStorage, "MB52", StageWrite, errors.New("boom"))
	assert.Equal(t, "MB52 write: boom", err.Error())
	err.Table = "raw_mb52"
	assert.Equal(t, "MB52 write (raw_mb52): boom", err.Error())
	assert.Equal(t, "Storage", err.Category.String())
	assert.Equal(t, "Unknown(42)", ErrorCategory(42).String())
}
