// pkg/ingest/batch.go
package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SnapshotLayout is the accepted snapshot date format
const SnapshotLayout = "2006-01-02"

// Batch identifies one ingestion. Every row written for it carries the
// batch id, snapshot date and source tag.
type Batch struct {
	ID           string    // Unique batch identifier
	SnapshotDate time.Time // Business date of the extract, UTC midnight
	CreatedAt    time.Time // When the batch was created
}

// NewBatch creates a batch with a fresh id
func NewBatch(snapshot time.Time) Batch {
	return Batch{
		ID:           uuid.New().String(),
		SnapshotDate: snapshot,
		CreatedAt:    time.Now().UTC(),
	}
}

// WithID sets the batch id and returns the modified batch
func (b Batch) WithID(id string) Batch {
	b.ID = id
	return b
}

// Snapshot returns the snapshot date formatted as YYYY-MM-DD
func (b Batch) Snapshot() string {
	return b.SnapshotDate.Format(SnapshotLayout)
}

// ParseSnapshotDate parses a YYYY-MM-DD snapshot date. A blank value means
// today in UTC according to now.
func ParseSnapshotDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}

	t, err := time.Parse(SnapshotLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q must be YYYY-MM-DD", ErrInvalidSnapshotDate, s)
	}
	return t, nil
}

// BatchProvider hands out batches for incoming uploads
type BatchProvider interface {
	NewBatch(snapshot string) (Batch, error)
}

// UUIDProvider creates batches with random UUIDs
type UUIDProvider struct {
	Now func() time.Time
}

// NewBatch parses the snapshot date and creates a batch
func (p UUIDProvider) NewBatch(snapshot string) (Batch, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	at := now().UTC()
	date, err := ParseSnapshotDate(snapshot, at)
	if err != nil {
		return Batch{}, err
	}

	batch := NewBatch(date)
	batch.CreatedAt = at
	return batch, nil
}
