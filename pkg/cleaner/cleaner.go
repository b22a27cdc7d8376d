// pkg/cleaner/cleaner.go
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/erp-ingress/pkg/model"
	"github.com/David-Botos/erp-ingress/pkg/sink"
)

// QualityTable receives one row per cell that degraded to null on ingress
const QualityTable = "ingest_data_quality"

// DataCleaner records coercion failures. They are logged as an aggregated
// per-column summary and, when a store is configured, appended to QualityTable.
type DataCleaner struct {
	store  sink.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewDataCleaner creates a DataCleaner. A nil store logs without persisting.
func NewDataCleaner(store sink.Store, logger *zap.Logger) (*DataCleaner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &DataCleaner{
		store:  store,
		logger: logger.Named("data-quality"),
		now:    time.Now,
	}, nil
}

// QualityTableMetadata describes the destination of recorded failures
func QualityTableMetadata() *model.TableMetadata {
	return &model.TableMetadata{
		Table: QualityTable,
		Columns: []model.Column{
			{Name: "upload_batch_id", Type: model.Text(), Nullable: false},
			model.Col("snapshot_date", model.Date()),
			model.Col("source", model.Text()),
			model.Col("column_name", model.Text()),
			model.Col("line_number", model.Integer()),
			model.Col("original_value", model.Text()),
			model.Col("target_type", model.Text()),
			model.Col("reason", model.Text()),
			model.Col("recorded_at", model.Text()),
		},
	}
}

// RecordCoercionFailures logs a summary of failures and persists them.
// Failures never abort ingestion, so a storage error is returned for the
// caller to log rather than to fail the batch.
func (c *DataCleaner) RecordCoercionFailures(
	ctx context.Context,
	snapshot time.Time,
	failures []model.CoercionFailure,
) error {
	if len(failures) == 0 {
		return nil
	}

	for _, s := range Summarize(failures) {
		c.logger.Warn("Values degraded to null during coercion",
			zap.String("source", s.Source),
			zap.String("column", s.Column),
			zap.String("target", s.Target),
			zap.Int("count", s.Count),
			zap.Int("first_line", s.FirstLine),
			zap.Any("sample", s.Sample))
	}

	if c.store == nil {
		return nil
	}

	set := failureRowSet(failures, snapshot, c.now())
	n, err := c.store.Append(ctx, set)
	if err != nil {
		return fmt.Errorf("failed to record coercion failures: %w", err)
	}

	c.logger.Info("Recorded coercion failures", zap.Int64("count", n))
	return nil
}
