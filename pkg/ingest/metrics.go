// pkg/ingest/metrics.go
package ingest

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Metrics tracks ingestion counters and latencies
type Metrics struct {
	logger *zap.Logger

	batchesTotal     *prometheus.CounterVec
	recordsRead      *prometheus.CounterVec
	rowsWritten      *prometheus.CounterVec
	coercionFailures *prometheus.CounterVec
	droppedRows      *prometheus.CounterVec
	batchDuration    *prometheus.HistogramVec
}

// NewMetrics registers the ingestion metrics with reg.
// A nil registerer creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer, logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	return &Metrics{
		logger: logger.Named("metrics"),
		batchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ingress",
			Name:      "batches_total",
			Help:      "Total number of ingestion batches by outcome.",
		}, []string{"source", "result"}),
		recordsRead: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ingress",
			Name:      "records_read_total",
			Help:      "Total number of source records read.",
		}, []string{"source"}),
		rowsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ingress",
			Name:      "rows_written_total",
			Help:      "Total number of rows appended per destination table.",
		}, []string{"source", "table"}),
		coercionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ingress",
			Name:      "coercion_failures_total",
			Help:      "Total number of cells that degraded to null during coercion.",
		}, []string{"source"}),
		droppedRows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ingress",
			Name:      "dropped_rows_total",
			Help:      "Total number of rows dropped by key deduplication.",
		}, []string{"source"}),
		batchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ingress",
			Name:      "batch_duration_seconds",
			Help:      "Duration of ingestion batches.",
			Buckets: []float64{
				0.05, 0.1, 0.25, 0.5,
				1, 2.5, 5, 10,
				30, 60, 120,
			},
		}, []string{"source", "result"}),
	}
}

// RecordBatch records the outcome of one batch
func (m *Metrics) RecordBatch(counts *RowCounts, duration time.Duration, err error) {
	if m == nil || counts == nil {
		return
	}

	result := "success"
	if err != nil {
		result = CategorizeError(err).String()
	}

	m.batchesTotal.WithLabelValues(counts.Source, result).Inc()
	m.batchDuration.WithLabelValues(counts.Source, result).Observe(duration.Seconds())
	m.recordsRead.WithLabelValues(counts.Source).Add(float64(counts.RecordsRead))
	m.coercionFailures.WithLabelValues(counts.Source).Add(float64(counts.CoercionFailures))
	m.droppedRows.WithLabelValues(counts.Source).Add(float64(counts.DroppedRows))
	tables := counts.TableNames()
	for _, table := range tables {
		m.rowsWritten.WithLabelValues(counts.Source, table).Add(float64(counts.Tables[table]))
	}

	if err != nil {
		m.logger.Warn("Batch failed",
			zap.String("source", counts.Source),
			zap.String("batch_id", counts.BatchID),
			zap.String("category", result),
			zap.Duration("duration", duration))
		return
	}

	m.logger.Info("Batch completed",
		zap.String("source", counts.Source),
		zap.String("batch_id", counts.BatchID),
		zap.Int("records_read", counts.RecordsRead),
		zap.Int64("rows_written", counts.RowsWritten()),
		zap.Strings("tables", tables),
		zap.Int("coercion_failures", counts.CoercionFailures),
		zap.Duration("duration", duration),
		zap.Float64("rows_per_second", rowsPerSecond(counts.RowsWritten(), duration)))
}

func rowsPerSecond(rows int64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(rows) / d.Seconds()
}
