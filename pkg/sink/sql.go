// pkg/sink/sql.go
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/erp-ingress/pkg/connector"
	"github.com/David-Botos/erp-ingress/pkg/converter"
	"github.com/David-Botos/erp-ingress/pkg/model"
)

// SQLStore appends row sets to a relational store through a connector
type SQLStore struct {
	conn   connector.DatabaseConnector
	logger *zap.Logger
	config SQLStoreConfig
}

// SQLStoreConfig provides configuration options for SQLStore
type SQLStoreConfig struct {
	// Rows per INSERT statement, further capped by the driver bind limit
	ChunkSize int
}

// DefaultSQLStoreConfig returns the default configuration
func DefaultSQLStoreConfig() SQLStoreConfig {
	return SQLStoreConfig{ChunkSize: 5000}
}

// NewSQLStore creates a store over an open connector
func NewSQLStore(conn connector.DatabaseConnector, logger *zap.Logger) *SQLStore {
	return NewSQLStoreWithConfig(conn, logger, DefaultSQLStoreConfig())
}

// NewSQLStoreWithConfig creates a store with custom configuration
func NewSQLStoreWithConfig(conn connector.DatabaseConnector, logger *zap.Logger, config SQLStoreConfig) *SQLStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLStore{
		conn:   conn,
		logger: logger.Named("sql-store"),
		config: config,
	}
}

// EnsureTables creates every destination table that does not exist yet
func (s *SQLStore) EnsureTables(ctx context.Context, tables []*model.TableMetadata) error {
	for _, meta := range tables {
		defs, err := converter.GenerateColumnDefinitions(meta, s.conn.Dialect())
		if err != nil {
			return fmt.Errorf("failed to generate columns for %s: %w", meta.Table, err)
		}
		if err := s.conn.CreateTableIfNotExists(ctx, meta.Table, defs); err != nil {
			return err
		}
	}
	s.logger.Info("Destination tables ready", zap.Int("tables", len(tables)))
	return nil
}

// Append writes every row of set in one transaction
func (s *SQLStore) Append(ctx context.Context, set model.RowSet) (int64, error) {
	if set.Len() == 0 {
		return 0, nil
	}

	values := set.Values()
	for _, row := range values {
		for i, v := range row {
			prepared, err := s.prepareValue(v)
			if err != nil {
				return 0, fmt.Errorf("failed to prepare column %s for %s: %w", set.Columns[i], set.Table, err)
			}
			row[i] = prepared
		}
	}

	start := time.Now()
	n, err := s.conn.BatchInsert(ctx, set.Table, set.Columns, values, s.config.ChunkSize)
	if err != nil {
		s.logger.Error("Append failed",
			zap.String("table", set.Table),
			zap.Int("rows", set.Len()),
			zap.Error(err))
		return 0, err
	}

	s.logger.Info("Appended rows",
		zap.String("table", set.Table),
		zap.Int64("rows", n),
		zap.Duration("duration", time.Since(start)))
	return n, nil
}

// Ping verifies the underlying connection
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the underlying connection
func (s *SQLStore) Close() error {
	return s.conn.Close()
}

// prepareValue converts typed values into driver arguments. Extras maps are
// stored as JSON text. SQLite has no date type, so dates are written as
// ISO text there.
func (s *SQLStore) prepareValue(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case time.Time:
		if s.conn.Dialect() == model.DialectSQLite {
			return val.Format("2006-01-02"), nil
		}
		return val, nil
	default:
		return v, nil
	}
}
