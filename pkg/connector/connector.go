// pkg/connector/connector.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/erp-ingress/pkg/converter"
	"github.com/David-Botos/erp-ingress/pkg/model"
)

// DatabaseConnector defines the interface for destination store connectors
type DatabaseConnector interface {
	// DB returns the underlying database handle
	DB() *sqlx.DB

	// Dialect returns the SQL flavour of the store
	Dialect() model.Dialect

	// Ping verifies the store is reachable
	Ping(ctx context.Context) error

	// Validate checks the session can see the destination database
	Validate(ctx context.Context) error

	// Close closes the connection and releases resources
	Close() error

	// QualifiedName returns the quoted, schema-qualified table name
	QualifiedName(table string) string

	// BatchInsert appends rows to a table in a single transaction
	BatchInsert(ctx context.Context, table string, columns []string, valueRows [][]any, batchSize int) (int64, error)

	// CreateTableIfNotExists creates a table unless it already exists
	CreateTableIfNotExists(ctx context.Context, table string, columnDefs []string) error
}

// ConnStats contains standardized connection statistics
type ConnStats struct {
	OpenConnections int
	InUse           int
	Idle            int
	MaxOpenConns    int
	WaitCount       int64
	WaitDuration    time.Duration
}

// GetConnectionStats returns connection pool statistics for logging
func GetConnectionStats(db *sql.DB) ConnStats {
	stats := db.Stats()
	return ConnStats{
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
		MaxOpenConns:    stats.MaxOpenConnections,
		WaitCount:       stats.WaitCount,
		WaitDuration:    stats.WaitDuration,
	}
}

// LogConnectionStats logs connection pool statistics
func LogConnectionStats(logger *zap.Logger, name string, db *sql.DB) {
	stats := GetConnectionStats(db)
	logger.Debug("Connection pool stats",
		zap.String("database", name),
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int("max_open", stats.MaxOpenConns),
		zap.Int64("wait_count", stats.WaitCount),
		zap.Duration("wait_duration", stats.WaitDuration),
	)
}

// PingWithTimeout attempts to ping a database with a timeout
func PingWithTimeout(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- db.PingContext(pingCtx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-pingCtx.Done():
		return fmt.Errorf("ping timed out after %v: %w", timeout, pingCtx.Err())
	}
}

// ApplyConnectionSettings configures database connection pool settings
func ApplyConnectionSettings(db *sql.DB, maxOpen, maxIdle int, maxLifetime, maxIdleTime time.Duration) {
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if maxLifetime > 0 {
		db.SetConnMaxLifetime(maxLifetime)
	}
	if maxIdleTime > 0 {
		db.SetConnMaxIdleTime(maxIdleTime)
	}
}

// sqlConnector holds the behaviour shared by every dialect
type sqlConnector struct {
	db        *sqlx.DB
	logger    *zap.Logger
	dialect   model.Dialect
	schema    string // empty for stores without schemas
	name      string // database name for logs
	maxParams int    // bind parameter limit per statement
	timeout   time.Duration
}

// DB returns the underlying database handle
func (c *sqlConnector) DB() *sqlx.DB {
	return c.db
}

// Dialect returns the SQL flavour of the store
func (c *sqlConnector) Dialect() model.Dialect {
	return c.dialect
}

// Ping verifies the store answers queries
func (c *sqlConnector) Ping(ctx context.Context) error {
	if err := PingWithTimeout(ctx, c.db.DB, 5*time.Second); err != nil {
		return fmt.Errorf("failed to ping %s: %w", c.dialect, err)
	}
	var one int
	if err := c.db.GetContext(ctx, &one, "SELECT 1"); err != nil {
		return fmt.Errorf("failed to query %s: %w", c.dialect, err)
	}
	return nil
}

// Close closes the database connection
func (c *sqlConnector) Close() error {
	c.logger.Info("Closing connection", zap.String("database", c.name))
	LogConnectionStats(c.logger, c.name, c.db.DB)
	return c.db.Close()
}

// QualifiedName returns the quoted, schema-qualified table name
func (c *sqlConnector) QualifiedName(table string) string {
	if c.schema == "" {
		return converter.QuoteIdentifier(table)
	}
	return converter.QuoteIdentifier(c.schema) + "." + converter.QuoteIdentifier(table)
}

// rowsPerStatement caps a chunk so one statement stays under the bind limit
func (c *sqlConnector) rowsPerStatement(batchSize, columns int) int {
	if batchSize <= 0 {
		batchSize = 1000
	}
	if columns > 0 && c.maxParams > 0 {
		if limit := c.maxParams / columns; limit < batchSize {
			batchSize = limit
		}
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return batchSize
}

// BatchInsert performs a bulk insert into a table. All chunks are written
// in one transaction, so either every row is appended or none is.
func (c *sqlConnector) BatchInsert(
	ctx context.Context,
	table string,
	columns []string,
	valueRows [][]any,
	batchSize int,
) (int64, error) {
	if len(valueRows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("batch insert into %s has no columns", table)
	}

	fullTableName := c.QualifiedName(table)
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = converter.QuoteIdentifier(col)
	}
	columnStr := strings.Join(quoted, ", ")
	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	chunk := c.rowsPerStatement(batchSize, len(columns))

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var totalRowsInserted int64

	for i := 0; i < len(valueRows); i += chunk {
		end := i + chunk
		if end > len(valueRows) {
			end = len(valueRows)
		}
		currentBatch := valueRows[i:end]

		placeholders := make([]string, len(currentBatch))
		args := make([]any, 0, len(currentBatch)*len(columns))
		for j, row := range currentBatch {
			if len(row) != len(columns) {
				return 0, fmt.Errorf("row %d has %d values, expected %d", i+j, len(row), len(columns))
			}
			placeholders[j] = rowPlaceholder
			args = append(args, row...)
		}

		query := tx.Rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
			fullTableName, columnStr, strings.Join(placeholders, ", ")))

		execCtx, cancel := context.WithTimeout(ctx, c.timeout)
		result, err := tx.ExecContext(execCtx, query, args...)
		cancel()
		if err != nil {
			return 0, fmt.Errorf("batch insert into %s failed: %w", fullTableName, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			c.logger.Warn("Couldn't get rows affected", zap.Error(err))
			rowsAffected = int64(len(currentBatch))
		}
		totalRowsInserted += rowsAffected
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit insert into %s: %w", fullTableName, err)
	}

	c.logger.Debug("Inserted rows",
		zap.String("table", fullTableName),
		zap.Int64("rows", totalRowsInserted))
	return totalRowsInserted, nil
}

// CreateTableIfNotExists creates a table with the given column definitions
func (c *sqlConnector) CreateTableIfNotExists(ctx context.Context, table string, columnDefs []string) error {
	fullTableName := c.QualifiedName(table)
	createSQL := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		fullTableName,
		strings.Join(columnDefs, ",\n\t"),
	)

	execCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if _, err := c.db.ExecContext(execCtx, createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", fullTableName, err)
	}

	c.logger.Debug("Ensured table", zap.String("table", fullTableName))
	return nil
}
