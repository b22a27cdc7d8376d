// pkg/connector/sqlite.go
package connector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/David-Botos/erp-ingress/pkg/config"
	"github.com/David-Botos/erp-ingress/pkg/model"
)

// SQLiteConnector implements the DatabaseConnector interface for a local SQLite file
type SQLiteConnector struct {
	sqlConnector
	cfg *config.SQLiteConfig
}

// NewSQLiteConnector opens (and creates if needed) a SQLite database
func NewSQLiteConnector(ctx context.Context, cfg *config.SQLiteConfig) (*SQLiteConnector, error) {
	logger := zap.L().Named("sqlite-connector")
	logger.Info("Opening SQLite database", zap.String("path", cfg.Path))

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// A single writer avoids SQLITE_BUSY between pooled connections
	ApplyConnectionSettings(db.DB, 1, 1, 0, 0)

	if err := PingWithTimeout(ctx, db.DB, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	return &SQLiteConnector{
		sqlConnector: sqlConnector{
			db:        db,
			logger:    logger,
			dialect:   model.DialectSQLite,
			name:      cfg.Path,
			maxParams: 32766,
			timeout:   time.Minute,
		},
		cfg: cfg,
	}, nil
}

// Validate checks the database file is readable and reports the SQLite version
func (c *SQLiteConnector) Validate(ctx context.Context) error {
	var version string
	if err := c.db.GetContext(ctx, &version, "SELECT sqlite_version()"); err != nil {
		return fmt.Errorf("failed to query SQLite version: %w", err)
	}

	c.logger.Info("SQLite database validated",
		zap.String("version", version),
		zap.String("path", c.cfg.Path))
	return nil
}
