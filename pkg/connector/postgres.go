// pkg/connector/postgres.go
package connector

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/erp-ingress/pkg/config"
	"github.com/David-Botos/erp-ingress/pkg/converter"
	"github.com/David-Botos/erp-ingress/pkg/model"
)

// PostgresConnector implements the DatabaseConnector interface for PostgreSQL
type PostgresConnector struct {
	sqlConnector
	cfg *config.PostgresConfig
}

// NewPostgresConnector creates and initializes a new PostgreSQL connector
func NewPostgresConnector(ctx context.Context, cfg *config.PostgresConfig) (*PostgresConnector, error) {
	logger := zap.L().Named("postgres-connector")

	// Log connection attempt
	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := sqlx.Open("pgx", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}

	ApplyConnectionSettings(
		db.DB,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime(),
		cfg.ConnMaxIdleTime(),
	)

	// Verify connection
	if err := PingWithTimeout(ctx, db.DB, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	timeout := cfg.StatementTimeout()
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	connector := &PostgresConnector{
		sqlConnector: sqlConnector{
			db:        db,
			logger:    logger,
			dialect:   model.DialectPostgres,
			schema:    cfg.Schema,
			name:      cfg.Database,
			maxParams: 65535,
			timeout:   timeout,
		},
		cfg: cfg,
	}

	if err := connector.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	LogConnectionStats(logger, cfg.Database, db.DB)
	return connector, nil
}

// Validate verifies the PostgreSQL connection and reports the server version
func (c *PostgresConnector) Validate(ctx context.Context) error {
	var version string
	if err := c.db.GetContext(ctx, &version, "SELECT version()"); err != nil {
		return fmt.Errorf("failed to query PostgreSQL version: %w", err)
	}

	c.logger.Info("PostgreSQL connection validated",
		zap.String("version", version),
		zap.String("database", c.cfg.Database),
		zap.String("schema", c.cfg.Schema))
	return nil
}

// ensureSchema creates the destination schema if it doesn't exist
func (c *PostgresConnector) ensureSchema(ctx context.Context) error {
	if c.schema == "" || c.schema == "public" {
		return nil
	}
	_, err := c.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+converter.QuoteIdentifier(c.schema))
	if err != nil {
		return fmt.Errorf("failed to create/verify schema %s: %w", c.schema, err)
	}
	return nil
}
