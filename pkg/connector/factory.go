// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/erp-ingress/pkg/config"
	"github.com/David-Botos/erp-ingress/pkg/model"
)

// ConnectorFactory creates database connectors
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// Create opens a connector for the configured store driver and validates it
func (f *ConnectorFactory) Create(ctx context.Context) (DatabaseConnector, error) {
	f.logger.Info("Creating connector", zap.String("driver", f.cfg.StoreDriver))

	conn, err := f.open(ctx)
	if err != nil {
		return nil, err
	}

	if err := conn.Validate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to validate %s connection: %w", f.cfg.StoreDriver, err)
	}
	return conn, nil
}

func (f *ConnectorFactory) open(ctx context.Context) (DatabaseConnector, error) {
	switch f.cfg.Dialect() {
	case model.DialectPostgres:
		conn, err := NewPostgresConnector(ctx, f.cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
		}
		return conn, nil
	case model.DialectSnowflake:
		conn, err := NewSnowflakeConnector(ctx, f.cfg.Snowflake)
		if err != nil {
			return nil, fmt.Errorf("failed to create Snowflake connector: %w", err)
		}
		return conn, nil
	case model.DialectSQLite:
		conn, err := NewSQLiteConnector(ctx, f.cfg.SQLite)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite connector: %w", err)
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", f.cfg.StoreDriver)
	}
}
