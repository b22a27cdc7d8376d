// pkg/config/database.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/snowflakedb/gosnowflake"
)

// SnowflakeConfig holds Snowflake connection parameters
type SnowflakeConfig struct {
	User          string               `env:"SNOWFLAKE_USER,required"`
	Password      string               `env:"SNOWFLAKE_PASSWORD"`
	Account       string               `env:"SNOWFLAKE_ACCOUNT,required"`
	Warehouse     string               `env:"SNOWFLAKE_WAREHOUSE,required"`
	Database      string               `env:"SNOWFLAKE_DATABASE" envDefault:"ERP_REPORTING"`
	Schema        string               `env:"SNOWFLAKE_SCHEMA" envDefault:"PUBLIC"`
	Role          string               `env:"SNOWFLAKE_ROLE"`
	AuthName      string               `env:"SNOWFLAKE_AUTHENTICATOR" envDefault:"snowflake"`
	Authenticator gosnowflake.AuthType `env:"-"`

	// Connection pool settings
	MaxOpenConns           int `env:"SNOWFLAKE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns           int `env:"SNOWFLAKE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetimeSeconds int `env:"SNOWFLAKE_CONN_MAX_LIFETIME_SECONDS" envDefault:"600"`
	ConnMaxIdleTimeSeconds int `env:"SNOWFLAKE_CONN_MAX_IDLE_TIME_SECONDS" envDefault:"300"`
	QueryTimeoutSeconds    int `env:"SNOWFLAKE_QUERY_TIMEOUT_SECONDS" envDefault:"300"`
}

// PostgresConfig holds PostgreSQL connection parameters
type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER,required"`
	Password string `env:"POSTGRES_PASSWORD,required"`
	Database string `env:"POSTGRES_DB,required"`
	SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	Schema   string `env:"POSTGRES_SCHEMA" envDefault:"public"`

	// Connection pool settings
	MaxOpenConns           int `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns           int `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"10"`
	ConnMaxLifetimeSeconds int `env:"POSTGRES_CONN_MAX_LIFETIME_SECONDS" envDefault:"1800"`
	ConnMaxIdleTimeSeconds int `env:"POSTGRES_CONN_MAX_IDLE_TIME_SECONDS" envDefault:"600"`

	// Statement timeout
	StatementTimeoutSeconds int `env:"POSTGRES_STATEMENT_TIMEOUT_SECONDS" envDefault:"300"`
}

// SQLiteConfig holds parameters for a local SQLite store
type SQLiteConfig struct {
	Path               string `env:"SQLITE_PATH" envDefault:"erp_ingress.db"`
	BusyTimeoutSeconds int    `env:"SQLITE_BUSY_TIMEOUT_SECONDS" envDefault:"5"`
}

// LoadSnowflakeConfig loads Snowflake configuration from environment variables
func LoadSnowflakeConfig(opts env.Options) (*SnowflakeConfig, error) {
	cfg := &SnowflakeConfig{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}

	cfg.Authenticator = parseAuthenticator(cfg.AuthName)
	if cfg.Authenticator == gosnowflake.AuthTypeSnowflake && cfg.Password == "" {
		return nil, fmt.Errorf("SNOWFLAKE_PASSWORD is required for password authentication")
	}
	return cfg, nil
}

// parseAuthenticator converts an authenticator name to the driver type
func parseAuthenticator(name string) gosnowflake.AuthType {
	switch strings.ToLower(name) {
	case "snowflake":
		return gosnowflake.AuthTypeSnowflake
	case "oauth":
		return gosnowflake.AuthTypeOAuth
	case "externalbrowser":
		return gosnowflake.AuthTypeExternalBrowser
	case "username_password_mfa":
		return gosnowflake.AuthTypeUsernamePasswordMFA
	case "jwt":
		return gosnowflake.AuthTypeJwt
	case "token":
		return gosnowflake.AuthTypeTokenAccessor
	case "okta":
		return gosnowflake.AuthTypeOkta
	default:
		return gosnowflake.AuthTypeSnowflake
	}
}

// LoadPostgresConfig loads PostgreSQL configuration from environment variables
func LoadPostgresConfig(opts env.Options) (*PostgresConfig, error) {
	cfg := &PostgresConfig{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadSQLiteConfig loads SQLite configuration from environment variables
func LoadSQLiteConfig(opts env.Options) (*SQLiteConfig, error) {
	cfg := &SQLiteConfig{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("SQLITE_PATH must not be empty")
	}
	return cfg, nil
}

// ConnMaxLifetime returns the pool connection lifetime
func (c *SnowflakeConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeSeconds) * time.Second
}

// ConnMaxIdleTime returns the pool idle timeout
func (c *SnowflakeConfig) ConnMaxIdleTime() time.Duration {
	return time.Duration(c.ConnMaxIdleTimeSeconds) * time.Second
}

// QueryTimeout returns the session statement timeout
func (c *SnowflakeConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}

// ConnMaxLifetime returns the pool connection lifetime
func (c *PostgresConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeSeconds) * time.Second
}

// ConnMaxIdleTime returns the pool idle timeout
func (c *PostgresConfig) ConnMaxIdleTime() time.Duration {
	return time.Duration(c.ConnMaxIdleTimeSeconds) * time.Second
}

// StatementTimeout returns the session statement timeout
func (c *PostgresConfig) StatementTimeout() time.Duration {
	return time.Duration(c.StatementTimeoutSeconds) * time.Second
}

// ConnectionString returns a formatted PostgreSQL connection string
func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
}

// ConnectionString returns a modernc sqlite DSN with WAL and a busy timeout
func (c *SQLiteConfig) ConnectionString() string {
	busy := c.BusyTimeoutSeconds * 1000
	if busy <= 0 {
		busy = 5000
	}
	return fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", c.Path, busy)
}
