// pkg/config/config.go
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/David-Botos/erp-ingress/pkg/model"
)

// Config represents the application configuration
type Config struct {
	// Destination store
	StoreDriver      string `env:"STORE_DRIVER" envDefault:"postgres" validate:"oneof=postgres snowflake sqlite"`
	ChunkSize        int    `env:"CHUNK_SIZE" envDefault:"5000" validate:"gt=0"`
	AutoCreateTables bool   `env:"AUTO_CREATE_TABLES" envDefault:"true"`

	// Data quality
	RecordCoercionFailures bool `env:"RECORD_COERCION_FAILURES" envDefault:"true"`

	// Coercion and derived rules
	DateDayFirst           bool     `env:"DATE_DAY_FIRST" envDefault:"true"`
	Excel1904Dates         bool     `env:"EXCEL_1904_DATES" envDefault:"false"`
	SerialProfileSentinels []string `env:"SERIAL_PROFILE_SENTINELS" envDefault:"Z002"`

	// HTTP server
	HTTPAddr       string `env:"HTTP_ADDR" envDefault:":8000" validate:"required"`
	UploadDir      string `env:"UPLOAD_DIR" envDefault:"/tmp/uploads" validate:"required"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"67108864" validate:"gt=0"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json console"`

	// Only the selected driver is loaded
	Postgres  *PostgresConfig  `env:"-"`
	Snowflake *SnowflakeConfig `env:"-"`
	SQLite    *SQLiteConfig    `env:"-"`
}

// LoadEnv loads the given .env files that exist, skipping missing ones.
// It returns how many files were loaded.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// LoadConfig loads .env files and then configuration from environment variables
func LoadConfig(envFiles ...string) (*Config, error) {
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}
	return load(env.Options{})
}

// LoadConfigFromMap loads configuration from an explicit environment
func LoadConfigFromMap(environ map[string]string) (*Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	// Load database configuration for the selected driver
	var err error
	switch model.Dialect(cfg.StoreDriver) {
	case model.DialectPostgres:
		cfg.Postgres, err = LoadPostgresConfig(opts)
	case model.DialectSnowflake:
		cfg.Snowflake, err = LoadSnowflakeConfig(opts)
	case model.DialectSQLite:
		cfg.SQLite, err = LoadSQLiteConfig(opts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", cfg.StoreDriver, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch model.Dialect(c.StoreDriver) {
	case model.DialectPostgres:
		if c.Postgres == nil {
			return fmt.Errorf("postgreSQL configuration is required")
		}
	case model.DialectSnowflake:
		if c.Snowflake == nil {
			return fmt.Errorf("snowflake configuration is required")
		}
	case model.DialectSQLite:
		if c.SQLite == nil {
			return fmt.Errorf("sqlite configuration is required")
		}
	}
	return nil
}

// Dialect returns the SQL dialect of the selected store driver
func (c *Config) Dialect() model.Dialect {
	return model.Dialect(c.StoreDriver)
}
