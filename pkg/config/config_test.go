package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/erp-ingress/pkg/model"
)

func TestLoadConfigDefaultsWithSQLite(t *testing.T) {
	cfg, err := LoadConfigFromMap(map[string]string{
		"STORE_DRIVER": "sqlite",
	})
	require.NoError(t, err)

	assert.Equal(t, model.DialectSQLite, cfg.Dialect())
	assert.Equal(t, 5000, cfg.ChunkSize)
	assert.True(t, cfg.AutoCreateTables)
	assert.True(t, cfg.RecordCoercionFailures)
	assert.True(t, cfg.DateDayFirst)
	assert.False(t, cfg.Excel1904Dates)
	assert.Equal(t, []string{"Z002"}, cfg.SerialProfileSentinels)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, int64(64<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "info", cfg.LogLevel)

	require.NotNil(t, cfg.SQLite)
	assert.Nil(t, cfg.Postgres)
	assert.Nil(t, cfg.Snowflake)
	assert.Contains(t, cfg.SQLite.ConnectionString(), "erp_ingress.db?")
	assert.Contains(t, cfg.SQLite.ConnectionString(), "busy_timeout(5000)")
}

func TestLoadConfigPostgresRequiresCredentials(t *testing.T) {
	_, err := LoadConfigFromMap(map[string]string{})
	assert.Error(t, err)

	cfg, err := LoadConfigFromMap(map[string]string{
		"POSTGRES_USER":     "ingress",
		"POSTGRES_PASSWORD": "secret",
		"POSTGRES_DB":       "erp",
		"POSTGRES_PORT":     "6543",
	})
	require.NoError(t, err)
	require.NotNil(t, cfg.Postgres)
	assert.Equal(t, 6543, cfg.Postgres.Port)
	assert.Equal(t, "public", cfg.Postgres.Schema)
	assert.Equal(t,
		"host=localhost port=6543 user=ingress password=secret dbname=erp sslmode=disable",
		cfg.Postgres.ConnectionString())
	assert.Equal(t, int64(300), int64(cfg.Postgres.StatementTimeout().Seconds()))
}

func TestLoadConfigSnowflakeAuthenticator(t *testing.T) {
	base := map[string]string{
		"STORE_DRIVER":        "snowflake",
		"SNOWFLAKE_USER":      "svc",
		"SNOWFLAKE_ACCOUNT":   "acme-xy123",
		"SNOWFLAKE_WAREHOUSE": "WH",
	}

	// password auth without a password is rejected
	_, err := LoadConfigFromMap(base)
	assert.Error(t, err)

	base["SNOWFLAKE_AUTHENTICATOR"] = "externalbrowser"
	cfg, err := LoadConfigFromMap(base)
	require.NoError(t, err)
	assert.Equal(t, gosnowflake.AuthTypeExternalBrowser, cfg.Snowflake.Authenticator)
	assert.Equal(t, "ERP_REPORTING", cfg.Snowflake.Database)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown driver": {"STORE_DRIVER": "oracle"},
		"zero chunk":     {"STORE_DRIVER": "sqlite", "CHUNK_SIZE": "0"},
		"bad log level":  {"STORE_DRIVER": "sqlite", "LOG_LEVEL": "verbose"},
		"bad int":        {"STORE_DRIVER": "sqlite", "CHUNK_SIZE": "lots"},
	}
	for name, environ := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfigFromMap(environ)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigSentinelList(t *testing.T) {
	cfg, err := LoadConfigFromMap(map[string]string{
		"STORE_DRIVER":             "sqlite",
		"SERIAL_PROFILE_SENTINELS": "Z002,Z000",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Z002", "Z000"}, cfg.SerialProfileSentinels)
}

func TestLoadConfigExcel1904Dates(t *testing.T) {
	cfg, err := LoadConfigFromMap(map[string]string{
		"STORE_DRIVER":     "sqlite",
		"EXCEL_1904_DATES": "true",
	})
	require.NoError(t, err)
	assert.True(t, cfg.Excel1904Dates)
}

func TestLoadEnvSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("ERP_INGRESS_TEST_KEY=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ERP_INGRESS_TEST_KEY") })

	n, err := LoadEnv([]string{filepath.Join(dir, "missing.env"), path})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "loaded", os.Getenv("ERP_INGRESS_TEST_KEY"))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", "console")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger("loud", "json")
	assert.Error(t, err)
}
