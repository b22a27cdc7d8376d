package connector

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/erp-ingress/pkg/config"
	"github.com/David-Botos/erp-ingress/pkg/model"
)

func openSQLite(t *testing.T) *SQLiteConnector {
	t.Helper()
	cfg := &config.SQLiteConfig{
		Path:               filepath.Join(t.TempDir(), "data", "test.db"),
		BusyTimeoutSeconds: 5,
	}
	conn, err := NewSQLiteConnector(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSQLiteConnectorPing(t *testing.T) {
	conn := openSQLite(t)
	assert.Equal(t, model.DialectSQLite, conn.Dialect())
	assert.NoError(t, conn.Ping(context.Background()))
}

func TestBatchInsertChunksUnderParamLimit(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)
	conn.maxParams = 10 // five rows of two columns per statement

	require.NoError(t, conn.CreateTableIfNotExists(ctx, "raw_test", []string{
		`"id" INTEGER PRIMARY KEY AUTOINCREMENT`,
		`"material" TEXT NULL`,
		`"qty" NUMERIC NULL`,
	}))
	// creating twice is a no-op
	require.NoError(t, conn.CreateTableIfNotExists(ctx, "raw_test", []string{`"id" INTEGER`}))

	rows := make([][]any, 23)
	for i := range rows {
		rows[i] = []any{"M", i}
	}
	rows[3] = []any{nil, nil}

	n, err := conn.BatchInsert(ctx, "raw_test", []string{"material", "qty"}, rows, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(23), n)

	var count int
	require.NoError(t, conn.DB().GetContext(ctx, &count, `SELECT COUNT(*) FROM "raw_test"`))
	assert.Equal(t, 23, count)

	var nulls int
	require.NoError(t, conn.DB().GetContext(ctx, &nulls, `SELECT COUNT(*) FROM "raw_test" WHERE "material" IS NULL`))
	assert.Equal(t, 1, nulls)
}

func TestBatchInsertIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)
	conn.maxParams = 2

	require.NoError(t, conn.CreateTableIfNotExists(ctx, "strict_test", []string{
		`"id" INTEGER PRIMARY KEY AUTOINCREMENT`,
		`"material" TEXT NOT NULL`,
	}))

	rows := [][]any{{"M1"}, {"M2"}, {"M3"}, {nil}}
	_, err := conn.BatchInsert(ctx, "strict_test", []string{"material"}, rows, 1000)
	require.Error(t, err)

	var count int
	require.NoError(t, conn.DB().GetContext(ctx, &count, `SELECT COUNT(*) FROM "strict_test"`))
	assert.Equal(t, 0, count)
}

func TestBatchInsertRejectsRaggedRows(t *testing.T) {
	conn := openSQLite(t)
	_, err := conn.BatchInsert(context.Background(), "t", []string{"a", "b"}, [][]any{{1}}, 10)
	assert.Error(t, err)

	n, err := conn.BatchInsert(context.Background(), "t", []string{"a"}, nil, 10)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestQualifiedName(t *testing.T) {
	c := &sqlConnector{schema: "reporting"}
	assert.Equal(t, `"reporting"."raw_mb52"`, c.QualifiedName("raw_mb52"))

	c = &sqlConnector{}
	assert.Equal(t, `"raw_mb52"`, c.QualifiedName("raw_mb52"))
}

func TestRowsPerStatement(t *testing.T) {
	c := &sqlConnector{maxParams: 65535}
	assert.Equal(t, 5000, c.rowsPerStatement(5000, 10))
	assert.Equal(t, 1092, c.rowsPerStatement(5000, 60))
	assert.Equal(t, 1000, c.rowsPerStatement(0, 10))

	c = &sqlConnector{maxParams: 10}
	assert.Equal(t, 1, c.rowsPerStatement(100, 50))
}

func TestSQLiteConnectorValidate(t *testing.T) {
	conn := openSQLite(t)
	assert.NoError(t, conn.Validate(context.Background()))

	require.NoError(t, conn.Close())
	assert.ErrorContains(t, conn.Validate(context.Background()), "failed to query SQLite version")
}

func TestFactoryCreateValidatesConnection(t *testing.T) {
	cfg := &config.Config{
		StoreDriver: string(model.DialectSQLite),
		SQLite: &config.SQLiteConfig{
			Path:               filepath.Join(t.TempDir(), "factory.db"),
			BusyTimeoutSeconds: 5,
		},
	}

	conn, err := NewConnectorFactory(cfg, nil).Create(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	assert.Equal(t, model.DialectSQLite, conn.Dialect())

	_, err = NewConnectorFactory(&config.Config{StoreDriver: "oracle"}, nil).Create(context.Background())
	assert.ErrorContains(t, err, "unsupported store driver")
}
