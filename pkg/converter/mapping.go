// pkg/converter/mapping.go
package converter

import (
	"fmt"

	"github.com/lib/pq"

	"github.com/David-Botos/erp-ingress/pkg/model"
)

// IDColumn is the surrogate key prepended to every destination table
const IDColumn = "id"

// ColumnType maps a declared field type to a column type for the dialect
func ColumnType(ft model.FieldType, dialect model.Dialect) (string, error) {
	switch dialect {
	case model.DialectPostgres:
		return postgresType(ft), nil
	case model.DialectSnowflake:
		return snowflakeType(ft), nil
	case model.DialectSQLite:
		return sqliteType(ft), nil
	default:
		return "", fmt.Errorf("unknown dialect: %s", dialect)
	}
}

func postgresType(ft model.FieldType) string {
	switch ft.Kind {
	case model.KindDecimal:
		return "NUMERIC(18,3)"
	case model.KindInteger:
		return "BIGINT"
	case model.KindFloat:
		return "DOUBLE PRECISION"
	case model.KindDate:
		return "DATE"
	case model.KindBoolean:
		return "BOOLEAN"
	case model.KindCode:
		return fmt.Sprintf("VARCHAR(%d)", codeLength(ft.Width))
	case model.KindJSON:
		return "JSONB"
	default:
		return "TEXT"
	}
}

func snowflakeType(ft model.FieldType) string {
	switch ft.Kind {
	case model.KindDecimal:
		return "NUMBER(18,3)"
	case model.KindInteger:
		return "NUMBER(19,0)"
	case model.KindFloat:
		return "FLOAT"
	case model.KindDate:
		return "DATE"
	case model.KindBoolean:
		return "BOOLEAN"
	case model.KindCode:
		return fmt.Sprintf("VARCHAR(%d)", codeLength(ft.Width))
	default:
		return "VARCHAR"
	}
}

func sqliteType(ft model.FieldType) string {
	switch ft.Kind {
	case model.KindDecimal:
		return "NUMERIC"
	case model.KindInteger, model.KindBoolean:
		return "INTEGER"
	case model.KindFloat:
		return "REAL"
	case model.KindDate:
		return "DATE"
	default:
		return "TEXT"
	}
}

// codeLength leaves room for codes longer than their pad width
func codeLength(width int) int {
	if width < 20 {
		return 40
	}
	return width * 2
}

// idColumnDefinition returns the surrogate key definition for the dialect
func idColumnDefinition(dialect model.Dialect) string {
	switch dialect {
	case model.DialectPostgres:
		return QuoteIdentifier(IDColumn) + " BIGSERIAL PRIMARY KEY"
	case model.DialectSnowflake:
		return QuoteIdentifier(IDColumn) + " NUMBER AUTOINCREMENT PRIMARY KEY"
	default:
		return QuoteIdentifier(IDColumn) + " INTEGER PRIMARY KEY AUTOINCREMENT"
	}
}

// GenerateColumnDefinitions creates column definitions for a destination table,
// starting with the surrogate id column
func GenerateColumnDefinitions(metadata *model.TableMetadata, dialect model.Dialect) ([]string, error) {
	definitions := make([]string, 0, len(metadata.Columns)+1)
	definitions = append(definitions, idColumnDefinition(dialect))

	for _, col := range metadata.Columns {
		colType, err := ColumnType(col.Type, dialect)
		if err != nil {
			return nil, fmt.Errorf("failed to map column %s: %w", col.Name, err)
		}

		nullability := "NULL"
		if !col.Nullable {
			nullability = "NOT NULL"
		}

		definitions = append(definitions, fmt.Sprintf("%s %s %s",
			QuoteIdentifier(col.Name),
			colType,
			nullability))
	}

	return definitions, nil
}

// QuoteIdentifier quotes and escapes a table or column name
func QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}
