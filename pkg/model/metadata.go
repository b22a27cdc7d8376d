// pkg/model/metadata.go
package model

import "strings"

// TableMetadata contains the structure information for a destination table
type TableMetadata struct {
	Table   string   // Table name
	Columns []Column // Column definitions, in insert order
}

// Column represents metadata about a destination column
type Column struct {
	Name     string    // Column name
	Type     FieldType // Declared type
	Nullable bool      // Whether column allows NULL values
}

// Col is shorthand for a nullable column
func Col(name string, t FieldType) Column {
	return Column{Name: name, Type: t, Nullable: true}
}

// ColumnNames returns the column names in order
func (tm *TableMetadata) ColumnNames() []string {
	names := make([]string, len(tm.Columns))
	for i, col := range tm.Columns {
		names[i] = col.Name
	}
	return names
}

// GetColumnByName returns a column by name (case-insensitive)
// Returns nil if column not found
func (tm *TableMetadata) GetColumnByName(name string) *Column {
	normalizedName := strings.ToLower(name)
	for i, col := range tm.Columns {
		if strings.ToLower(col.Name) == normalizedName {
			return &tm.Columns[i]
		}
	}
	return nil
}
