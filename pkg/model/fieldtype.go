// pkg/model/fieldtype.go
package model

import (
	"fmt"
	"strings"
)

// Kind enumerates the target types a cell can be coerced into
type Kind int

const (
	KindString Kind = iota
	KindDecimal
	KindInteger
	KindDate
	KindCode
	KindBoolean
	KindFloat
	KindJSON
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case KindString:
		return "trimmed_string"
	case KindDecimal:
		return "decimal"
	case KindInteger:
		return "integer"
	case KindDate:
		return "calendar_date"
	case KindCode:
		return "fixed_width_code"
	case KindBoolean:
		return "boolean_presence"
	case KindFloat:
		return "float"
	case KindJSON:
		return "json"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// FieldType is the declared target type of a canonical field
type FieldType struct {
	Kind Kind
	// Width is the zero-padded width for KindCode
	Width int
	// Absent lists values treated as "not present" for KindBoolean
	Absent []string
}

// String returns a readable form such as fixed_width_code(4)
func (t FieldType) String() string {
	switch t.Kind {
	case KindCode:
		return fmt.Sprintf("%s(%d)", t.Kind, t.Width)
	case KindBoolean:
		if len(t.Absent) > 0 {
			return fmt.Sprintf("%s[absent=%s]", t.Kind, strings.Join(t.Absent, ","))
		}
	}
	return t.Kind.String()
}

// Text declares a trimmed string field
func Text() FieldType { return FieldType{Kind: KindString} }

// Decimal declares a fixed-point numeric field
func Decimal() FieldType { return FieldType{Kind: KindDecimal} }

// Integer declares an integral numeric field
func Integer() FieldType { return FieldType{Kind: KindInteger} }

// Date declares a calendar date field
func Date() FieldType { return FieldType{Kind: KindDate} }

// Code declares a fixed-width identifier that is zero-padded when numeric
func Code(width int) FieldType { return FieldType{Kind: KindCode, Width: width} }

// Presence declares a boolean derived from whether the cell holds a value
func Presence(absent ...string) FieldType { return FieldType{Kind: KindBoolean, Absent: absent} }

// Float declares a derived floating point column
func Float() FieldType { return FieldType{Kind: KindFloat} }

// JSON declares a column holding a JSON document
func JSON() FieldType { return FieldType{Kind: KindJSON} }

// Dialect identifies the SQL flavour of a destination store
type Dialect string

const (
	DialectPostgres  Dialect = "postgres"
	DialectSnowflake Dialect = "snowflake"
	DialectSQLite    Dialect = "sqlite"
)
