// pkg/converter/converter.go
package converter

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/erp-ingress/pkg/model"
)

// TypeConverter coerces raw cell values into the declared field types.
// Coercion is total: invalid input becomes nil and is reported, never raised.
type TypeConverter struct {
	logger *zap.Logger
	// Configuration options
	config TypeConverterConfig
}

// TypeConverterConfig provides configuration options for type conversion
type TypeConverterConfig struct {
	// Read ambiguous d/m/y dates day first
	DayFirst bool
	// Interpret Excel serial numbers using the 1904 epoch
	Use1904Dates bool
	// Lowest and highest Excel serial day accepted as a date
	MinExcelSerial float64
	MaxExcelSerial float64
}

// DefaultConfig returns the default configuration
func DefaultConfig() TypeConverterConfig {
	return TypeConverterConfig{
		DayFirst:       true,
		Use1904Dates:   false,
		MinExcelSerial: 1,
		MaxExcelSerial: 2958465, // 9999-12-31
	}
}

// NewTypeConverter creates a new TypeConverter with default configuration
func NewTypeConverter(logger *zap.Logger) *TypeConverter {
	return NewTypeConverterWithConfig(logger, DefaultConfig())
}

// NewTypeConverterWithConfig creates a TypeConverter with custom configuration
func NewTypeConverterWithConfig(logger *zap.Logger, config TypeConverterConfig) *TypeConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TypeConverter{
		logger: logger,
		config: config,
	}
}

// Coerce converts value to the declared type. It returns ok=false only when
// a non-blank value could not be converted; the result is then nil.
func (c *TypeConverter) Coerce(value any, ft model.FieldType) (result any, ok bool) {
	result, err := c.coerce(value, ft)
	if err != nil {
		return nil, false
	}
	return result, true
}

// coerce returns the typed value or the reason the value was rejected
func (c *TypeConverter) coerce(value any, ft model.FieldType) (result any, err error) {
	// Malformed input must degrade to null
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("conversion panicked: %v", r)
		}
	}()

	if ft.Kind == model.KindBoolean {
		return IsPresent(value, ft.Absent), nil
	}
	if isBlank(value) {
		return nil, nil
	}

	switch ft.Kind {
	case model.KindString:
		return toTrimmedString(value)
	case model.KindDecimal:
		return c.toDecimal(value)
	case model.KindInteger:
		return c.toInteger(value)
	case model.KindFloat:
		return c.toFloat(value)
	case model.KindDate:
		return c.toDate(value)
	case model.KindCode:
		return toCode(value, ft.Width)
	case model.KindJSON:
		return value, nil
	default:
		return nil, fmt.Errorf("unsupported target type %s", ft)
	}
}

// ConvertRecord coerces every canonical field of rec according to columns.
// Extras are carried over untouched.
func (c *TypeConverter) ConvertRecord(
	rec model.CanonicalRecord,
	columns []model.Column,
) (model.TypedRecord, []model.CoercionFailure) {
	typed := model.TypedRecord{
		Line:   rec.Line,
		Fields: make(map[string]any, len(columns)),
		Extras: rec.Extras,
	}

	var failures []model.CoercionFailure
	for _, col := range columns {
		raw := rec.Fields[col.Name]
		value, err := c.coerce(raw, col.Type)
		if err == nil && value == nil && !isBlank(raw) {
			err = fmt.Errorf("no value produced")
		}
		if err != nil {
			typed.Fields[col.Name] = nil
			failures = append(failures, model.CoercionFailure{
				Column:   col.Name,
				Line:     rec.Line,
				RawValue: raw,
				Target:   col.Type.String(),
				Reason:   err.Error(),
			})
			c.logger.Debug("Coercion failed",
				zap.String("column", col.Name),
				zap.Int("line", rec.Line),
				zap.Any("value", raw),
				zap.Error(err))
			continue
		}
		typed.Fields[col.Name] = value
	}
	return typed, failures
}
