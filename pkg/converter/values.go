// pkg/converter/values.go
package converter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var (
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

// isBlank determines if a value should be treated as an empty cell
func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []byte:
		return strings.TrimSpace(string(v)) == ""
	case float64:
		return math.IsNaN(v)
	case float32:
		return math.IsNaN(float64(v))
	case time.Time:
		return v.IsZero()
	default:
		return false
	}
}

// IsPresent implements boolean presence: true when the trimmed text is
// non-empty and matches none of the absent sentinels (case-insensitive)
func IsPresent(value any, absent []string) bool {
	if isBlank(value) {
		return false
	}
	s, err := stringify(value)
	if err != nil {
		return false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, sentinel := range absent {
		if strings.EqualFold(s, strings.TrimSpace(sentinel)) {
			return false
		}
	}
	return true
}

// stringify renders a cell as text. Integral floats lose their fraction so
// numeric cells holding identifiers keep their natural spelling.
func stringify(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("non-finite number %v", v)
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return stringify(float64(v))
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case bool:
		return strconv.FormatBool(v), nil
	case decimal.Decimal:
		return v.String(), nil
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format("2006-01-02"), nil
		}
		return v.Format(time.RFC3339), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// toTrimmedString casts to text and trims; empty becomes nil
func toTrimmedString(value any) (any, error) {
	s, err := stringify(value)
	if err != nil {
		return nil, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	return s, nil
}

// parseDecimal accepts native numbers and text with thousands separators
// and SAP style trailing minus signs ("1,234.50-")
func parseDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, fmt.Errorf("non-finite number %v", v)
		}
		return decimal.NewFromFloat(v), nil
	case float32:
		return parseDecimal(float64(v))
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case bool:
		return decimal.Zero, errors.New("boolean is not numeric")
	case time.Time:
		return decimal.Zero, errors.New("date is not numeric")
	}

	s, err := stringify(value)
	if err != nil {
		return decimal.Zero, err
	}
	s = strings.NewReplacer(",", "", " ", "", "\u00a0", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, errors.New("empty number")
	}

	negative := false
	if len(s) > 1 && strings.HasSuffix(s, "-") {
		negative = true
		s = strings.TrimSuffix(s, "-")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot parse %q as number", s)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// toDecimal converts a value to decimal.Decimal
func (c *TypeConverter) toDecimal(value any) (any, error) {
	d, err := parseDecimal(value)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// toInteger converts a value to int64, rejecting fractions and overflow
func (c *TypeConverter) toInteger(value any) (any, error) {
	d, err := parseDecimal(value)
	if err != nil {
		return nil, err
	}
	if !d.IsInteger() {
		return nil, fmt.Errorf("%s is not integral", d)
	}
	if d.GreaterThan(maxInt64) || d.LessThan(minInt64) {
		return nil, fmt.Errorf("%s overflows int64", d)
	}
	return d.IntPart(), nil
}

// toFloat converts a value to float64
func (c *TypeConverter) toFloat(value any) (any, error) {
	d, err := parseDecimal(value)
	if err != nil {
		return nil, err
	}
	f, _ := d.Float64()
	return f, nil
}

// toCode zero-pads integral numbers to width, otherwise trims the text
func toCode(value any, width int) (any, error) {
	if d, err := parseDecimal(value); err == nil && d.IsInteger() && !d.IsNegative() &&
		d.LessThanOrEqual(maxInt64) {
		s, _ := stringify(value)
		if !strings.ContainsAny(strings.TrimSpace(s), "eE") {
			return fmt.Sprintf("%0*d", width, d.IntPart()), nil
		}
	}
	return toTrimmedString(value)
}

// Layouts tried in order. Day-first and month-first lists differ only in
// how ambiguous d/m/y text is read.
var (
	isoLayouts = []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006/01/02",
		"20060102",
	}
	dayFirstLayouts = []string{
		"2/1/2006",
		"2.1.2006",
		"2-1-2006",
		"2/1/2006 15:04:05",
		"2/1/2006 15:04",
		"2.1.2006 15:04:05",
		"2-1-2006 15:04:05",
		"2/1/06",
		"2.1.06",
	}
	monthFirstLayouts = []string{
		"1/2/2006",
		"1.2.2006",
		"1-2-2006",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
		"1.2.2006 15:04:05",
		"1-2-2006 15:04:05",
		"1/2/06",
		"1.2.06",
	}
)

// toDate converts a value to a calendar date at UTC midnight
func (c *TypeConverter) toDate(value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return truncateDate(v), nil
	case float64, float32, int, int32, int64, decimal.Decimal:
		d, err := parseDecimal(v)
		if err != nil {
			return nil, err
		}
		f, _ := d.Float64()
		return c.fromExcelSerial(f)
	}

	s, err := stringify(value)
	if err != nil {
		return nil, err
	}
	s = strings.TrimSpace(s)

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDate(t), nil
		}
	}

	layouts := dayFirstLayouts
	if !c.config.DayFirst {
		layouts = monthFirstLayouts
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDate(t), nil
		}
	}

	// Date cells read without formatting arrive as serial day numbers
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return c.fromExcelSerial(f)
	}
	return nil, fmt.Errorf("cannot parse %q as date", s)
}

// fromExcelSerial converts an Excel serial day number to a date
func (c *TypeConverter) fromExcelSerial(serial float64) (any, error) {
	if math.IsNaN(serial) || serial < c.config.MinExcelSerial || serial > c.config.MaxExcelSerial {
		return nil, fmt.Errorf("serial %v outside accepted date range", serial)
	}
	t, err := excelize.ExcelDateToTime(serial, c.config.Use1904Dates)
	if err != nil {
		return nil, fmt.Errorf("failed to convert serial %v: %w", serial, err)
	}
	return truncateDate(t), nil
}

// truncateDate drops the time of day and location
func truncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
