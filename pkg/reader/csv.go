// pkg/reader/csv.go
package reader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// BOM prefixes
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectAndDecode strips any BOM and returns UTF-8 bytes along with the
// detected encoding name. Text that is not valid UTF-8 is read as Latin-1.
func DetectAndDecode(data []byte) ([]byte, string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], "utf-8-bom", nil
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return nil, "", fmt.Errorf("UTF-16 decode failed: %w", err)
		}
		return decoded, "utf-16", nil
	case utf8.Valid(data):
		return data, "utf-8", nil
	}

	decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
	if err != nil {
		return nil, "", fmt.Errorf("latin-1 decode failed: %w", err)
	}
	return decoded, "latin-1", nil
}

// ReadCSV parses CSV bytes. The first row is the header row. Rows that fail
// to parse are skipped with a warning.
func ReadCSV(data []byte) (*Sheet, error) {
	decoded, encoding, err := DetectAndDecode(data)
	if err != nil {
		return nil, fmt.Errorf("encoding detection failed: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	// Padding and truncation are handled in buildSheet
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headerRow, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	var (
		rows     [][]string
		warnings []Warning
	)
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			warnings = append(warnings, Warning{
				Line:    line,
				Message: fmt.Sprintf("parse error: %v", err),
			})
			// keep line numbers aligned with the file
			rows = append(rows, nil)
			continue
		}
		rows = append(rows, row)
	}

	sheet := buildSheet(headerRow, rows, 2)
	sheet.Format = FormatCSV
	sheet.Warnings = append(warnings, sheet.Warnings...)
	if encoding == "latin-1" {
		sheet.Warnings = append(sheet.Warnings, Warning{Message: "file is not valid UTF-8; decoded as Latin-1"})
	}
	return sheet, nil
}
