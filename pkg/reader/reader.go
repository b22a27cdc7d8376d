// pkg/reader/reader.go
package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/David-Botos/erp-ingress/pkg/model"
)

// Format is the on-disk format of an uploaded extract
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrNoHeader is returned for files without a header row
var ErrNoHeader = errors.New("empty file: no header row found")

// Warning is a non-fatal issue found while reading a file
type Warning struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Sheet is one tabular extract: a header row and the records below it
type Sheet struct {
	Name     string               // sheet or file name
	Format   Format               // detected format
	Headers  []string             // header row, deduplicated
	Records  []model.SourceRecord // data rows keyed by header
	Warnings []Warning            // non-fatal issues
}

// Open reads a file from disk
func Open(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, filepath.Base(path))
}

// Read detects the format of r and parses it. The file name is only used
// as a hint when the content is ambiguous.
func Read(r io.Reader, filename string) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	format, err := DetectFormat(data, filename)
	if err != nil {
		return nil, err
	}

	var sheet *Sheet
	switch format {
	case FormatXLSX:
		sheet, err = ReadXLSX(bytes.NewReader(data))
	case FormatCSV:
		sheet, err = ReadCSV(data)
		if sheet != nil {
			sheet.Name = filename
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return sheet, nil
}

// DetectFormat sniffs the content type, falling back to the file extension
func DetectFormat(data []byte, filename string) (Format, error) {
	detected := mimetype.Detect(data)
	ext := strings.ToLower(filepath.Ext(filename))

	for m := detected; m != nil; m = m.Parent() {
		switch {
		case m.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"):
			return FormatXLSX, nil
		case m.Is("application/zip"):
			if ext == ".xlsx" || ext == ".xlsm" {
				return FormatXLSX, nil
			}
		case m.Is("text/csv"), m.Is("text/plain"):
			return FormatCSV, nil
		}
	}

	if ext == ".csv" || ext == ".txt" {
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, filename, detected.String())
}

// buildSheet turns a header row and raw rows into keyed records.
// Fully blank rows are skipped. Short rows are padded and long rows truncated.
func buildSheet(headerRow []string, rows [][]string, firstLine int) *Sheet {
	headers := uniqueHeaders(headerRow)
	sheet := &Sheet{Headers: headers}

	for i, row := range rows {
		line := firstLine + i
		if blankRow(row) {
			continue
		}

		if len(row) > len(headers) {
			sheet.Warnings = append(sheet.Warnings, Warning{
				Line: line,
				Message: fmt.Sprintf("row has %d columns, expected %d; truncating extra columns",
					len(row), len(headers)),
			})
			row = row[:len(headers)]
		}

		cells := make(map[string]any, len(headers))
		for j, h := range headers {
			if j < len(row) {
				cells[h] = row[j]
			} else {
				cells[h] = ""
			}
		}
		sheet.Records = append(sheet.Records, model.SourceRecord{Line: line, Cells: cells})
	}
	return sheet
}

// uniqueHeaders trims headers, names empty ones "Unnamed: i" and suffixes
// repeats with ".1", ".2" so every header keys exactly one column
func uniqueHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	repeats := make(map[string]int)
	for i, h := range raw {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for used[name] {
			repeats[h]++
			name = h + "." + strconv.Itoa(repeats[h])
		}
		used[name] = true
		headers[i] = name
	}
	return headers
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
