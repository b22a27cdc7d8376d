// pkg/reader/xlsx.go
package reader

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads the first worksheet of a workbook. Cells are read as raw
// values, so date cells arrive as Excel serial numbers and numeric cells
// without display formatting.
func ReadXLSX(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no worksheets")
	}
	name := sheets[0]

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}

	sheet := buildSheet(rows[0], rows[1:], 2)
	sheet.Name = name
	sheet.Format = FormatXLSX
	return sheet, nil
}
