package reader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/David-Botos/erp-ingress/pkg/converter"
	"github.com/David-Botos/erp-ingress/pkg/model"
)

func TestReadCSV(t *testing.T) {
	data := []byte("Plant, Material ,Qty\n1,M-1,10\n,,\n2,M-2\n3,M-3,30,extra\n")

	sheet, err := ReadCSV(data)
	require.NoError(t, err)

	assert.Equal(t, FormatCSV, sheet.Format)
	assert.Equal(t, []string{"Plant", "Material", "Qty"}, sheet.Headers)
	require.Len(t, sheet.Records, 3)

	assert.Equal(t, 2, sheet.Records[0].Line)
	assert.Equal(t, "M-1", sheet.Records[0].Cells["Material"])

	// blank line 3 is skipped, the short row is padded
	assert.Equal(t, 4, sheet.Records[1].Line)
	assert.Equal(t, "", sheet.Records[1].Cells["Qty"])

	assert.Equal(t, 5, sheet.Records[2].Line)
	assert.Len(t, sheet.Records[2].Cells, 3)
	require.Len(t, sheet.Warnings, 1)
	assert.Equal(t, 5, sheet.Warnings[0].Line)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(nil)
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestReadCSVHeaderOnly(t *testing.T) {
	sheet, err := ReadCSV([]byte("Plant,Material\n"))
	require.NoError(t, err)
	assert.Empty(t, sheet.Records)
}

func TestReadCSVDuplicateAndEmptyHeaders(t *testing.T) {
	sheet, err := ReadCSV([]byte("Aging Qty,,Aging Qty,Aging Qty\n1,2,3,4\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Aging Qty", "Unnamed: 1", "Aging Qty.1", "Aging Qty.2"}, sheet.Headers)
	assert.Equal(t, "3", sheet.Records[0].Cells["Aging Qty.1"])
}

func TestReadCSVEncodings(t *testing.T) {
	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Material\nM-1\n")...)
	sheet, err := ReadCSV(bom)
	require.NoError(t, err)
	assert.Equal(t, []string{"Material"}, sheet.Headers)

	utf16, _, err := transform.Bytes(
		unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder(),
		[]byte("Material,Description\nM-1,Größe\n"))
	require.NoError(t, err)
	sheet, err = ReadCSV(utf16)
	require.NoError(t, err)
	assert.Equal(t, []string{"Material", "Description"}, sheet.Headers)
	assert.Equal(t, "Größe", sheet.Records[0].Cells["Description"])

	latin1 := []byte("Material,Description\nM-1,Mat\xe9riel\n")
	sheet, err = ReadCSV(latin1)
	require.NoError(t, err)
	assert.Equal(t, "Matériel", sheet.Records[0].Cells["Description"])
	assert.NotEmpty(t, sheet.Warnings)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Plant", "Material", "Date Of Income", "Qty"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{1, "M-1", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 12.5}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{2, "M-2"}))

	path := filepath.Join(t.TempDir(), "zmmr015.xlsx")
	require.NoError(t, f.SaveAs(path))

	sheet, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, sheet.Format)
	assert.Equal(t, "Sheet1", sheet.Name)
	assert.Equal(t, []string{"Plant", "Material", "Date Of Income", "Qty"}, sheet.Headers)
	require.Len(t, sheet.Records, 2)

	first := sheet.Records[0]
	assert.Equal(t, "M-1", first.Cells["Material"])
	assert.Equal(t, "12.5", first.Cells["Qty"])

	c := converter.NewTypeConverter(nil)
	plant, ok := c.Coerce(first.Cells["Plant"], model.Code(4))
	require.True(t, ok)
	assert.Equal(t, "0001", plant)
	income, ok := c.Coerce(first.Cells["Date Of Income"], model.Date())
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), income)

	second := sheet.Records[1]
	assert.Equal(t, 4, second.Line)
	assert.Equal(t, "", second.Cells["Qty"])
}

func TestDetectFormat(t *testing.T) {
	format, err := DetectFormat([]byte("a,b\n1,2\n"), "x.csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	_, err = DetectFormat([]byte{0x00, 0x01, 0x02, 0x03, 0xff, 0x00}, "x.bin")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
