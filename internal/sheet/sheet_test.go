package sheet

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/weltrada/product-research/internal/models"
)

func buildXLSX(t *testing.T, rows [][]string) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheetName := f.GetSheetName(0)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		require.NoError(t, f.SetSheetRow(sheetName, cell, &cells))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

func TestReadInput(t *testing.T) {
	r := buildXLSX(t, [][]string{
		{"Brand", "Product_Code", "Notes"},
		{" Siemens ", " 3RT2015 ", "ignored"},
		{"", "A9F74206"},
		{"Wago"},
	})

	rows, err := ReadInput(r)
	require.NoError(t, err)

	assert.Equal(t, []models.InputRow{
		{Brand: "Siemens", Code: "3RT2015"},
		{Brand: "", Code: "A9F74206"},
		{Brand: "Wago", Code: ""},
	}, rows)
}

func TestReadInputColumnOrderIrrelevant(t *testing.T) {
	r := buildXLSX(t, [][]string{
		{"product_code", "brand"},
		{"PXL-B16", "Eaton"},
	})

	rows, err := ReadInput(r)
	require.NoError(t, err)
	assert.Equal(t, []models.InputRow{{Brand: "Eaton", Code: "PXL-B16"}}, rows)
}

func TestReadInputMissingColumn(t *testing.T) {
	tests := []struct {
		name   string
		header []string
	}{
		{"no product_code", []string{"brand", "name"}},
		{"no brand", []string{"product_code"}},
		{"unrelated headers", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadInput(buildXLSX(t, [][]string{tt.header}))
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestReadInputNotASpreadsheet(t *testing.T) {
	_, err := ReadInput(bytes.NewReader([]byte("definitely not xlsx")))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReadInputHeaderOnly(t *testing.T) {
	rows, err := ReadInput(buildXLSX(t, [][]string{{"brand", "product_code"}}))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestTableWriteRoundTrip(t *testing.T) {
	table := NewTable("Product Code", "Brand", "Product Name", "Category")
	table.Append("3RT2015", "Siemens", "Contactor AC-3", "Contactors")
	table.Append("A9F74206", "Schneider Electric", "", "MCBs")
	require.Equal(t, 2, table.Len())

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, table.Write(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Product Code", "Brand", "Product Name", "Category"}, rows[0])
	assert.Equal(t, []string{"3RT2015", "Siemens", "Contactor AC-3", "Contactors"}, rows[1])
	assert.Equal(t, "A9F74206", rows[2][0])
}

func TestTableWriteEmptyStillHasHeaders(t *testing.T) {
	table := NewTable("Ürün Kodu", "Marka", "Ürün Adı", "Kategori")

	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, table.Write(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Ürün Kodu", "Marka", "Ürün Adı", "Kategori"}, rows[0])
}
