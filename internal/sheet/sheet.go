package sheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/weltrada/product-research/internal/models"
)

// ErrInvalidInput marks the one run-fatal condition: the uploaded file is
// not a readable spreadsheet or lacks a required column.
var ErrInvalidInput = errors.New("invalid input spreadsheet")

// ReadInput parses the uploaded spreadsheet into input rows. The first row
// must contain "brand" and "product_code" columns (case-insensitive).
func ReadInput(r io.Reader) ([]models.InputRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: missing header row", ErrInvalidInput)
	}

	brandCol, codeCol := -1, -1
	for i, header := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(header)) {
		case "brand":
			brandCol = i
		case "product_code":
			codeCol = i
		}
	}
	if brandCol < 0 || codeCol < 0 {
		return nil, fmt.Errorf("%w: brand and product_code columns are required", ErrInvalidInput)
	}

	var input []models.InputRow
	for _, row := range rows[1:] {
		var in models.InputRow
		if brandCol < len(row) {
			in.Brand = strings.TrimSpace(row[brandCol])
		}
		if codeCol < len(row) {
			in.Code = strings.TrimSpace(row[codeCol])
		}
		input = append(input, in)
	}

	return input, nil
}

// Table is one output spreadsheet: a header row plus data rows.
type Table struct {
	Headers []string
	Rows    [][]string
}

func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

func (t *Table) Append(row ...string) {
	t.Rows = append(t.Rows, row)
}

func (t *Table) Len() int { return len(t.Rows) }

// Write saves the table as an xlsx file. An empty table still gets its
// header row so downstream consumers never see a missing file.
func (t *Table) Write(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := f.GetSheetName(0)

	writeRow := func(rowIdx int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return err
		}
		cells := make([]interface{}, len(values))
		for i, v := range values {
			cells[i] = v
		}
		return f.SetSheetRow(sheetName, cell, &cells)
	}

	if err := writeRow(1, t.Headers); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	for i, row := range t.Rows {
		if err := writeRow(i+2, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	return nil
}
