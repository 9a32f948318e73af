package testkit

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"sheetcheck/domain/table"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a generated workbook. Rows[0] is the header.
type Sheet struct {
	Name string
	Rows [][]interface{}
}

// WorkbookBytes builds an in-memory .xlsx with a single "Sheet1"
func WorkbookBytes(rows [][]interface{}) ([]byte, error) {
	return WorkbookWithSheets(Sheet{Name: "Sheet1", Rows: rows})
}

// WorkbookWithSheets builds an in-memory .xlsx holding the given sheets in order
func WorkbookWithSheets(sheets ...Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if sheet.Name != "Sheet1" {
				if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
					return nil, fmt.Errorf("failed to rename first sheet: %w", err)
				}
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %s: %w", sheet.Name, err)
		}
		if err := WriteRows(f, sheet.Name, sheet.Rows); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteRows writes rows starting at A1. Nil values leave the cell empty.
func WriteRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		for j, value := range row {
			if value == nil {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, ref, value); err != nil {
				return fmt.Errorf("failed to write %s!%s: %w", sheet, ref, err)
			}
		}
	}
	return nil
}

// CSVBytes renders rows as comma separated text
func CSVBytes(rows [][]string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.WriteAll(rows)
	return buf.Bytes()
}

// TableOf builds a table from a header and rows of cells; short rows are
// padded with nulls
func TableOf(columns []string, rows ...[]table.Cell) *table.Table {
	t := table.New(columns...)
	for _, cells := range rows {
		row := make(table.Row, len(columns))
		for i, col := range columns {
			if i < len(cells) {
				row[col] = cells[i]
			} else {
				row[col] = table.Null()
			}
		}
		t.Append(row)
	}
	return t
}

// TextTable builds a table whose cells are all raw text, as a CSV upload
// would produce. Empty strings become nulls.
func TextTable(columns []string, rows ...[]string) *table.Table {
	cellRows := make([][]table.Cell, len(rows))
	for i, row := range rows {
		cells := make([]table.Cell, len(row))
		for j, v := range row {
			if v == "" {
				cells[j] = table.Null()
			} else {
				cells[j] = table.Raw(v)
			}
		}
		cellRows[i] = cells
	}
	return TableOf(columns, cellRows...)
}
