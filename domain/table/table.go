package table

import (
	"fmt"
	"strings"
)

// Row maps a column name to the cell found under it
type Row map[string]Cell

// Table is decoded spreadsheet content: a header and rows of named cells
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Preview holds the first rows of a table rendered as display strings
type Preview struct {
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
}

// New creates a table with the given header
func New(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Append adds a row. Cells for columns not in the header are ignored by
// consumers that walk Columns.
func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Has reports whether the header contains the column
func (t *Table) Has(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// ColumnSet returns the header as a set
func (t *Table) ColumnSet() map[string]bool {
	set := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		set[c] = true
	}
	return set
}

// Cells returns the values of one column in row order. Rows that lack the
// key yield a null cell.
func (t *Table) Cells(column string) []Cell {
	cells := make([]Cell, len(t.Rows))
	for i, row := range t.Rows {
		if cell, ok := row[column]; ok {
			cells[i] = cell
		} else {
			cells[i] = Null()
		}
	}
	return cells
}

// Check reports a structural problem that makes the value unusable as a
// table: empty or duplicate column names.
func (t *Table) Check() error {
	seen := make(map[string]bool, len(t.Columns))
	for i, c := range t.Columns {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("column %d has an empty name", i+1)
		}
		if seen[c] {
			return fmt.Errorf("column %q appears more than once", c)
		}
		seen[c] = true
	}
	return nil
}

// Head returns a preview of the first n rows
func (t *Table) Head(n int) Preview {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	preview := Preview{
		Columns:   append([]string(nil), t.Columns...),
		Rows:      make([][]string, 0, n),
		TotalRows: len(t.Rows),
	}
	for _, row := range t.Rows[:n] {
		line := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			line[i] = row[c].String()
		}
		preview.Rows = append(preview.Rows, line)
	}
	return preview
}
