package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCellString(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{"null", Null(), ""},
		{"zero value", Cell{}, ""},
		{"text", Text("bolt"), "bolt"},
		{"raw", Raw("12"), "12"},
		{"integer", Number(3), "3"},
		{"fraction", Number(2.5), "2.5"},
		{"date", Date(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)), "2024-01-05"},
		{"datetime", Date(time.Date(2024, 1, 5, 13, 4, 5, 0, time.UTC)), "2024-01-05 13:04:05"},
		{"bool", Bool(true), "TRUE"},
		{"error", ErrorValue("#REF!"), "#REF!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cell.String())
		})
	}
}

func TestCellPredicates(t *testing.T) {
	assert.True(t, Null().IsNull())
	assert.True(t, Cell{}.IsNull())
	assert.False(t, Text("").IsNull())
	assert.True(t, Raw("x").IsTextual())
	assert.False(t, Number(1).IsTextual())
}

func TestTable(t *testing.T) {
	tbl := New("Name", "Quantity")
	tbl.Append(Row{"Name": Text("bolt"), "Quantity": Number(3)})
	tbl.Append(Row{"Name": Text("nut")})
	tbl.Append(Row{"Name": Text("washer"), "Quantity": Number(9)})

	assert.Equal(t, 3, tbl.Len())
	assert.True(t, tbl.Has("Quantity"))
	assert.False(t, tbl.Has("quantity"))
	assert.Equal(t, map[string]bool{"Name": true, "Quantity": true}, tbl.ColumnSet())

	cells := tbl.Cells("Quantity")
	assert.Len(t, cells, 3)
	assert.True(t, cells[1].IsNull())

	p := tbl.Head(2)
	assert.Equal(t, []string{"Name", "Quantity"}, p.Columns)
	assert.Equal(t, [][]string{{"bolt", "3"}, {"nut", ""}}, p.Rows)
	assert.Equal(t, 3, p.TotalRows)

	assert.Len(t, tbl.Head(10).Rows, 3)
	assert.Empty(t, tbl.Head(-1).Rows)
}

func TestNewCopiesColumns(t *testing.T) {
	cols := []string{"a", "b"}
	tbl := New(cols...)
	cols[0] = "changed"
	assert.Equal(t, "a", tbl.Columns[0])
}

func TestTableCheck(t *testing.T) {
	assert.NoError(t, New("a", "b").Check())
	assert.Error(t, New("a", " ").Check())
	assert.Error(t, New("a", "a").Check())
}
