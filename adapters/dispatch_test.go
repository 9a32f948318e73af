package adapters

import (
	"bytes"
	"context"
	"testing"

	"sheetcheck/adapters/excel"
	"sheetcheck/internal/errors"
	"sheetcheck/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_RoutesByExtension(t *testing.T) {
	d := NewDefaultDispatcher(excel.DefaultReaderConfig(), nil)

	tests := []struct {
		filename string
		body     []byte
		columns  []string
	}{
		{"a.csv", testkit.CSVBytes([][]string{{"x", "y"}, {"1", "2"}}), []string{"x", "y"}},
		{"a.json", []byte(`[{"x": 1}]`), []string{"x"}},
	}
	wb, err := testkit.WorkbookBytes([][]interface{}{{"z"}, {1}})
	require.NoError(t, err)
	tests = append(tests, struct {
		filename string
		body     []byte
		columns  []string
	}{"a.xlsx", wb, []string{"z"}})

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			require.True(t, d.Supports(tt.filename))
			tbl, err := d.Decode(context.Background(), tt.filename, bytes.NewReader(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.columns, tbl.Columns)
		})
	}
}

func TestDispatcher_Unsupported(t *testing.T) {
	d := NewDefaultDispatcher(excel.DefaultReaderConfig(), nil)
	for _, name := range []string{"old.xls", "notes.txt", "noext"} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, d.Supports(name))
			_, err := d.Decode(context.Background(), name, bytes.NewReader(nil))
			require.Error(t, err)
			assert.True(t, errors.IsMalformedTable(err))
		})
	}

	_, err := Dispatch(nil, "old.xls")
	assert.Contains(t, err.Error(), "unsupported")
}
