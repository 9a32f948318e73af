package testkit

import (
	"testing"
	"time"

	"sheetcheck/domain/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var optionB = schema.Schema{
	Name: "Option_B",
	Columns: []schema.ColumnSpec{
		{Name: "Name", Type: schema.TypeString},
		{Name: "Type", Type: schema.TypeString},
		{Name: "Quantity", Type: schema.TypeNumber},
		{Name: "Date", Type: schema.TypeDate},
	},
}

func TestSampleGenerator_Generate(t *testing.T) {
	config := DefaultSampleConfig()
	config.Rows = 3

	rows := NewSampleGenerator(config).Generate(optionB)
	require.Len(t, rows, 4)
	assert.Equal(t, []interface{}{"Name", "Type", "Quantity", "Date"}, rows[0])

	for _, row := range rows[1:] {
		require.Len(t, row, 4)
		assert.IsType(t, "", row[0])
		assert.Contains(t, itemTypes, row[1])
		qty, ok := row[2].(int)
		require.True(t, ok)
		assert.GreaterOrEqual(t, qty, 1)
		assert.LessOrEqual(t, qty, 50)
		date, ok := row[3].(time.Time)
		require.True(t, ok)
		assert.False(t, date.Before(config.StartDate))
		assert.False(t, date.After(config.EndDate))
	}
}

func TestSampleGenerator_Deterministic(t *testing.T) {
	config := DefaultSampleConfig()
	a := NewSampleGenerator(config).Generate(optionB)
	b := NewSampleGenerator(config).Generate(optionB)
	assert.Equal(t, a, b)
}

func TestSampleGenerator_NullRate(t *testing.T) {
	config := DefaultSampleConfig()
	config.Rows = 20
	config.NullRate = 1

	rows := NewSampleGenerator(config).Generate(optionB)
	for _, row := range rows[1:] {
		for _, v := range row {
			assert.Nil(t, v)
		}
	}
}

func TestWorkbookBytes(t *testing.T) {
	data, err := WorkbookBytes([][]interface{}{{"a", "b"}, {1, "x"}})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// xlsx is a zip container
	assert.Equal(t, []byte("PK"), data[:2])
}

func TestTextTable(t *testing.T) {
	tbl := TextTable([]string{"a", "b"}, []string{"1", ""}, []string{"2"})
	require.Equal(t, 2, tbl.Len())
	assert.True(t, tbl.Rows[0]["b"].IsNull())
	assert.True(t, tbl.Rows[1]["b"].IsNull())
	assert.Equal(t, "1", tbl.Rows[0]["a"].String())
}
