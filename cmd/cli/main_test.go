package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"sheetcheck/domain/report"
	"sheetcheck/domain/schema"
	"sheetcheck/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeCSV(t *testing.T, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, testkit.CSVBytes(rows), 0o644))
	return path
}

func TestValidateCmd(t *testing.T) {
	path := writeCSV(t, [][]string{
		{"Name", "Type", "Quantity", "Date"},
		{"bolt", "part", "3", "2024-01-05"},
	})

	out, err := execute(t, "validate", path, "--schema", "Option_B", "--color", "never")
	require.NoError(t, err)
	assert.Contains(t, out, "Column Check:")
	assert.Contains(t, out, "All required columns are present.")
	assert.Contains(t, out, "Quantity: Valid numeric format")
	assert.Contains(t, out, "Data validation passed!")
}

func TestValidateCmd_FailedReportExitsNonZero(t *testing.T) {
	path := writeCSV(t, [][]string{
		{"Name", "Quantity"},
		{"bolt", "many"},
	})

	out, err := execute(t, "validate", path, "--schema", "Option_B", "--format", "json")
	require.ErrorIs(t, err, errReportFailed)

	var run report.Run
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	assert.Equal(t, report.Failed, run.Report.Status)
	assert.Equal(t, []string{"Type", "Date"}, run.Report.MissingColumns)
}

func TestValidateCmd_Errors(t *testing.T) {
	path := writeCSV(t, [][]string{{"a"}, {"1"}})

	tests := []struct {
		name string
		args []string
	}{
		{"unknown schema", []string{"validate", path, "--schema", "Nope"}},
		{"missing schema flag", []string{"validate", path}},
		{"bad format", []string{"validate", path, "--schema", "Option_B", "--format", "yaml"}},
		{"bad color", []string{"validate", path, "--schema", "Option_B", "--color", "sometimes"}},
		{"missing file", []string{"validate", filepath.Join(t.TempDir(), "none.csv"), "--schema", "Option_B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.NotErrorIs(t, err, errReportFailed)
		})
	}
}

func TestSchemasCmd(t *testing.T) {
	out, err := execute(t, "schemas")
	require.NoError(t, err)
	assert.Contains(t, out, "Option_A (7 columns)")
	assert.Contains(t, out, "Option_B (4 columns)")

	out, err = execute(t, "schemas", "--json")
	require.NoError(t, err)
	var schemas []schema.Schema
	require.NoError(t, json.Unmarshal([]byte(out), &schemas))
	assert.Len(t, schemas, 2)
}

func TestSchemasCmd_WithCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Option_C:\n  part: str\n  cost: number\n"), 0o644))

	out, err := execute(t, "schemas", "--schema-file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Option_C (2 columns)")
}

func TestSampleThenValidate(t *testing.T) {
	output := filepath.Join(t.TempDir(), "sample.xlsx")

	out, err := execute(t, "sample", "Option_A", "--output", output, "--rows", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 12 rows for Option_A")

	out, err = execute(t, "validate", output, "--schema", "Option_A", "--color", "never", "--preview", "0")
	require.NoError(t, err)
	assert.NotContains(t, out, "Data Preview:")
	assert.Contains(t, out, "Data validation passed!")
}

func TestPreviewCmd(t *testing.T) {
	path := writeCSV(t, [][]string{
		{"Name", "Quantity", "Date"},
		{"bolt", "3", "2024-01-05"},
		{"nut", "4", "2024-01-06"},
	})

	out, err := execute(t, "preview", path, "--rows", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "bolt")
	assert.Contains(t, out, "1 of 2 rows shown")
	assert.Regexp(t, `Quantity\s+looks like number`, out)
	assert.Regexp(t, `Date\s+looks like date`, out)
	assert.Regexp(t, `Name\s+looks like string`, out)
}
