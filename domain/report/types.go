package report

import (
	"time"

	"sheetcheck/domain/core"
	"sheetcheck/domain/schema"
	"sheetcheck/domain/table"
)

// CheckStatus is the outcome of checking one expected column
type CheckStatus string

const (
	StatusMissing CheckStatus = "missing"
	StatusValid   CheckStatus = "valid"
	StatusInvalid CheckStatus = "invalid"
)

// OverallStatus is the verdict for the whole table
type OverallStatus string

const (
	Passed OverallStatus = "passed"
	Failed OverallStatus = "failed"
)

// CellFailure records one cell that did not fit the expected type
type CellFailure struct {
	Row    int    `json:"row"` // spreadsheet row number, header is row 1
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// NumericSummary describes a numeric column that passed its check
type NumericSummary struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// ColumnResult is the check result for one expected column
type ColumnResult struct {
	Name         string            `json:"name"`
	ExpectedType schema.ColumnType `json:"expected_type"`
	Status       CheckStatus       `json:"status"`
	Detail       string            `json:"detail,omitempty"`
	Checked      int               `json:"checked"` // non-null cells inspected
	Nulls        int               `json:"nulls"`
	Failures     []CellFailure     `json:"failures,omitempty"`
	Summary      *NumericSummary   `json:"summary,omitempty"`
}

// ValidationReport is the structured result of validating one table
type ValidationReport struct {
	Schema         schema.Name    `json:"schema"`
	Status         OverallStatus  `json:"status"`
	MissingColumns []string       `json:"missing_columns"`
	Columns        []ColumnResult `json:"columns"`
}

// Passed reports whether the overall status is passed
func (r ValidationReport) Passed() bool {
	return r.Status == Passed
}

// Result returns the check result for a column
func (r ValidationReport) Result(name string) (ColumnResult, bool) {
	for _, c := range r.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnResult{}, false
}

// Results returns the per-column results keyed by column name
func (r ValidationReport) Results() map[string]ColumnResult {
	out := make(map[string]ColumnResult, len(r.Columns))
	for _, c := range r.Columns {
		out[c.Name] = c
	}
	return out
}

// InvalidColumns returns the names of columns whose type check failed
func (r ValidationReport) InvalidColumns() []string {
	var names []string
	for _, c := range r.Columns {
		if c.Status == StatusInvalid {
			names = append(names, c.Name)
		}
	}
	return names
}

// DeriveStatus computes the overall status from missing columns and
// per-column results. A report is failed iff a column is missing or invalid.
func DeriveStatus(missing []string, columns []ColumnResult) OverallStatus {
	if len(missing) > 0 {
		return Failed
	}
	for _, c := range columns {
		if c.Status == StatusInvalid {
			return Failed
		}
	}
	return Passed
}

// Run wraps a report with the request context a presentation layer shows
type Run struct {
	ID         core.RunID       `json:"run_id"`
	Source     string           `json:"source"`
	Schema     schema.Name      `json:"schema"`
	StartedAt  time.Time        `json:"started_at"`
	DurationMs int64            `json:"duration_ms"`
	Preview    table.Preview    `json:"preview"`
	Report     ValidationReport `json:"report"`
}
