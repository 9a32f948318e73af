package validation

import (
	"fmt"
	"math"
	"strings"

	"sheetcheck/domain/report"
	"sheetcheck/domain/schema"
	"sheetcheck/domain/table"

	"github.com/montanaflynn/stats"
)

// checkColumn runs the type check for one present column. Null cells are
// counted and skipped.
func (v *Validator) checkColumn(col schema.ColumnSpec, cells []table.Cell) report.ColumnResult {
	result := report.ColumnResult{
		Name:         col.Name,
		ExpectedType: col.Type,
	}

	var failures []report.CellFailure
	var numbers []float64
	failed := 0

	for i, cell := range cells {
		if v.isNull(cell) {
			result.Nulls++
			continue
		}
		result.Checked++

		var reason string
		switch col.Type {
		case schema.TypeNumber:
			var n float64
			n, reason = v.checkNumber(cell)
			if reason == "" {
				numbers = append(numbers, n)
			}
		case schema.TypeDate:
			reason = v.checkDate(cell)
		default:
			reason = v.checkString(cell)
		}

		if reason == "" {
			continue
		}
		failed++
		if len(failures) < v.maxFailures {
			failures = append(failures, report.CellFailure{
				Row:    i + 2,
				Value:  cell.String(),
				Reason: reason,
			})
		}
	}

	switch {
	case failed > 0:
		result.Status = report.StatusInvalid
		result.Failures = failures
		result.Detail = describeFailures(col.Type, failures, failed)
	case result.Checked == 0:
		result.Status = report.StatusValid
		result.Detail = "no values to check"
	default:
		result.Status = report.StatusValid
		if col.Type == schema.TypeNumber {
			result.Summary = summarize(numbers)
		}
	}
	return result
}

// isNull treats null tokens held as text the same as blank cells
func (v *Validator) isNull(cell table.Cell) bool {
	return cell.IsNull() || (cell.IsTextual() && v.coercer.IsNull(cell.Text))
}

// checkString returns a failure reason, or "" when the cell reads as text
func (v *Validator) checkString(cell table.Cell) string {
	switch cell.Kind {
	case table.KindError:
		return fmt.Sprintf("spreadsheet error %s is not text", cell.Text)
	case table.KindText, table.KindRaw:
		if !v.coercer.ValidText(cell.Text) {
			return "value is not valid UTF-8 text"
		}
	}
	return ""
}

// checkNumber returns the numeric value, or a failure reason
func (v *Validator) checkNumber(cell table.Cell) (float64, string) {
	switch cell.Kind {
	case table.KindNumber:
		if math.IsInf(cell.Number, 0) || math.IsNaN(cell.Number) {
			return 0, fmt.Sprintf("%v is not a finite number", cell.Number)
		}
		return cell.Number, ""
	case table.KindText, table.KindRaw:
		n, err := v.coercer.ParseNumber(cell.Text)
		if err != nil {
			return 0, err.Error()
		}
		return n, ""
	case table.KindDate:
		return 0, "date value is not a number"
	case table.KindBool:
		return 0, "boolean value is not a number"
	case table.KindError:
		return 0, fmt.Sprintf("spreadsheet error %s is not a number", cell.Text)
	default:
		return 0, fmt.Sprintf("unsupported %s value", cell.Kind)
	}
}

// checkDate returns a failure reason, or "" when the cell reads as a date
func (v *Validator) checkDate(cell table.Cell) string {
	switch cell.Kind {
	case table.KindDate:
		return ""
	case table.KindNumber:
		if _, err := v.coercer.SerialToTime(cell.Number); err != nil {
			return err.Error()
		}
		return ""
	case table.KindText, table.KindRaw:
		if _, err := v.coercer.ParseDate(cell.Text); err != nil {
			return err.Error()
		}
		return ""
	case table.KindBool:
		return "boolean value is not a date"
	case table.KindError:
		return fmt.Sprintf("spreadsheet error %s is not a date", cell.Text)
	default:
		return fmt.Sprintf("unsupported %s value", cell.Kind)
	}
}

// describeFailures builds the one-line detail for an INVALID column.
// Date columns report the first parse failure; other types list the first
// few offending values.
func describeFailures(t schema.ColumnType, failures []report.CellFailure, total int) string {
	first := failures[0]
	if t == schema.TypeDate {
		detail := fmt.Sprintf("row %d: %s", first.Row, first.Reason)
		if total > 1 {
			detail += fmt.Sprintf(" (%d values are not dates)", total)
		}
		return detail
	}

	shown := failures
	if len(shown) > detailLimit {
		shown = shown[:detailLimit]
	}
	parts := make([]string, len(shown))
	for i, f := range shown {
		parts[i] = fmt.Sprintf("%q (row %d)", f.Value, f.Row)
	}

	label := "non-text"
	if t == schema.TypeNumber {
		label = "non-numeric"
	}
	detail := fmt.Sprintf("%s values: %s", label, strings.Join(parts, ", "))
	if total > len(shown) {
		detail += fmt.Sprintf(" and %d more", total-len(shown))
	}
	return detail
}

func summarize(numbers []float64) *report.NumericSummary {
	if len(numbers) == 0 {
		return nil
	}
	minVal, err := stats.Min(numbers)
	if err != nil {
		return nil
	}
	maxVal, _ := stats.Max(numbers)
	mean, _ := stats.Mean(numbers)
	// the sum behind the mean can overflow even when every value is finite
	if math.IsInf(mean, 0) {
		return nil
	}
	return &report.NumericSummary{Min: minVal, Max: maxVal, Mean: mean}
}
