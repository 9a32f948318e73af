package render

import (
	"fmt"
	"strings"

	"sheetcheck/domain/report"
)

// MissingMessage is the one-line column check result
func MissingMessage(rep report.ValidationReport) string {
	if len(rep.MissingColumns) == 0 {
		return "All required columns are present."
	}
	quoted := make([]string, len(rep.MissingColumns))
	for i, c := range rep.MissingColumns {
		quoted[i] = "'" + c + "'"
	}
	return fmt.Sprintf("Missing columns: [%s]", strings.Join(quoted, ", "))
}

// StatusLine describes one column result
func StatusLine(c report.ColumnResult) string {
	label := c.ExpectedType.Label()
	switch c.Status {
	case report.StatusMissing:
		return "Column missing"
	case report.StatusInvalid:
		if c.Detail == "" {
			return fmt.Sprintf("Invalid %s format", label)
		}
		return fmt.Sprintf("Invalid %s format: %s", label, c.Detail)
	default:
		if c.Checked == 0 {
			return fmt.Sprintf("Valid %s format (no values to check)", label)
		}
		return fmt.Sprintf("Valid %s format", label)
	}
}

// OverallMessage is the closing verdict line
func OverallMessage(rep report.ValidationReport) string {
	if rep.Passed() {
		return "Data validation passed!"
	}
	return "Data validation failed!"
}

// SummaryLine describes a numeric summary, or "" when there is none
func SummaryLine(c report.ColumnResult) string {
	if c.Summary == nil {
		return ""
	}
	return fmt.Sprintf("min %s, max %s, mean %s",
		formatNumber(c.Summary.Min), formatNumber(c.Summary.Max), formatNumber(c.Summary.Mean))
}

func formatNumber(f float64) string {
	s := fmt.Sprintf("%.4f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
