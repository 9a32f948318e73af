package coercer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"sheetcheck/domain/schema"
	"sheetcheck/domain/table"

	"github.com/xuri/excelize/v2"
)

// Serial day numbers outside this range are not dates a spreadsheet can show
const (
	minExcelSerial = 1.0
	maxExcelSerial = 2958465.0 // 9999-12-31
)

// TypeCoercer turns raw cell text into typed values with explicit, fallible parses
type TypeCoercer struct {
	config CoercionConfig
	nulls  map[string]bool
}

// CoercionConfig defines the parsing rules
type CoercionConfig struct {
	AllowFormattedNumbers bool     `json:"allow_formatted_numbers"` // currency, thousands separators, (123) negatives
	NullTokens            []string `json:"null_tokens"`             // text treated as a blank cell
	DateLayouts           []string `json:"date_layouts"`
	NumericThreshold      float64  `json:"numeric_threshold"`   // share of values that must parse as numbers to suggest number
	TimestampThreshold    float64  `json:"timestamp_threshold"` // share of values that must parse as dates to suggest date
}

// DefaultNullTokens are the strings read as missing values by common
// dataframe libraries
var DefaultNullTokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a", "nan", "null",
}

// DefaultDateLayouts are the textual date forms accepted for date columns
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339,
	time.RFC3339Nano,
	"2006/01/02",
	"2006/01/02 15:04:05",
	"2006.01.02",
	"01/02/2006",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"01-02-2006",
	"02-Jan-2006",
	"02-Jan-06",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"20060102",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.ANSIC,
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		AllowFormattedNumbers: false,
		NullTokens:            DefaultNullTokens,
		DateLayouts:           DefaultDateLayouts,
		NumericThreshold:      0.8, // 80% must parse as numbers
		TimestampThreshold:    0.8, // 80% must parse as timestamps
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	if len(config.DateLayouts) == 0 {
		config.DateLayouts = DefaultDateLayouts
	}
	nulls := make(map[string]bool, len(config.NullTokens))
	for _, tok := range config.NullTokens {
		nulls[tok] = true
	}
	nulls[""] = true
	return &TypeCoercer{config: config, nulls: nulls}
}

// Config returns the rules this coercer applies
func (c *TypeCoercer) Config() CoercionConfig {
	return c.config
}

// IsNull reports whether text stands for a missing value
func (c *TypeCoercer) IsNull(s string) bool {
	return c.nulls[s]
}

// CellFromString builds a cell of the given textual kind, or a null cell
// when the text is a null token
func (c *TypeCoercer) CellFromString(s string, kind table.CellKind) table.Cell {
	if c.IsNull(s) {
		return table.Null()
	}
	if kind == table.KindText {
		return table.Text(s)
	}
	return table.Raw(s)
}

// ParseNumber parses text as a finite number
func (c *TypeCoercer) ParseNumber(s string) (float64, error) {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return 0, fmt.Errorf("empty value is not a number")
	}
	if c.config.AllowFormattedNumbers {
		clean = normalizeFormattedNumber(clean)
	}
	val, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return val, nil
}

// normalizeFormattedNumber strips currency symbols, percent signs and
// thousands separators, and turns (123) into -123. European decimals
// (1.234,56) are recognised when both separators are present.
func normalizeFormattedNumber(cleanVal string) string {
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(strings.ReplaceAll(cleanVal, "%", ""))

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	if hasComma && (hasPeriod || hasSpace) && strings.LastIndex(cleanVal, ",") > strings.LastIndex(cleanVal, ".") {
		// 1.234,56 or 1 234,56
		cleanVal = strings.ReplaceAll(cleanVal, ".", "")
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
	} else {
		cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}
	return cleanVal
}

// ParseDate parses text as a calendar date using the configured layouts,
// falling back to a spreadsheet serial day number
func (c *TypeCoercer) ParseDate(s string) (time.Time, error) {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return time.Time{}, fmt.Errorf("empty value is not a date")
	}

	var firstErr error
	for _, layout := range c.config.DateLayouts {
		t, err := time.Parse(layout, clean)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	if serial, err := strconv.ParseFloat(clean, 64); err == nil {
		return c.SerialToTime(serial)
	}

	return time.Time{}, fmt.Errorf("unknown date format %q: %v", s, firstErr)
}

// SerialToTime converts a spreadsheet serial day number to a time
func (c *TypeCoercer) SerialToTime(serial float64) (time.Time, error) {
	if math.IsNaN(serial) || serial < minExcelSerial || serial > maxExcelSerial {
		return time.Time{}, fmt.Errorf("%s is outside the spreadsheet date range", strconv.FormatFloat(serial, 'f', -1, 64))
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid serial date %v: %w", serial, err)
	}
	return t, nil
}

// ValidText reports whether textual content can be shown as text
func (c *TypeCoercer) ValidText(s string) bool {
	return utf8.ValidString(s)
}

// AnalyzeTypeDistribution counts how many non-null cells could be read as
// each column type and suggests the best fit
func (c *TypeCoercer) AnalyzeTypeDistribution(cells []table.Cell) TypeAnalysis {
	analysis := TypeAnalysis{
		TotalCount: len(cells),
	}

	for _, cell := range cells {
		if cell.IsNull() {
			continue
		}
		analysis.ValidCount++

		switch cell.Kind {
		case table.KindNumber:
			analysis.NumericCount++
		case table.KindDate:
			analysis.TimestampCount++
		case table.KindText, table.KindRaw:
			if _, err := c.ParseNumber(cell.Text); err == nil {
				analysis.NumericCount++
			} else if _, err := c.ParseDate(cell.Text); err == nil {
				analysis.TimestampCount++
			}
		}
	}

	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
		analysis.TimestampRatio = float64(analysis.TimestampCount) / float64(analysis.ValidCount)
	}
	analysis.RecommendedType = c.determineRecommendedType(analysis)

	return analysis
}

func (c *TypeCoercer) determineRecommendedType(analysis TypeAnalysis) schema.ColumnType {
	if analysis.ValidCount == 0 {
		return schema.TypeString
	}
	if analysis.NumericRatio >= c.config.NumericThreshold {
		return schema.TypeNumber
	}
	if analysis.TimestampRatio >= c.config.TimestampThreshold {
		return schema.TypeDate
	}
	return schema.TypeString
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int               `json:"total_count"`
	ValidCount      int               `json:"valid_count"`
	NumericCount    int               `json:"numeric_count"`
	TimestampCount  int               `json:"timestamp_count"`
	NumericRatio    float64           `json:"numeric_ratio"`
	TimestampRatio  float64           `json:"timestamp_ratio"`
	RecommendedType schema.ColumnType `json:"recommended_type"`
}
