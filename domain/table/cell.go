package table

import (
	"strconv"
	"time"
)

// CellKind tags what a decoder knows about a cell's value
type CellKind string

const (
	KindNull   CellKind = "null"
	KindText   CellKind = "text"   // typed as a string by the source
	KindRaw    CellKind = "raw"    // untyped text that still needs parsing (CSV)
	KindNumber CellKind = "number" // numeric value stored by the source
	KindDate   CellKind = "date"   // date value stored by the source
	KindBool   CellKind = "bool"
	KindError  CellKind = "error" // spreadsheet error value such as #DIV/0!
)

// Cell is a tagged variant holding one decoded spreadsheet value
type Cell struct {
	Kind   CellKind  `json:"kind"`
	Text   string    `json:"text,omitempty"`
	Number float64   `json:"number,omitempty"`
	Time   time.Time `json:"time,omitempty"`
	Bool   bool      `json:"bool,omitempty"`
}

// Null creates an empty cell
func Null() Cell {
	return Cell{Kind: KindNull}
}

// Text creates a cell typed as a string by its source
func Text(s string) Cell {
	return Cell{Kind: KindText, Text: s}
}

// Raw creates an untyped text cell
func Raw(s string) Cell {
	return Cell{Kind: KindRaw, Text: s}
}

// Number creates a numeric cell
func Number(n float64) Cell {
	return Cell{Kind: KindNumber, Number: n}
}

// Date creates a date cell
func Date(t time.Time) Cell {
	return Cell{Kind: KindDate, Time: t}
}

// Bool creates a boolean cell
func Bool(b bool) Cell {
	return Cell{Kind: KindBool, Bool: b}
}

// ErrorValue creates a cell holding a spreadsheet error such as #REF!
func ErrorValue(code string) Cell {
	return Cell{Kind: KindError, Text: code}
}

// IsNull reports whether the cell holds no value
func (c Cell) IsNull() bool {
	return c.Kind == KindNull || c.Kind == ""
}

// IsTextual reports whether the value is held as text
func (c Cell) IsTextual() bool {
	return c.Kind == KindText || c.Kind == KindRaw
}

// String returns the display form of the cell
func (c Cell) String() string {
	switch c.Kind {
	case KindText, KindRaw, KindError:
		return c.Text
	case KindNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case KindDate:
		if c.Time.Hour() == 0 && c.Time.Minute() == 0 && c.Time.Second() == 0 && c.Time.Nanosecond() == 0 {
			return c.Time.Format("2006-01-02")
		}
		return c.Time.Format("2006-01-02 15:04:05")
	case KindBool:
		if c.Bool {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}
