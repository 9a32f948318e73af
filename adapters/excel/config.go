package excel

import (
	"sheetcheck/adapters/datareadiness/coercer"
)

// ReaderConfig holds configuration for spreadsheet decoding
type ReaderConfig struct {
	Sheet          string                 `json:"sheet"`        // empty selects the first sheet
	TrimHeaders    bool                   `json:"trim_headers"` // strip surrounding whitespace from header cells
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
}

// DefaultReaderConfig returns sensible defaults for spreadsheet decoding
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}
