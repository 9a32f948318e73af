package ports

import (
	"context"
	"io"

	"sheetcheck/domain/table"
)

// TableDecoder turns an uploaded file into a table of tagged cells
type TableDecoder interface {
	// Supports reports whether the decoder handles the file's format
	Supports(filename string) bool
	// Decode reads the whole input. Unreadable input fails with a
	// MALFORMED_TABLE error.
	Decode(ctx context.Context, filename string, r io.Reader) (*table.Table, error)
}
