package ports

import (
	"context"

	"sheetcheck/domain/schema"
)

// SchemaSource supplies extra schema definitions at startup.
// Sources are read once, before the registry is frozen.
type SchemaSource interface {
	Load(ctx context.Context) ([]schema.Schema, error)
}
