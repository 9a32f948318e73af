package migration

import (
	"context"

	"sheetcheck/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the schema catalog tables. The DDL is kept to the
// subset postgres and sqlite3 both accept.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSchemasTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create check_schemas table", err)
	}

	if err := r.createSchemaColumnsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create check_schema_columns table", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("failed to create indexes", err)
	}

	return nil
}

func (r *MigrationRunner) createSchemasTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS check_schemas (
			name VARCHAR(255) PRIMARY KEY,
			description TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

func (r *MigrationRunner) createSchemaColumnsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS check_schema_columns (
			schema_name VARCHAR(255) NOT NULL REFERENCES check_schemas(name) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			column_name VARCHAR(255) NOT NULL,
			expected_type VARCHAR(32) NOT NULL,
			PRIMARY KEY (schema_name, position),
			UNIQUE (schema_name, column_name)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_check_schemas_position ON check_schemas(position)
	`)
	return err
}
