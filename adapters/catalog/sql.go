package catalog

import (
	"context"
	"fmt"

	"sheetcheck/domain/schema"
	"sheetcheck/internal/errors"
	"sheetcheck/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// SupportedDrivers lists the database/sql drivers a catalog may use
var SupportedDrivers = []string{"postgres", "sqlite3"}

// OpenDB connects to a catalog database and checks the connection
func OpenDB(ctx context.Context, driver, url string) (*sqlx.DB, error) {
	if driver != "postgres" && driver != "sqlite3" {
		return nil, errors.ConfigInvalid(fmt.Sprintf("unsupported schema database driver %q", driver))
	}
	if url == "" {
		return nil, errors.ConfigInvalid("SCHEMA_DB_URL is required when a schema database is used")
	}
	db, err := sqlx.ConnectContext(ctx, driver, url)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to schema database", err)
	}
	if driver == "sqlite3" {
		// an in-memory database exists per connection
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

type schemaRow struct {
	Name        string `db:"name"`
	Description string `db:"description"`
	Position    int    `db:"position"`
}

type columnRow struct {
	SchemaName   string `db:"schema_name"`
	Position     int    `db:"position"`
	ColumnName   string `db:"column_name"`
	ExpectedType string `db:"expected_type"`
}

// SQLSource reads schema definitions from the check_schemas and
// check_schema_columns tables
type SQLSource struct {
	db *sqlx.DB
}

// NewSQLSource creates a SQL-backed schema source
func NewSQLSource(db *sqlx.DB) *SQLSource {
	return &SQLSource{db: db}
}

// Migrate creates the catalog tables if they do not exist
func (s *SQLSource) Migrate(ctx context.Context) error {
	return migration.NewRunner().Run(ctx, s.db)
}

// Load reads every schema, ordered by position then name
func (s *SQLSource) Load(ctx context.Context) ([]schema.Schema, error) {
	var schemaRows []schemaRow
	err := s.db.SelectContext(ctx, &schemaRows,
		`SELECT name, description, position FROM check_schemas ORDER BY position, name`)
	if err != nil {
		return nil, errors.DatabaseError("failed to list schemas", err)
	}

	var columnRows []columnRow
	err = s.db.SelectContext(ctx, &columnRows,
		`SELECT schema_name, position, column_name, expected_type FROM check_schema_columns ORDER BY schema_name, position`)
	if err != nil {
		return nil, errors.DatabaseError("failed to list schema columns", err)
	}

	columns := make(map[string][]schema.ColumnSpec)
	for _, row := range columnRows {
		colType, err := schema.ParseColumnType(row.ExpectedType)
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("schema %s column %s: %v", row.SchemaName, row.ColumnName, err))
		}
		columns[row.SchemaName] = append(columns[row.SchemaName], schema.ColumnSpec{Name: row.ColumnName, Type: colType})
	}

	schemas := make([]schema.Schema, 0, len(schemaRows))
	for _, row := range schemaRows {
		schemas = append(schemas, schema.Schema{
			Name:        schema.Name(row.Name),
			Description: row.Description,
			Columns:     columns[row.Name],
		})
	}
	return schemas, nil
}

// Seed writes schemas, replacing any existing definition with the same name
func (s *SQLSource) Seed(ctx context.Context, schemas []schema.Schema) error {
	for _, sc := range schemas {
		if err := sc.Check(); err != nil {
			return errors.WithCode(errors.CodeConfigInvalid, err)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	upsertSchema := s.db.Rebind(`INSERT INTO check_schemas (name, description, position) VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET description = excluded.description, position = excluded.position`)
	deleteColumns := s.db.Rebind(`DELETE FROM check_schema_columns WHERE schema_name = ?`)
	insertColumn := s.db.Rebind(`INSERT INTO check_schema_columns (schema_name, position, column_name, expected_type) VALUES (?, ?, ?, ?)`)

	for i, sc := range schemas {
		if _, err := tx.ExecContext(ctx, upsertSchema, string(sc.Name), sc.Description, i); err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to save schema %s", sc.Name), err)
		}
		if _, err := tx.ExecContext(ctx, deleteColumns, string(sc.Name)); err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to clear columns of %s", sc.Name), err)
		}
		for pos, col := range sc.Columns {
			if _, err := tx.ExecContext(ctx, insertColumn, string(sc.Name), pos, col.Name, string(col.Type)); err != nil {
				return errors.DatabaseError(fmt.Sprintf("failed to save column %s.%s", sc.Name, col.Name), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit schemas", err)
	}
	return nil
}
