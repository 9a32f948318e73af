package main

import (
	"context"
	"log"
	"os"
	"time"

	"sheetcheck/adapters/catalog"
	"sheetcheck/internal/config"
	"sheetcheck/internal/registry"

	"github.com/joho/godotenv"
)

// migrate creates the schema catalog tables and seeds them with the built-in
// schemas, plus any schemas from a YAML catalog given as the first argument.
// The database comes from SCHEMA_DB_DRIVER and SCHEMA_DB_URL.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appConfig.Schemas.DBURL == "" {
		log.Fatal("Usage: SCHEMA_DB_URL=<url> [SCHEMA_DB_DRIVER=postgres|sqlite3] migrate [schemas.yaml]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := catalog.OpenDB(ctx, appConfig.Schemas.DBDriver, appConfig.Schemas.DBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	source := catalog.NewSQLSource(db)
	if err := source.Migrate(ctx); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Catalog tables ready on %s", appConfig.Schemas.DBDriver)

	schemas := registry.BuiltinSchemas()
	if len(os.Args) > 1 {
		extra, err := catalog.NewFileSource(os.Args[1]).Load(ctx)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", os.Args[1], err)
		}
		schemas = append(schemas, extra...)
	}

	if err := source.Seed(ctx, schemas); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	for _, sc := range schemas {
		log.Printf("Seeded %s (%d columns)", sc.Name, len(sc.Columns))
	}
}
