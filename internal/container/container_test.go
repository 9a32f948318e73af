package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"sheetcheck/adapters/catalog"
	"sheetcheck/domain/schema"
	"sheetcheck/internal/config"
	"sheetcheck/internal/errors"
	"sheetcheck/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Port: "8080", APIPort: "8081", GinMode: "test"},
		Logging: config.LoggingConfig{Level: "ERROR", Format: "console"},
		Upload: config.UploadConfig{
			MaxBytes:    1 << 20,
			Concurrency: 2,
			PreviewRows: 3,
		},
		Metrics: config.MetricsConfig{Enabled: true},
	}
}

func TestNew_BuiltinsOnly(t *testing.T) {
	c, err := New(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	assert.Equal(t, []schema.Name{registry.OptionA, registry.OptionB}, c.Registry.Names())
	assert.Nil(t, c.DB)
	assert.NotNil(t, c.Decoder)
	assert.NotNil(t, c.JSONReader)
	assert.NotNil(t, c.Metrics)
	assert.Equal(t, int64(1<<20), c.ValidationService.Config().MaxUploadBytes)
	assert.Equal(t, 3, c.ValidationService.Config().PreviewRows)
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(context.Background(), nil, nil)
	require.Error(t, err)
}

func TestNew_SchemaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Option_C:\n  part: str\n  returned: date\n"), 0o644))

	cfg := testConfig()
	cfg.Schemas.File = path
	c, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)

	sc, err := c.Registry.Lookup("Option_C")
	require.NoError(t, err)
	assert.Equal(t, []string{"part", "returned"}, sc.ColumnNames())
}

func TestNew_SchemaDatabase(t *testing.T) {
	ctx := context.Background()
	url := filepath.Join(t.TempDir(), "catalog.db")

	db, err := catalog.OpenDB(ctx, "sqlite3", url)
	require.NoError(t, err)
	src := catalog.NewSQLSource(db)
	require.NoError(t, src.Migrate(ctx))
	seed := append(registry.BuiltinSchemas(), schema.Schema{
		Name:    "Option_D",
		Columns: []schema.ColumnSpec{{Name: "amount", Type: schema.TypeNumber}},
	})
	require.NoError(t, src.Seed(ctx, seed))
	require.NoError(t, db.Close())

	cfg := testConfig()
	cfg.Schemas.DBDriver = "sqlite3"
	cfg.Schemas.DBURL = url
	c, err := New(ctx, cfg, nil)
	require.NoError(t, err)

	assert.NotNil(t, c.DB)
	assert.Equal(t, []schema.Name{registry.OptionA, registry.OptionB, "Option_D"}, c.Registry.Names())
	assert.NoError(t, c.Shutdown(ctx))
}

func TestNew_BadCatalogs(t *testing.T) {
	cfg := testConfig()
	cfg.Schemas.File = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := New(context.Background(), cfg, nil)
	require.Error(t, err)

	cfg = testConfig()
	cfg.Schemas.DBDriver = "mysql"
	cfg.Schemas.DBURL = "mysql://localhost"
	_, err = New(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
