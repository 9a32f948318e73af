package container

import (
	"context"
	"fmt"

	"sheetcheck/adapters"
	"sheetcheck/adapters/catalog"
	"sheetcheck/adapters/datareadiness/coercer"
	"sheetcheck/adapters/excel"
	"sheetcheck/adapters/jsontable"
	"sheetcheck/app"
	"sheetcheck/internal"
	"sheetcheck/internal/config"
	"sheetcheck/internal/metrics"
	"sheetcheck/internal/registry"
	"sheetcheck/internal/validation"
	"sheetcheck/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB      *sqlx.DB
	Metrics *metrics.Metrics

	// Validation components
	Registry          *registry.Registry
	Decoder           *adapters.Dispatcher
	JSONReader        *jsontable.Reader
	Validator         *validation.Validator
	ValidationService *app.ValidationService
}

// New creates a new dependency injection container. Schema catalogs named in
// the config are read here, once, before the registry is frozen.
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	sources, err := c.initSchemaSources(ctx)
	if err != nil {
		c.Shutdown(ctx)
		return nil, err
	}

	c.Registry, err = registry.Load(ctx, sources...)
	if err != nil {
		c.Shutdown(ctx)
		return nil, fmt.Errorf("failed to build schema registry: %w", err)
	}
	logger.Info("schema registry ready with %d schemas: %v", c.Registry.Len(), c.Registry.Names())

	c.initValidation()
	return c, nil
}

// initSchemaSources opens the optional YAML and SQL catalogs
func (c *Container) initSchemaSources(ctx context.Context) ([]ports.SchemaSource, error) {
	var sources []ports.SchemaSource

	if c.Config.Schemas.File != "" {
		sources = append(sources, catalog.NewFileSource(c.Config.Schemas.File))
		c.Logger.Info("loading schemas from %s", c.Config.Schemas.File)
	}

	if c.Config.Schemas.DBURL != "" {
		db, err := catalog.OpenDB(ctx, c.Config.Schemas.DBDriver, c.Config.Schemas.DBURL)
		if err != nil {
			return nil, err
		}
		c.DB = db
		sources = append(sources, catalog.NewSQLSource(db))
		c.Logger.Info("loading schemas from %s database", c.Config.Schemas.DBDriver)
	}

	return sources, nil
}

// initValidation wires decoders, validator, metrics and the service
func (c *Container) initValidation() {
	coercion := coercer.DefaultCoercionConfig()
	coercion.AllowFormattedNumbers = c.Config.Upload.AllowFormattedNumbers

	readerConfig := excel.DefaultReaderConfig()
	readerConfig.Sheet = c.Config.Upload.SheetName
	readerConfig.CoercionConfig = coercion

	c.Decoder = adapters.NewDefaultDispatcher(readerConfig, c.Logger)
	c.JSONReader = jsontable.NewReader(jsontable.Config{CoercionConfig: coercion}, c.Logger)
	c.Validator = validation.NewValidator(c.Registry, coercer.NewTypeCoercer(coercion))
	if c.Config.Metrics.Enabled {
		c.Metrics = metrics.NewMetrics()
	} else {
		c.Metrics = metrics.NewNopMetrics()
	}
	c.ValidationService = app.NewValidationService(
		c.Registry,
		c.Decoder,
		c.Validator,
		c.Metrics,
		c.Logger,
		app.ServiceConfig{
			MaxUploadBytes: c.Config.Upload.MaxBytes,
			Concurrency:    c.Config.Upload.Concurrency,
			PreviewRows:    c.Config.Upload.PreviewRows,
		},
	)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
