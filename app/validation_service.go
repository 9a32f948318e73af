package app

import (
	"bytes"
	"context"
	"io"
	"time"

	"sheetcheck/domain/core"
	"sheetcheck/domain/report"
	"sheetcheck/domain/schema"
	"sheetcheck/domain/table"
	"sheetcheck/internal"
	"sheetcheck/internal/errors"
	"sheetcheck/internal/metrics"
	"sheetcheck/internal/registry"
	"sheetcheck/internal/validation"
	"sheetcheck/ports"

	"golang.org/x/sync/semaphore"
)

// ServiceConfig bounds what validation requests may consume
type ServiceConfig struct {
	MaxUploadBytes int64
	Concurrency    int64
	PreviewRows    int
}

// DefaultServiceConfig returns sensible defaults
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxUploadBytes: 50 * 1024 * 1024,
		Concurrency:    4,
		PreviewRows:    5,
	}
}

// Request is one uploaded file to check against a schema
type Request struct {
	Schema      schema.Name
	Filename    string
	Body        io.Reader
	Size        int64 // 0 when unknown
	PreviewRows int   // 0 uses the service default
}

// ValidationService decodes uploads, validates them and wraps the report
// in a run envelope for the presentation layers
type ValidationService struct {
	registry  *registry.Registry
	decoder   ports.TableDecoder
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *internal.Logger
	sem       *semaphore.Weighted
	config    ServiceConfig
}

// NewValidationService creates a validation service
func NewValidationService(
	reg *registry.Registry,
	decoder ports.TableDecoder,
	validator *validation.Validator,
	m *metrics.Metrics,
	logger *internal.Logger,
	config ServiceConfig,
) *ValidationService {
	defaults := DefaultServiceConfig()
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if config.Concurrency <= 0 {
		config.Concurrency = defaults.Concurrency
	}
	if config.PreviewRows <= 0 {
		config.PreviewRows = defaults.PreviewRows
	}
	if m == nil {
		m = metrics.NewNopMetrics()
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &ValidationService{
		registry:  reg,
		decoder:   decoder,
		validator: validator,
		metrics:   m,
		logger:    logger.WithComponent("ValidationService"),
		sem:       semaphore.NewWeighted(config.Concurrency),
		config:    config,
	}
}

// Config returns the limits the service enforces
func (s *ValidationService) Config() ServiceConfig {
	return s.config
}

// Schemas lists the registered schemas in registration order
func (s *ValidationService) Schemas() []schema.Schema {
	return s.registry.Schemas()
}

// Schema returns one registered schema
func (s *ValidationService) Schema(name schema.Name) (schema.Schema, error) {
	return s.registry.Lookup(name)
}

// Run decodes the upload and validates it. Errors mean no report was
// produced: unknown schema, unreadable file, oversize upload or a
// cancelled request.
func (s *ValidationService) Run(ctx context.Context, req Request) (*report.Run, error) {
	started := time.Now()

	if !s.registry.Has(req.Schema) {
		return nil, s.fail(errors.UnknownSchema(string(req.Schema)))
	}
	if req.Body == nil {
		return nil, s.fail(errors.InvalidInput("no file was uploaded"))
	}
	if req.Size > s.config.MaxUploadBytes {
		return nil, s.fail(errors.UploadTooLarge(req.Size, s.config.MaxUploadBytes))
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, s.fail(errors.Wrap(err, "request cancelled while waiting to validate"))
	}
	defer s.sem.Release(1)
	s.metrics.InFlight.Inc()
	defer s.metrics.InFlight.Dec()

	data, err := io.ReadAll(io.LimitReader(req.Body, s.config.MaxUploadBytes+1))
	if err != nil {
		return nil, s.fail(errors.MalformedTable("failed to read upload", err))
	}
	if int64(len(data)) > s.config.MaxUploadBytes {
		return nil, s.fail(errors.UploadTooLarge(int64(len(data)), s.config.MaxUploadBytes))
	}

	decodeStart := time.Now()
	tbl, err := s.decoder.Decode(ctx, req.Filename, bytes.NewReader(data))
	if err != nil {
		return nil, s.fail(err)
	}
	s.metrics.ObserveDecode(time.Since(decodeStart).Seconds(), tbl.Len())
	s.logger.Debug("decoded %s: %d columns, %d rows in %s", req.Filename, len(tbl.Columns), tbl.Len(), time.Since(decodeStart))

	return s.finish(req.Filename, req.Schema, tbl, req.PreviewRows, started)
}

// ValidateTable validates an already decoded table, as the JSON API does
// for row arrays posted inline
func (s *ValidationService) ValidateTable(ctx context.Context, source string, name schema.Name, tbl *table.Table, previewRows int) (*report.Run, error) {
	started := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, s.fail(errors.Wrap(err, "request cancelled"))
	}
	return s.finish(source, name, tbl, previewRows, started)
}

func (s *ValidationService) finish(source string, name schema.Name, tbl *table.Table, previewRows int, started time.Time) (*report.Run, error) {
	rep, err := s.validator.Validate(tbl, name)
	if err != nil {
		return nil, s.fail(err)
	}

	if previewRows <= 0 {
		previewRows = s.config.PreviewRows
	}
	run := &report.Run{
		ID:         core.NewRunID(),
		Source:     source,
		Schema:     name,
		StartedAt:  started.UTC(),
		DurationMs: time.Since(started).Milliseconds(),
		Preview:    tbl.Head(previewRows),
		Report:     rep,
	}

	s.metrics.ObserveValidation(string(name), string(rep.Status))
	s.logger.Info("run %s: %s against %s %s (%d missing, %d invalid)",
		run.ID, source, name, rep.Status, len(rep.MissingColumns), len(rep.InvalidColumns()))
	return run, nil
}

func (s *ValidationService) fail(err error) error {
	code := errors.GetCode(err)
	s.metrics.ObserveError(code)
	s.logger.Warn("validation aborted [%s]: %v", code, err)
	return err
}
