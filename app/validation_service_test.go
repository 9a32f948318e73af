package app

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"sheetcheck/adapters"
	"sheetcheck/adapters/excel"
	"sheetcheck/domain/report"
	"sheetcheck/domain/table"
	"sheetcheck/internal/errors"
	"sheetcheck/internal/metrics"
	"sheetcheck/internal/registry"
	"sheetcheck/internal/testkit"
	"sheetcheck/internal/validation"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDecoder struct {
	mock.Mock
}

func (m *mockDecoder) Supports(filename string) bool {
	return m.Called(filename).Bool(0)
}

func (m *mockDecoder) Decode(ctx context.Context, filename string, r io.Reader) (*table.Table, error) {
	args := m.Called(ctx, filename, r)
	tbl, _ := args.Get(0).(*table.Table)
	return tbl, args.Error(1)
}

func newService(t *testing.T, config ServiceConfig) (*ValidationService, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewNopMetrics()
	reg := registry.Builtin()
	svc := NewValidationService(reg,
		adapters.NewDefaultDispatcher(excel.DefaultReaderConfig(), nil),
		validation.NewValidator(reg, nil),
		m, nil, config)
	return svc, m
}

func optionBWorkbook(t *testing.T, rows int) []byte {
	t.Helper()
	config := testkit.DefaultSampleConfig()
	config.Rows = rows
	sc, err := registry.Builtin().Lookup(registry.OptionB)
	require.NoError(t, err)
	data, err := testkit.WorkbookBytes(testkit.NewSampleGenerator(config).Generate(sc))
	require.NoError(t, err)
	return data
}

func TestValidationService_Run(t *testing.T) {
	svc, m := newService(t, DefaultServiceConfig())
	data := optionBWorkbook(t, 8)

	run, err := svc.Run(context.Background(), Request{
		Schema:   registry.OptionB,
		Filename: "inventory.xlsx",
		Body:     bytes.NewReader(data),
		Size:     int64(len(data)),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "inventory.xlsx", run.Source)
	assert.Equal(t, registry.OptionB, run.Schema)
	assert.Equal(t, report.Passed, run.Report.Status)
	assert.Equal(t, []string{"Name", "Type", "Quantity", "Date"}, run.Preview.Columns)
	assert.Len(t, run.Preview.Rows, 5)
	assert.Equal(t, 8, run.Preview.TotalRows)
	assert.WithinDuration(t, time.Now(), run.StartedAt, time.Minute)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationsTotal.WithLabelValues("Option_B", "passed")))
}

func TestValidationService_PreviewRows(t *testing.T) {
	svc, _ := newService(t, DefaultServiceConfig())
	data := optionBWorkbook(t, 8)

	run, err := svc.Run(context.Background(), Request{
		Schema: registry.OptionB, Filename: "a.xlsx", Body: bytes.NewReader(data), PreviewRows: 2,
	})
	require.NoError(t, err)
	assert.Len(t, run.Preview.Rows, 2)
}

func TestValidationService_FailedReportIsNotAnError(t *testing.T) {
	svc, m := newService(t, DefaultServiceConfig())
	body := testkit.CSVBytes([][]string{{"Name", "Quantity"}, {"a", "three"}})

	run, err := svc.Run(context.Background(), Request{Schema: registry.OptionB, Filename: "a.csv", Body: bytes.NewReader(body)})
	require.NoError(t, err)
	assert.Equal(t, report.Failed, run.Report.Status)
	assert.Equal(t, []string{"Type", "Date"}, run.Report.MissingColumns)
	assert.Equal(t, []string{"Quantity"}, run.Report.InvalidColumns())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationsTotal.WithLabelValues("Option_B", "failed")))
}

func TestValidationService_UnknownSchemaSkipsDecode(t *testing.T) {
	decoder := &mockDecoder{}
	m := metrics.NewNopMetrics()
	svc := NewValidationService(registry.Builtin(), decoder, validation.NewValidator(nil, nil), m, nil, DefaultServiceConfig())

	_, err := svc.Run(context.Background(), Request{Schema: "Option_Z", Filename: "a.csv", Body: strings.NewReader("a\n1\n")})
	require.Error(t, err)
	assert.True(t, errors.IsUnknownSchema(err))
	decoder.AssertNotCalled(t, "Decode", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestErrors.WithLabelValues(errors.CodeUnknownSchema)))
}

func TestValidationService_DecoderErrorPropagates(t *testing.T) {
	decoder := &mockDecoder{}
	decoder.On("Decode", mock.Anything, "a.xlsx", mock.Anything).
		Return(nil, errors.MalformedTable("file is not a readable Excel workbook", nil))
	svc := NewValidationService(registry.Builtin(), decoder, validation.NewValidator(nil, nil), nil, nil, DefaultServiceConfig())

	_, err := svc.Run(context.Background(), Request{Schema: registry.OptionA, Filename: "a.xlsx", Body: strings.NewReader("junk")})
	require.Error(t, err)
	assert.True(t, errors.IsMalformedTable(err))
	decoder.AssertExpectations(t)
}

func TestValidationService_UploadLimits(t *testing.T) {
	svc, _ := newService(t, ServiceConfig{MaxUploadBytes: 10})

	_, err := svc.Run(context.Background(), Request{Schema: registry.OptionB, Filename: "a.csv", Body: strings.NewReader("x"), Size: 11})
	assert.Equal(t, errors.CodeUploadTooLarge, errors.GetCode(err))

	_, err = svc.Run(context.Background(), Request{Schema: registry.OptionB, Filename: "a.csv", Body: strings.NewReader(strings.Repeat("x", 64))})
	assert.Equal(t, errors.CodeUploadTooLarge, errors.GetCode(err))

	_, err = svc.Run(context.Background(), Request{Schema: registry.OptionB, Filename: "a.csv"})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestValidationService_CancelledWhileWaiting(t *testing.T) {
	svc, _ := newService(t, ServiceConfig{Concurrency: 1})
	require.NoError(t, svc.sem.Acquire(context.Background(), 1))
	defer svc.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.Run(ctx, Request{Schema: registry.OptionB, Filename: "a.csv", Body: strings.NewReader("Name\nx\n")})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestValidationService_ValidateTable(t *testing.T) {
	svc, _ := newService(t, DefaultServiceConfig())
	tbl := testkit.TextTable([]string{"Name", "Type", "Quantity", "Date"}, []string{"a", "b", "1", "2024-01-01"})

	run, err := svc.ValidateTable(context.Background(), "inline", registry.OptionB, tbl, 0)
	require.NoError(t, err)
	assert.True(t, run.Report.Passed())
	assert.Equal(t, "inline", run.Source)

	_, err = svc.ValidateTable(context.Background(), "inline", registry.OptionB, nil, 0)
	assert.True(t, errors.IsMalformedTable(err))
}

func TestValidationService_Schemas(t *testing.T) {
	svc, _ := newService(t, DefaultServiceConfig())
	assert.Len(t, svc.Schemas(), 2)
	_, err := svc.Schema("nope")
	assert.True(t, errors.IsUnknownSchema(err))
}
