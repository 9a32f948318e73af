package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics()
	m.ObserveValidation("Option_A", "passed")
	m.ObserveValidation("Option_A", "passed")
	m.ObserveValidation("Option_B", "failed")
	m.ObserveError("UNKNOWN_SCHEMA")
	m.ObserveDecode(0.02, 10)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ValidationsTotal.WithLabelValues("Option_A", "passed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationsTotal.WithLabelValues("Option_B", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestErrors.WithLabelValues("UNKNOWN_SCHEMA")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveValidation("Option_B", "passed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `sheetcheck_validations_total{schema="Option_B",status="passed"} 1`)
}

func TestNewMetrics_Independent(t *testing.T) {
	// separate registries, so constructing twice does not panic
	a := NewMetrics()
	b := NewMetrics()
	a.ObserveError("X")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RequestErrors.WithLabelValues("X")))
}
