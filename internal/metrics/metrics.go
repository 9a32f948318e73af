// Package metrics provides Prometheus metrics for validation runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sheetcheck"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	gatherer prometheus.Gatherer

	// Validation outcomes by schema and overall status
	ValidationsTotal *prometheus.CounterVec
	// Aborted requests by error code
	RequestErrors *prometheus.CounterVec

	DecodeDuration prometheus.Histogram
	RowsDecoded    prometheus.Histogram
	InFlight       prometheus.Gauge
}

// NewMetrics creates metrics registered on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return NewMetricsWith(reg, reg)
}

// NewMetricsWith registers all metrics on reg and serves them from gatherer
func NewMetricsWith(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: gatherer,
		ValidationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Total number of validation reports produced",
		}, []string{"schema", "status"}),
		RequestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_errors_total",
			Help:      "Total number of validation requests aborted without a report",
		}, []string{"code"}),
		DecodeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decode_seconds",
			Help:      "Time spent decoding uploaded files",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		RowsDecoded: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rows_decoded",
			Help:      "Number of data rows per decoded file",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "validations_in_flight",
			Help:      "Number of validation requests currently decoding or checking",
		}),
	}
}

// NewNopMetrics creates metrics that are recorded but never exposed
func NewNopMetrics() *Metrics {
	return NewMetricsWith(prometheus.NewRegistry(), prometheus.NewRegistry())
}

// Handler serves the metrics in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveValidation records one produced report
func (m *Metrics) ObserveValidation(schema, status string) {
	m.ValidationsTotal.WithLabelValues(schema, status).Inc()
}

// ObserveError records one aborted request
func (m *Metrics) ObserveError(code string) {
	m.RequestErrors.WithLabelValues(code).Inc()
}

// ObserveDecode records how long a decode took and how many rows it produced
func (m *Metrics) ObserveDecode(seconds float64, rows int) {
	m.DecodeDuration.Observe(seconds)
	m.RowsDecoded.Observe(float64(rows))
}
