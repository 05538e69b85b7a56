package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	ScoreRuns       *prometheus.CounterVec
	ScoreRows       prometheus.Counter
	ProjectionRuns  *prometheus.CounterVec
	DatasetLoads    *prometheus.CounterVec
	TableCache      *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPRequestTime *prometheus.HistogramVec
}

// NewMetrics creates the metrics and registers them with reg.
// A nil reg registers with the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		ScoreRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskboard_score_runs_total",
				Help: "Total number of risk scoring runs.",
			},
			[]string{"source"},
		),
		ScoreRows: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "riskboard_score_rows_total",
				Help: "Total number of records scored.",
			},
		),
		ProjectionRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskboard_projection_runs_total",
				Help: "Total number of cluster projections.",
			},
			[]string{"result"},
		),
		DatasetLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskboard_dataset_loads_total",
				Help: "Total number of CSV dataset loads.",
			},
			[]string{"result"},
		),
		TableCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskboard_table_cache_total",
				Help: "Loaded-table cache lookups.",
			},
			[]string{"result"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskboard_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "riskboard_http_request_duration_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// RecordScoreRun counts one scoring pass over rows records.
func (m *Metrics) RecordScoreRun(source string, rows int) {
	m.ScoreRuns.WithLabelValues(source).Inc()
	m.ScoreRows.Add(float64(rows))
}

// RecordProjection counts a projection by outcome: projected, skipped or demo.
func (m *Metrics) RecordProjection(result string) {
	m.ProjectionRuns.WithLabelValues(result).Inc()
}

// RecordDatasetLoad counts a CSV load.
func (m *Metrics) RecordDatasetLoad(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.DatasetLoads.WithLabelValues(result).Inc()
}

// RecordCacheAccess counts a table cache lookup.
func (m *Metrics) RecordCacheAccess(hit bool) {
	result := "hit"
	if !hit {
		result = "miss"
	}
	m.TableCache.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestTime.WithLabelValues(method, path).Observe(duration.Seconds())
}
