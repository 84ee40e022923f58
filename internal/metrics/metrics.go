package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "omnipos_stock"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type Metrics struct {
	OperationTotal *prometheus.CounterVec
	ImportedLines  prometheus.Counter
	ImportLatency  prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewMetrics registers the inventory metrics on a fresh registry, so several
// instances can live in one process (tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return &Metrics{
		OperationTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of inventory operations",
			},
			[]string{"operation", "status"}, // operation: add/remove/correct/import
		),
		ImportedLines: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "imported_lines_total",
				Help:      "Batch lines applied by committed imports",
			},
		),
		ImportLatency: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "import_duration_seconds",
				Help:      "Duration of batch imports in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		gatherer: reg,
	}
}

// ObserveOperation counts one operation outcome. A nil *Metrics is a no-op.
func (m *Metrics) ObserveOperation(operation string, err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.OperationTotal.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) ObserveImport(lines int, started time.Time) {
	if m == nil {
		return
	}
	m.ImportedLines.Add(float64(lines))
	m.ImportLatency.Observe(time.Since(started).Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
