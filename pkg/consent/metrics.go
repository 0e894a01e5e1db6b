package consent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for client operations.
// Attach with WithMetrics; an unset metrics instance disables collection.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	BatchSize       prometheus.Histogram
}

// NewMetrics registers and returns client metrics collectors.
// Call once per process; promauto registers into the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		Requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "assent_client_requests_total",
			Help: "Total number of consent client operations, labeled by operation and outcome",
		}, []string{"operation", "outcome"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assent_client_request_duration_seconds",
			Help:    "Latency of consent client operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "assent_client_batch_size",
			Help:    "Distribution of batch consent check sizes",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),
	}
}

func (m *Metrics) IncrementRequests(operation, outcome string) {
	m.Requests.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ObserveRequestDuration(operation string, durationSeconds float64) {
	m.RequestDuration.WithLabelValues(operation).Observe(durationSeconds)
}

func (m *Metrics) ObserveBatchSize(count float64) {
	m.BatchSize.Observe(count)
}
