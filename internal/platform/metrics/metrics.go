package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the consent platform server.
type Metrics struct {
	EndpointLatency   *prometheus.HistogramVec
	AuthFailures      prometheus.Counter
	ThrottledRequests prometheus.Counter

	// Consent read metrics
	StatusLookups       prometheus.Counter
	ConsentCheckPassed  *prometheus.CounterVec
	ConsentCheckFailed  *prometheus.CounterVec
	PurposeCatalogReads prometheus.Counter
}

// New registers and returns the platform metrics collectors.
// Call once per process; promauto registers into the default registry.
func New() *Metrics {
	return &Metrics{
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assent_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "assent_auth_failures_total",
			Help: "Total number of rejected API key authentications",
		}),
		ThrottledRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "assent_throttled_requests_total",
			Help: "Total number of requests rejected by the rate limiter",
		}),
		StatusLookups: promauto.NewCounter(prometheus.CounterOpts{
			Name: "assent_consent_status_lookups_total",
			Help: "Total number of consent status lookups",
		}),
		ConsentCheckPassed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "assent_consent_checks_passed_total",
			Help: "Total number of consent checks that passed, labeled by purpose",
		}, []string{"purpose"}),
		ConsentCheckFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "assent_consent_checks_failed_total",
			Help: "Total number of consent checks that failed, labeled by purpose",
		}, []string{"purpose"}),
		PurposeCatalogReads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "assent_purpose_catalog_reads_total",
			Help: "Total number of purpose catalog reads",
		}),
	}
}

// ObserveEndpointLatency records the latency for a given endpoint.
func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}

func (m *Metrics) IncrementAuthFailures() {
	m.AuthFailures.Inc()
}

func (m *Metrics) IncrementThrottledRequests() {
	m.ThrottledRequests.Inc()
}

func (m *Metrics) IncrementStatusLookups() {
	m.StatusLookups.Inc()
}

// IncrementConsentCheckPassed increments the consent check passed counter with purpose label.
func (m *Metrics) IncrementConsentCheckPassed(purpose string) {
	m.ConsentCheckPassed.WithLabelValues(purpose).Inc()
}

// IncrementConsentCheckFailed increments the consent check failed counter with purpose label.
func (m *Metrics) IncrementConsentCheckFailed(purpose string) {
	m.ConsentCheckFailed.WithLabelValues(purpose).Inc()
}

func (m *Metrics) IncrementPurposeCatalogReads() {
	m.PurposeCatalogReads.Inc()
}
