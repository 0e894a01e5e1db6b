package guard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for guard decisions.
type Metrics struct {
	Decisions *prometheus.CounterVec
}

// NewMetrics registers and returns guard metrics collectors.
// Call once per process; promauto registers into the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "assent_guard_decisions_total",
			Help: "Total number of consent guard decisions, labeled by purpose and outcome",
		}, []string{"purpose", "outcome"}),
	}
}

func (m *Metrics) IncrementDecisions(purpose, outcome string) {
	m.Decisions.WithLabelValues(purpose, outcome).Inc()
}
