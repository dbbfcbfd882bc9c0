package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for eligibility evaluation.
type Metrics struct {
	Decisions *prometheus.CounterVec
	Latency   prometheus.Histogram
}

// New creates and registers all eligibility metrics.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "giggate_eligibility_decisions_total",
			Help: "Eligibility decisions rendered, by reason",
		}, []string{"reason"}),
		Latency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "giggate_eligibility_duration_seconds",
			Help:    "Duration of a full eligibility evaluation including oracle fetch",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) IncrementDecisions(reason string) {
	if m != nil {
		m.Decisions.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) ObserveLatency(d time.Duration) {
	if m != nil {
		m.Latency.Observe(d.Seconds())
	}
}
