package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the gig registry.
type Metrics struct {
	Created     prometheus.Counter
	Deactivated prometheus.Counter
	ListLatency prometheus.Histogram
}

// New creates and registers all gig registry metrics.
func New() *Metrics {
	return &Metrics{
		Created: promauto.NewCounter(prometheus.CounterOpts{
			Name: "giggate_gigs_created_total",
			Help: "Total number of gigs created",
		}),
		Deactivated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "giggate_gigs_deactivated_total",
			Help: "Total number of gigs deactivated",
		}),
		ListLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "giggate_gig_list_duration_seconds",
			Help:    "Duration of active gig listing including filtering",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	if m != nil {
		m.Created.Inc()
	}
}

func (m *Metrics) IncrementDeactivated() {
	if m != nil {
		m.Deactivated.Inc()
	}
}

func (m *Metrics) ObserveListLatency(d time.Duration) {
	if m != nil {
		m.ListLatency.Observe(d.Seconds())
	}
}
