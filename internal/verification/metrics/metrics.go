package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification state machine.
type Metrics struct {
	Submissions *prometheus.CounterVec
	Decisions   *prometheus.CounterVec
	Withdrawals prometheus.Counter
	InFlight    prometheus.Gauge
}

// New creates and registers all verification metrics.
func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "giggate_verification_submissions_total",
			Help: "Verification requests submitted, by level",
		}, []string{"level"}),
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "giggate_verification_decisions_total",
			Help: "Verification decisions recorded, by outcome",
		}, []string{"outcome"}),
		Withdrawals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "giggate_verification_withdrawals_total",
			Help: "Verification requests withdrawn by their submitter",
		}),
		InFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "giggate_verification_in_flight",
			Help: "Decision requests dispatched to the center and not yet resolved",
		}),
	}
}

func (m *Metrics) IncrementSubmissions(level string) {
	if m != nil {
		m.Submissions.WithLabelValues(level).Inc()
	}
}

func (m *Metrics) IncrementDecisions(outcome string) {
	if m != nil {
		m.Decisions.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementWithdrawals() {
	if m != nil {
		m.Withdrawals.Inc()
	}
}

func (m *Metrics) IncInFlight() {
	if m != nil {
		m.InFlight.Inc()
	}
}

func (m *Metrics) DecInFlight() {
	if m != nil {
		m.InFlight.Dec()
	}
}
