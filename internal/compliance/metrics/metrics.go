package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the compliance engine.
type Metrics struct {
	// Evaluation outcomes by aggregate status
	Outcomes *prometheus.CounterVec

	// Single-person evaluation latency
	EvaluateLatency prometheus.Histogram

	// Full revalidation sweep latency
	SweepLatency prometheus.Histogram
}

// New creates a new Metrics instance with all compliance metrics registered.
func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "siteguard_compliance_outcomes_total",
			Help: "Total compliance evaluation outcomes by status",
		}, []string{"status"}), // status: "valid", "warning", "expired"

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "siteguard_compliance_evaluate_duration_seconds",
			Help:    "Duration of a single person compliance evaluation",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),

		SweepLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "siteguard_compliance_sweep_duration_seconds",
			Help:    "Duration of a full revalidation sweep across active persons",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// IncrementOutcome records an evaluation outcome.
func (m *Metrics) IncrementOutcome(status string) {
	if m != nil {
		m.Outcomes.WithLabelValues(status).Inc()
	}
}

// ObserveEvaluateLatency records the duration of a single evaluation.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// ObserveSweepLatency records the duration of a revalidation sweep.
func (m *Metrics) ObserveSweepLatency(d time.Duration) {
	if m != nil {
		m.SweepLatency.Observe(d.Seconds())
	}
}
