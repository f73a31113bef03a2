package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the decision workflow.
type Metrics struct {
	// Finalizations by final action.
	Finalized *prometheus.CounterVec

	// Rejected finalize calls (write-once conflicts, failed attempts).
	Conflicts prometheus.Counter

	// Finalize latency including the audit append.
	FinalizeLatency prometheus.Histogram
}

// New creates a Metrics instance with all workflow metrics registered.
func New() *Metrics {
	return &Metrics{
		Finalized: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veriface_decisions_finalized_total",
			Help: "Total finalized decisions by final action",
		}, []string{"action"}),

		Conflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veriface_decision_conflicts_total",
			Help: "Total finalize calls rejected by the write-once state machine",
		}),

		FinalizeLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veriface_decision_finalize_duration_seconds",
			Help:    "Duration of finalize including the audit append",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementFinalized records a successful finalization.
func (m *Metrics) IncrementFinalized(action string) {
	if m != nil {
		m.Finalized.WithLabelValues(action).Inc()
	}
}

// IncrementConflicts records a rejected finalize call.
func (m *Metrics) IncrementConflicts() {
	if m != nil {
		m.Conflicts.Inc()
	}
}

// ObserveFinalizeLatency records the finalize duration.
func (m *Metrics) ObserveFinalizeLatency(d time.Duration) {
	if m != nil {
		m.FinalizeLatency.Observe(d.Seconds())
	}
}
