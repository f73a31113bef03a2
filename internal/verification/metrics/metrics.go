package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module.
type Metrics struct {
	// Vision subsystem call latency.
	VisionLatency prometheus.Histogram

	// Scoring outcomes by recommendation and status.
	Outcome *prometheus.CounterVec

	// Overall verification latency including the vision call.
	VerifyLatency prometheus.Histogram

	// Anomalous signal combinations flagged for review.
	Anomalies prometheus.Counter
}

// New creates a Metrics instance with all verification metrics registered.
func New() *Metrics {
	return &Metrics{
		VisionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veriface_vision_duration_seconds",
			Help:    "Duration of external vision subsystem calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		Outcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veriface_verification_outcomes_total",
			Help: "Total verification outcomes by recommendation and status",
		}, []string{"recommendation", "status"}),

		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veriface_verification_duration_seconds",
			Help:    "Duration of full verification including the vision call",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		Anomalies: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veriface_verification_anomalies_total",
			Help: "Total attempts flagged as anomalous signal combinations",
		}),
	}
}

// ObserveVisionLatency records the duration of one vision subsystem call.
func (m *Metrics) ObserveVisionLatency(d time.Duration) {
	if m != nil {
		m.VisionLatency.Observe(d.Seconds())
	}
}

// IncrementOutcome records a scoring outcome.
func (m *Metrics) IncrementOutcome(recommendation, status string) {
	if m != nil {
		m.Outcome.WithLabelValues(recommendation, status).Inc()
	}
}

// ObserveVerifyLatency records the total verification duration.
func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m != nil {
		m.VerifyLatency.Observe(d.Seconds())
	}
}

// IncrementAnomalies records one anomaly flag.
func (m *Metrics) IncrementAnomalies() {
	if m != nil {
		m.Anomalies.Inc()
	}
}
