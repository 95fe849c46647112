package fill

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the orchestrator's Prometheus collectors.
type Metrics struct {
	Invocations *prometheus.CounterVec
	Generation  prometheus.Histogram
	Filled      prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg (skipped when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textfill_invocations_total",
				Help: "Fill invocations by terminal outcome",
			},
			[]string{"outcome"},
		),
		Generation: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "textfill_generation_duration_seconds",
				Help:    "Duration of generation service calls",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
			},
		),
		Filled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "textfill_elements_filled_total",
				Help: "Text layers written",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Invocations, m.Generation, m.Filled)
	}
	return m
}

func (m *Metrics) observeGeneration(d time.Duration) {
	if m == nil {
		return
	}
	m.Generation.Observe(d.Seconds())
}

func (m *Metrics) finish(outcome string, applied int) {
	if m == nil {
		return
	}
	m.Invocations.WithLabelValues(outcome).Inc()
	m.Filled.Add(float64(applied))
}
