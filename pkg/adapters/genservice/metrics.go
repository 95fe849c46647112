package genservice

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	Requests *prometheus.CounterVec
	Upstream *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg (skipped when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textfill_service_requests_total",
				Help: "Generation requests by response status code",
			},
			[]string{"code"},
		),
		Upstream: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "textfill_upstream_duration_seconds",
				Help:    "Duration of upstream model calls",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
			},
			[]string{"model"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.Upstream)
	}
	return m
}

func (m *Metrics) request(code int) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(strconv.Itoa(code)).Inc()
}

func (m *Metrics) upstream(model string, d time.Duration) {
	if m == nil {
		return
	}
	m.Upstream.WithLabelValues(model).Observe(d.Seconds())
}
