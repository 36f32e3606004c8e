// Package metrics exposes Prometheus instrumentation for the faucet.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RateLimitDenials  *prometheus.CounterVec
	BroadcastDuration prometheus.Histogram
}

// New creates the faucet metric set and registers it with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "faucet_requests_total",
				Help: "Dispense requests by outcome",
			},
			[]string{"outcome"},
		),
		RateLimitDenials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "faucet_rate_limit_denials_total",
				Help: "Admission denials by reason",
			},
			[]string{"reason"},
		),
		BroadcastDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "faucet_broadcast_duration_seconds",
				Help:    "Broadcast round-trip duration",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(m.RequestsTotal, m.RateLimitDenials, m.BroadcastDuration)
	return m
}
