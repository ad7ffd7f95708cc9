// Package metrics holds the Prometheus collectors for the transition engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the engine's collectors. Outcome is "ok" or the short name
// of the sentinel error that aborted the transition.
type Metrics struct {
	Transitions  *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	AccountsOpen prometheus.Gauge
}

// New registers the collectors against reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_transitions_total",
			Help: "Transitions processed, by opcode and outcome.",
		}, []string{"op", "outcome"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tally_transition_duration_seconds",
			Help:    "Transition latency, by opcode.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		AccountsOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tally_accounts_open",
			Help: "Net count of accounts created minus accounts closed.",
		}),
	}
}
