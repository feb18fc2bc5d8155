// Package metrics exposes Prometheus counters for review sessions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Logins  prometheus.Counter
	Logouts prometheus.Counter
	Actions *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "citadel_review_logins_total",
			Help: "Number of review sessions started",
		}),
		Logouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "citadel_review_logouts_total",
			Help: "Number of explicit logouts",
		}),
		Actions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "citadel_review_actions_total",
			Help: "Navigation and save actions by type",
		}, []string{"action"}),
	}
}

func (m *Metrics) IncrementLogins() {
	if m == nil {
		return
	}
	m.Logins.Inc()
}

func (m *Metrics) IncrementLogouts() {
	if m == nil {
		return
	}
	m.Logouts.Inc()
}

func (m *Metrics) IncrementAction(action string) {
	if m == nil {
		return
	}
	m.Actions.WithLabelValues(action).Inc()
}
