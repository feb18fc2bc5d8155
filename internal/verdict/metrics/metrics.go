package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verdict module.
type Metrics struct {
	VerdictsSaved    *prometheus.CounterVec
	VerdictsImported prometheus.Counter
	Exports          prometheus.Counter
}

// New creates a new Metrics instance with all verdict module metrics
// registered. Call once at startup.
func New() *Metrics {
	return &Metrics{
		VerdictsSaved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "citadel_verdicts_saved_total",
			Help: "Total number of verdict saves by category",
		}, []string{"verdict"}),
		VerdictsImported: promauto.NewCounter(prometheus.CounterOpts{
			Name: "citadel_verdicts_imported_total",
			Help: "Total number of verdict entries applied via import",
		}),
		Exports: promauto.NewCounter(prometheus.CounterOpts{
			Name: "citadel_exports_total",
			Help: "Total number of export documents produced",
		}),
	}
}

// IncrementSaved records one verdict save.
func (m *Metrics) IncrementSaved(verdict string) {
	m.VerdictsSaved.WithLabelValues(verdict).Inc()
}

// AddImported records n entries applied by one import.
func (m *Metrics) AddImported(n int) {
	m.VerdictsImported.Add(float64(n))
}

// IncrementExports records one export.
func (m *Metrics) IncrementExports() {
	m.Exports.Inc()
}
