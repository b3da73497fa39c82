package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds case lifecycle counters.
type Metrics struct {
	casesCreated  prometheus.Counter
	hitlOverrides prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		casesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meldeflow_cases_created_total",
			Help: "Total number of address-change cases created.",
		}),
		hitlOverrides: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meldeflow_hitl_overrides_total",
			Help: "Total number of human override resolutions applied.",
		}),
	}
}

func (m *Metrics) IncCasesCreated() {
	if m != nil {
		m.casesCreated.Inc()
	}
}

func (m *Metrics) IncHITLOverrides() {
	if m != nil {
		m.hitlOverrides.Inc()
	}
}
