package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks workflow step execution.
type Metrics struct {
	steps        *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	hitlRequired *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		steps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "meldeflow_workflow_steps_total",
			Help: "Workflow step invocations by step and resulting status.",
		}, []string{"step", "status"}),
		stepDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meldeflow_workflow_step_duration_seconds",
			Help:    "Workflow step latency by step.",
			Buckets: prometheus.DefBuckets,
		}, []string{"step"}),
		hitlRequired: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "meldeflow_workflow_hitl_required_total",
			Help: "Steps that paused for human review, by step.",
		}, []string{"step"}),
	}
}

func (m *Metrics) ObserveStep(step, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.steps.WithLabelValues(step, status).Inc()
	m.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

func (m *Metrics) IncHITLRequired(step string) {
	if m != nil {
		m.hitlRequired.WithLabelValues(step).Inc()
	}
}
