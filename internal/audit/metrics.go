package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks mirror throughput and loss.
type Metrics struct {
	enqueued        prometheus.Counter
	dropped         prometheus.Counter
	published       prometheus.Counter
	publishFailures prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		enqueued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meldeflow_audit_mirror_enqueued_total",
			Help: "Audit entries accepted into the mirror buffer.",
		}),
		dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meldeflow_audit_mirror_dropped_total",
			Help: "Audit entries dropped because the mirror buffer was full.",
		}),
		published: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meldeflow_audit_mirror_published_total",
			Help: "Audit entries successfully published to the mirror topic.",
		}),
		publishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meldeflow_audit_mirror_publish_failures_total",
			Help: "Audit entries that failed to publish to the mirror topic.",
		}),
	}
}

func (m *Metrics) IncEnqueued() {
	if m != nil {
		m.enqueued.Inc()
	}
}

func (m *Metrics) IncDropped() {
	if m != nil {
		m.dropped.Inc()
	}
}

func (m *Metrics) IncPublished() {
	if m != nil {
		m.published.Inc()
	}
}

func (m *Metrics) IncPublishFailures() {
	if m != nil {
		m.publishFailures.Inc()
	}
}
