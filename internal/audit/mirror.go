// Package audit mirrors the per-case audit trail to an external sink for
// operational visibility. The trail stored inside each case remains the
// canonical record; the mirror is best effort and must never block or fail a
// case mutation.
package audit

import (
	"log/slog"

	"meldeflow/internal/domain"
)

// Record is the envelope published to the mirror topic.
type Record struct {
	CaseID string            `json:"case_id"`
	Entry  domain.AuditEntry `json:"entry"`
}

// Mirror accepts entries from the case store and hands them to the worker
// through a bounded channel. When the buffer is full the entry is dropped and
// counted; case processing is never delayed by a slow broker.
type Mirror struct {
	ch      chan Record
	logger  *slog.Logger
	metrics *Metrics
}

func NewMirror(buffer int, logger *slog.Logger, metrics *Metrics) *Mirror {
	if buffer <= 0 {
		buffer = 256
	}
	return &Mirror{
		ch:      make(chan Record, buffer),
		logger:  logger,
		metrics: metrics,
	}
}

// Publish enqueues one entry. Non-blocking by design.
func (m *Mirror) Publish(caseID string, entry domain.AuditEntry) {
	select {
	case m.ch <- Record{CaseID: caseID, Entry: entry}:
		m.metrics.IncEnqueued()
	default:
		m.metrics.IncDropped()
		m.logger.Warn("audit mirror buffer full, dropping entry",
			"case_id", caseID,
			"event", entry.Event,
		)
	}
}

// Records exposes the inbox for the worker.
func (m *Mirror) Records() <-chan Record {
	return m.ch
}
