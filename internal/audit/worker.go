package audit

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Producer is the transport the worker publishes through. The kafka package
// provides the real one; tests substitute an in-memory recorder.
type Producer interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Worker drains the mirror inbox and publishes each record. Publish failures
// are logged and counted, not retried; the canonical trail lives in the case.
type Worker struct {
	inbox    <-chan Record
	producer Producer
	logger   *slog.Logger
	metrics  *Metrics
}

func NewWorker(inbox <-chan Record, producer Producer, logger *slog.Logger, metrics *Metrics) *Worker {
	return &Worker{inbox: inbox, producer: producer, logger: logger, metrics: metrics}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case record := <-w.inbox:
			payload, err := json.Marshal(record)
			if err != nil {
				w.logger.ErrorContext(ctx, "marshal audit record", "case_id", record.CaseID, "error", err)
				continue
			}
			if err := w.producer.Publish(ctx, record.CaseID, payload); err != nil {
				w.metrics.IncPublishFailures()
				w.logger.ErrorContext(ctx, "publish audit record",
					"case_id", record.CaseID,
					"event", record.Entry.Event,
					"error", err,
				)
				continue
			}
			w.metrics.IncPublished()
		}
	}
}
