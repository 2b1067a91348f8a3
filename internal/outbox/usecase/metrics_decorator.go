package usecase

import (
	"context"
	"time"

	"github.com/allisson/slimtrack/internal/metrics"
	"github.com/allisson/slimtrack/internal/outbox/domain"
)

// outboxUseCaseWithMetrics decorates OutboxUseCase with metrics instrumentation.
// Per-message relay outcomes are recorded by the relay itself.
type outboxUseCaseWithMetrics struct {
	next    OutboxUseCase
	metrics metrics.BusinessMetrics
}

// NewOutboxUseCaseWithMetrics wraps an OutboxUseCase with metrics recording.
func NewOutboxUseCaseWithMetrics(useCase OutboxUseCase, m metrics.BusinessMetrics) OutboxUseCase {
	return &outboxUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (o *outboxUseCaseWithMetrics) Start(ctx context.Context) error {
	return o.next.Start(ctx)
}

func (o *outboxUseCaseWithMetrics) ProcessBatch(ctx context.Context) (int, error) {
	return o.next.ProcessBatch(ctx)
}

func (o *outboxUseCaseWithMetrics) List(
	ctx context.Context,
	filter domain.ListFilter,
) ([]*domain.OutboxMessage, int64, error) {
	start := time.Now()
	messages, total, err := o.next.List(ctx, filter)
	o.record(ctx, "outbox_list", start, err)
	return messages, total, err
}

func (o *outboxUseCaseWithMetrics) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := o.next.DeleteOlderThan(ctx, days, dryRun)
	o.record(ctx, "outbox_delete", start, err)
	return count, err
}

func (o *outboxUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	o.metrics.RecordOperation(ctx, "outbox", operation, status)
	o.metrics.RecordDuration(ctx, "outbox", operation, time.Since(start), status)
}
