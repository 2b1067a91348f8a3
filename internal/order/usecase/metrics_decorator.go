package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/slimtrack/internal/metrics"
	orderDomain "github.com/allisson/slimtrack/internal/order/domain"
)

const metricsDomain = "orders"

// orderUseCaseWithMetrics decorates OrderUseCase with metrics instrumentation.
type orderUseCaseWithMetrics struct {
	next    OrderUseCase
	metrics metrics.BusinessMetrics
}

// NewOrderUseCaseWithMetrics wraps an OrderUseCase with metrics recording.
func NewOrderUseCaseWithMetrics(useCase OrderUseCase, m metrics.BusinessMetrics) OrderUseCase {
	return &orderUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (o *orderUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	o.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	o.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// Create records metrics for order creation.
func (o *orderUseCaseWithMetrics) Create(ctx context.Context, description string) (*orderDomain.Order, error) {
	start := time.Now()
	order, err := o.next.Create(ctx, description)
	o.record(ctx, "order_create", start, err)
	return order, err
}

// Get records metrics for order retrieval.
func (o *orderUseCaseWithMetrics) Get(ctx context.Context, orderID uuid.UUID) (*orderDomain.Order, error) {
	start := time.Now()
	order, err := o.next.Get(ctx, orderID)
	o.record(ctx, "order_get", start, err)
	return order, err
}

// List records metrics for order listing.
func (o *orderUseCaseWithMetrics) List(
	ctx context.Context,
	filter orderDomain.ListFilter,
) ([]*orderDomain.Order, int64, error) {
	start := time.Now()
	orders, total, err := o.next.List(ctx, filter)
	o.record(ctx, "order_list", start, err)
	return orders, total, err
}

// ListEvents records metrics for audit trail retrieval.
func (o *orderUseCaseWithMetrics) ListEvents(
	ctx context.Context,
	orderID uuid.UUID,
) ([]*orderDomain.OrderEvent, error) {
	start := time.Now()
	events, err := o.next.ListEvents(ctx, orderID)
	o.record(ctx, "order_list_events", start, err)
	return events, err
}

// Cancel records metrics for order cancellation.
func (o *orderUseCaseWithMetrics) Cancel(
	ctx context.Context,
	orderID uuid.UUID,
	reason string,
) (*orderDomain.Order, error) {
	start := time.Now()
	order, err := o.next.Cancel(ctx, orderID, reason)
	o.record(ctx, "order_cancel", start, err)
	return order, err
}

// Advance records metrics per stage. A lost race is recorded as "skipped".
func (o *orderUseCaseWithMetrics) Advance(
	ctx context.Context,
	orderID uuid.UUID,
	stage orderDomain.Stage,
) (bool, error) {
	start := time.Now()
	applied, err := o.next.Advance(ctx, orderID, stage)

	status := "success"
	switch {
	case err != nil:
		status = "error"
	case !applied:
		status = "skipped"
	}

	operation := "stage_" + stage.Name
	o.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	o.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)

	return applied, err
}
