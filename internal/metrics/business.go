package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Message outcomes recorded by stage workers.
const (
	OutcomeAck     = "ack"
	OutcomeReject  = "reject"
	OutcomeRequeue = "requeue"
)

// Outbox publish results recorded by the relay.
const (
	OutboxPublished = "published"
	OutboxFailed    = "failed"
	OutboxExhausted = "exhausted"
)

// durationBuckets spans fast API calls up to a stage step that includes its
// simulated delay of several seconds.
var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 7.5, 10, 30}

// BusinessMetrics records order pipeline metrics.
type BusinessMetrics interface {
	// RecordOperation counts a use case call. domain is "orders" or "outbox",
	// operation names the call (order_create, stage_transit, outbox_relay) and
	// status is "success" or "error".
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration observes how long a use case call took.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordMessage counts how a stage worker settled a delivery from queue.
	RecordMessage(ctx context.Context, queue, outcome string)

	// RecordOutboxPublish counts the result of relaying one outbox row.
	RecordOutboxPublish(ctx context.Context, eventType, result string)
}

type businessMetrics struct {
	operations metric.Int64Counter
	durations  metric.Float64Histogram
	messages   metric.Int64Counter
	outbox     metric.Int64Counter
}

// NewBusinessMetrics registers the pipeline instruments on meterProvider. Every
// instrument name is prefixed with namespace, e.g. slimtrack_messages_total.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)
	name := func(suffix string) string { return namespace + "_" + suffix }

	var (
		b   businessMetrics
		err error
	)

	if b.operations, err = meter.Int64Counter(name("operations_total"),
		metric.WithDescription("Use case calls by domain, operation and status"),
		metric.WithUnit("{operation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	if b.durations, err = meter.Float64Histogram(name("operation_duration_seconds"),
		metric.WithDescription("Use case call latency, stage delays included"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	if b.messages, err = meter.Int64Counter(name("messages_total"),
		metric.WithDescription("Broker deliveries settled by stage workers, by queue and outcome"),
		metric.WithUnit("{message}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create message counter: %w", err)
	}

	if b.outbox, err = meter.Int64Counter(name("outbox_publish_total"),
		metric.WithDescription("Outbox rows relayed to the broker, by event type and result"),
		metric.WithUnit("{message}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create outbox counter: %w", err)
	}

	return &b, nil
}

func operationAttrs(domain, operation, status string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operations.Add(ctx, 1, operationAttrs(domain, operation, status))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durations.Record(ctx, duration.Seconds(), operationAttrs(domain, operation, status))
}

func (b *businessMetrics) RecordMessage(ctx context.Context, queue, outcome string) {
	b.messages.Add(ctx, 1, metric.WithAttributes(
		attribute.String("queue", queue),
		attribute.String("outcome", outcome),
	))
}

func (b *businessMetrics) RecordOutboxPublish(ctx context.Context, eventType, result string) {
	b.outbox.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("result", result),
	))
}

// NoOpBusinessMetrics discards everything. The container hands it out when
// METRICS_ENABLED is false.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics returns a recorder that discards everything.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (*NoOpBusinessMetrics) RecordOperation(context.Context, string, string, string) {}

func (*NoOpBusinessMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {}

func (*NoOpBusinessMetrics) RecordMessage(context.Context, string, string) {}

func (*NoOpBusinessMetrics) RecordOutboxPublish(context.Context, string, string) {}
