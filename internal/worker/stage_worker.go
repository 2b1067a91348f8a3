// Package worker runs the pipeline stage consumers and supervises them together
// with the outbox relay.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/slimtrack/internal/errors"
	"github.com/allisson/slimtrack/internal/messaging"
	"github.com/allisson/slimtrack/internal/metrics"
	orderDomain "github.com/allisson/slimtrack/internal/order/domain"
	orderUseCase "github.com/allisson/slimtrack/internal/order/usecase"
)

// MessageConsumer delivers message bodies of a subscription to a handler until ctx ends.
type MessageConsumer interface {
	Consume(ctx context.Context, sub messaging.Subscription, handler messaging.Handler) error
}

// Config holds stage worker configuration.
type Config struct {
	Exchange     string
	Prefetch     int
	DelayEnabled bool
}

// StageWorker advances orders through one pipeline stage. Any number of replicas
// may consume the same queue: the conditional status update decides the winner.
type StageWorker struct {
	stage    orderDomain.Stage
	config   Config
	orders   orderUseCase.OrderUseCase
	consumer MessageConsumer
	metrics  metrics.BusinessMetrics
	logger   *slog.Logger
}

// NewStageWorker creates a StageWorker for stage.
func NewStageWorker(
	stage orderDomain.Stage,
	config Config,
	orders orderUseCase.OrderUseCase,
	consumer MessageConsumer,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *StageWorker {
	return &StageWorker{
		stage:    stage,
		config:   config,
		orders:   orders,
		consumer: consumer,
		metrics:  businessMetrics,
		logger: logger.With(
			slog.String("component", "stage_worker"),
			slog.String("stage", stage.Name),
			slog.String("queue", stage.Queue),
		),
	}
}

// Name returns the stage name.
func (w *StageWorker) Name() string {
	return w.stage.Name
}

// Run consumes the stage queue until ctx is cancelled.
func (w *StageWorker) Run(ctx context.Context) error {
	sub := messaging.Subscription{
		Exchange:    w.config.Exchange,
		Queue:       w.stage.Queue,
		RoutingKey:  w.stage.IncomingKey,
		Prefetch:    w.config.Prefetch,
		ConsumerTag: "slimtrack-" + w.stage.Name + "-" + uuid.NewString(),
	}
	return w.consumer.Consume(ctx, sub, w.Handle)
}

// Handle processes one message and returns how it must be settled.
func (w *StageWorker) Handle(ctx context.Context, body []byte) messaging.Outcome {
	outcome := w.handle(ctx, body)
	w.metrics.RecordMessage(ctx, w.stage.Queue, outcome.String())
	return outcome
}

func (w *StageWorker) handle(ctx context.Context, body []byte) messaging.Outcome {
	orderID, err := orderDomain.DecodeOrderID(body)
	if err != nil {
		w.logger.Warn("rejecting undecodable message", slog.Any("error", err))
		return messaging.Reject
	}

	logger := w.logger.With(slog.String("order_id", orderID.String()))

	order, err := w.orders.Get(ctx, orderID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("rejecting message for unknown order")
			return messaging.Reject
		}
		logger.Error("failed to load order", slog.Any("error", err))
		return messaging.Requeue
	}

	if order.CurrentStatus != w.stage.Precondition {
		logger.Info("skipping message, order is not at stage precondition",
			slog.String("current_status", order.CurrentStatus.String()),
			slog.String("expected_status", w.stage.Precondition.String()),
		)
		return messaging.Ack
	}

	if !w.wait(ctx) {
		logger.Info("shutdown during stage delay, requeueing message")
		return messaging.Requeue
	}

	applied, err := w.orders.Advance(ctx, orderID, w.stage)
	if err != nil {
		logger.Error("failed to advance order", slog.Any("error", err))
		return messaging.Requeue
	}
	if !applied {
		logger.Info("order advanced concurrently, nothing to do")
		return messaging.Ack
	}

	logger.Info("order advanced",
		slog.String("from", w.stage.Precondition.String()),
		slog.String("to", w.stage.Target.String()),
	)
	return messaging.Ack
}

// wait sleeps for the stage delay. It returns false when ctx ends first.
func (w *StageWorker) wait(ctx context.Context) bool {
	if !w.config.DelayEnabled || w.stage.Delay <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(w.stage.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
