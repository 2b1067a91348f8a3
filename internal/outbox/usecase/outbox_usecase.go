package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/slimtrack/internal/database"
	apperrors "github.com/allisson/slimtrack/internal/errors"
	"github.com/allisson/slimtrack/internal/metrics"
	"github.com/allisson/slimtrack/internal/outbox/domain"
)

// Config holds outbox relay configuration.
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Exchange   string
}

type outboxUseCase struct {
	config     Config
	txManager  database.TxManager
	outboxRepo OutboxRepository
	publisher  Publisher
	metrics    metrics.BusinessMetrics
	logger     *slog.Logger
	now        func() time.Time
}

// Start polls the outbox every Interval. Batch failures are logged and retried on the next tick.
func (o *outboxUseCase) Start(ctx context.Context) error {
	o.logger.Info("starting outbox relay",
		slog.Duration("interval", o.config.Interval),
		slog.Int("batch_size", o.config.BatchSize),
		slog.Int("max_retries", o.config.MaxRetries),
	)

	ticker := time.NewTicker(o.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("stopping outbox relay")
			return ctx.Err()
		case <-ticker.C:
			if _, err := o.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
				o.logger.Error("failed to relay outbox batch", slog.Any("error", err))
			}
		}
	}
}

// ProcessBatch publishes pending messages inside one transaction so the row
// locks taken by GetPending are held until every row is updated.
func (o *outboxUseCase) ProcessBatch(ctx context.Context) (int, error) {
	published := 0

	err := o.txManager.WithTx(ctx, func(ctx context.Context) error {
		published = 0

		messages, err := o.outboxRepo.GetPending(ctx, o.config.BatchSize, o.config.MaxRetries)
		if err != nil {
			return err
		}
		if len(messages) == 0 {
			return nil
		}

		o.logger.Debug("relaying outbox messages", slog.Int("count", len(messages)))

		for _, msg := range messages {
			ok, err := o.relay(ctx, msg)
			if err != nil {
				return err
			}
			if ok {
				published++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return published, nil
}

// relay publishes msg and persists the outcome. The returned error is a storage
// failure; publish failures are recorded on the row.
func (o *outboxUseCase) relay(ctx context.Context, msg *domain.OutboxMessage) (bool, error) {
	pubErr := o.publisher.PublishRaw(ctx, o.config.Exchange, msg.EventType, []byte(msg.Payload))
	if pubErr == nil {
		msg.MarkPublished(o.now().UTC())
		if err := o.outboxRepo.Update(ctx, msg); err != nil {
			return false, err
		}
		o.metrics.RecordOutboxPublish(ctx, msg.EventType, metrics.OutboxPublished)
		return true, nil
	}

	msg.MarkFailed(pubErr)
	if err := o.outboxRepo.Update(ctx, msg); err != nil {
		return false, err
	}

	logger := o.logger.With(
		slog.String("outbox_id", msg.ID.String()),
		slog.String("event_type", msg.EventType),
		slog.Int("retry_count", msg.RetryCount),
	)

	if msg.Exhausted(o.config.MaxRetries) {
		logger.Warn("outbox message reached retry limit and will not be relayed again",
			slog.Any("error", pubErr))
		o.metrics.RecordOutboxPublish(ctx, msg.EventType, metrics.OutboxExhausted)
		return false, nil
	}

	logger.Error("failed to publish outbox message", slog.Any("error", pubErr))
	o.metrics.RecordOutboxPublish(ctx, msg.EventType, metrics.OutboxFailed)
	return false, nil
}

// List returns a page of outbox rows and the number of rows matching the filter.
func (o *outboxUseCase) List(
	ctx context.Context,
	filter domain.ListFilter,
) ([]*domain.OutboxMessage, int64, error) {
	messages, err := o.outboxRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := o.outboxRepo.Count(ctx, filter.Published)
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (o *outboxUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must be zero or greater")
	}

	before := o.now().UTC().AddDate(0, 0, -days)
	if dryRun {
		return o.outboxRepo.CountPublishedBefore(ctx, before)
	}
	return o.outboxRepo.DeletePublishedBefore(ctx, before)
}

// NewOutboxUseCase creates a new OutboxUseCase.
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxRepository,
	publisher Publisher,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) OutboxUseCase {
	return &outboxUseCase{
		config:     config,
		txManager:  txManager,
		outboxRepo: outboxRepo,
		publisher:  publisher,
		metrics:    businessMetrics,
		logger:     logger.With(slog.String("component", "outbox_relay")),
		now:        time.Now,
	}
}
