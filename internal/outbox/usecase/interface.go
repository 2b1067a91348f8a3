// Package usecase relays outbox messages to the broker and keeps the table pruned.
package usecase

import (
	"context"
	"time"

	"github.com/allisson/slimtrack/internal/outbox/domain"
)

// OutboxRepository defines the outbox persistence operations used by the relay.
type OutboxRepository interface {
	// GetPending locks up to limit unpublished rows with retry_count below maxRetries.
	GetPending(ctx context.Context, limit, maxRetries int) ([]*domain.OutboxMessage, error)
	Update(ctx context.Context, msg *domain.OutboxMessage) error
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.OutboxMessage, error)
	Count(ctx context.Context, published *bool) (int64, error)
	DeletePublishedBefore(ctx context.Context, before time.Time) (int64, error)
	CountPublishedBefore(ctx context.Context, before time.Time) (int64, error)
}

// Publisher sends an already encoded body to the broker.
type Publisher interface {
	PublishRaw(ctx context.Context, exchange, routingKey string, body []byte) error
}

// OutboxUseCase defines the outbox relay and housekeeping operations.
type OutboxUseCase interface {
	// Start runs the relay loop until ctx is cancelled.
	Start(ctx context.Context) error
	// ProcessBatch publishes one batch of pending messages and returns how many were published.
	ProcessBatch(ctx context.Context) (int, error)
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.OutboxMessage, int64, error)
	// DeleteOlderThan removes published rows older than days. With dryRun it only counts them.
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)
}
