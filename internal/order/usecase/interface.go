// Package usecase implements the order lifecycle: creation, queries, cancellation
// and the transactional step every pipeline stage performs. Each state change is
// written together with its audit event and outbox message in one transaction.
package usecase

import (
	"context"

	"github.com/google/uuid"

	orderDomain "github.com/allisson/slimtrack/internal/order/domain"
	outboxDomain "github.com/allisson/slimtrack/internal/outbox/domain"
)

// OrderRepository defines the interface for Order persistence operations.
type OrderRepository interface {
	Create(ctx context.Context, order *orderDomain.Order) error
	GetByID(ctx context.Context, orderID uuid.UUID) (*orderDomain.Order, error)
	List(ctx context.Context, filter orderDomain.ListFilter) ([]*orderDomain.Order, error)
	Count(ctx context.Context, status *orderDomain.Status) (int64, error)
	// UpdateStatusIfEquals returns the number of rows moved from expected to next (0 or 1).
	UpdateStatusIfEquals(ctx context.Context, orderID uuid.UUID, expected, next orderDomain.Status) (int64, error)
}

// OrderEventRepository defines the interface for the append-only audit trail.
type OrderEventRepository interface {
	Create(ctx context.Context, event *orderDomain.OrderEvent) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*orderDomain.OrderEvent, error)
}

// OutboxWriter stores messages for the relay to publish.
type OutboxWriter interface {
	Create(ctx context.Context, msg *outboxDomain.OutboxMessage) error
}

// OrderUseCase defines the order business operations.
type OrderUseCase interface {
	Create(ctx context.Context, description string) (*orderDomain.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*orderDomain.Order, error)
	List(ctx context.Context, filter orderDomain.ListFilter) ([]*orderDomain.Order, int64, error)
	ListEvents(ctx context.Context, orderID uuid.UUID) ([]*orderDomain.OrderEvent, error)
	Cancel(ctx context.Context, orderID uuid.UUID, reason string) (*orderDomain.Order, error)
	// Advance applies stage to the order. It returns false without writing anything
	// when the order is no longer at the stage precondition.
	Advance(ctx context.Context, orderID uuid.UUID, stage orderDomain.Stage) (bool, error)
}
