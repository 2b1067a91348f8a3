// Package domain defines the order aggregate, its audit trail and the messages
// exchanged between pipeline stages.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/slimtrack/internal/errors"
)

// Length bounds, in characters.
const (
	MaxDescriptionLength  = 500
	MaxCancelReasonLength = 500
)

// Order is the aggregate root tracked through the fulfillment pipeline.
// CurrentStatus only changes through a conditional status update in the store.
type Order struct {
	ID            uuid.UUID
	Description   string
	CurrentStatus Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderEvent is one append-only audit record, written once per successful transition.
type OrderEvent struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Status    Status
	Message   string
	Metadata  *string
	Timestamp time.Time
}

// ListFilter selects a page of orders, newest first. A nil Status matches every status.
type ListFilter struct {
	Status *Status
	Offset int
	Limit  int
}

// NewOrderEvent builds an event for the given order and status stamped with the current time.
func NewOrderEvent(orderID uuid.UUID, status Status, message string) *OrderEvent {
	return &OrderEvent{
		ID:        uuid.Must(uuid.NewV7()),
		OrderID:   orderID,
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// Domain-specific errors for order operations.
var (
	// ErrOrderNotFound indicates the requested order does not exist.
	ErrOrderNotFound = errors.Wrap(errors.ErrNotFound, "order not found")

	// ErrOrderNotCancellable indicates the order already reached a terminal status
	// or was advanced concurrently.
	ErrOrderNotCancellable = errors.Wrap(errors.ErrConflict, "order cannot be cancelled")

	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = errors.Wrap(errors.ErrInvalidInput, "invalid order status")
)
