package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/slimtrack/internal/errors"
)

// Routing keys published on the orders exchange.
const (
	RoutingKeyOrderCreated        = "order.created"
	RoutingKeyOrderProcessing     = "order.processing"
	RoutingKeyOrderInTransit      = "order.in_transit"
	RoutingKeyOrderOutForDelivery = "order.out_for_delivery"
	RoutingKeyOrderDelivered      = "order.delivered"
	RoutingKeyOrderCancelled      = "order.cancelled"
)

// OrderCreatedEvent is published once an order is accepted.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID `json:"orderId"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OrderStatusChangedEvent is published after every successful transition past Received.
type OrderStatusChangedEvent struct {
	OrderID   uuid.UUID `json:"orderId"`
	OldStatus Status    `json:"oldStatus"`
	NewStatus Status    `json:"newStatus"`
	Message   string    `json:"message"`
	ChangedAt time.Time `json:"changedAt"`
}

// NewOrderCreatedEvent builds the creation event for an order.
func NewOrderCreatedEvent(order *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:     order.ID,
		Description: order.Description,
		Status:      order.CurrentStatus,
		CreatedAt:   order.CreatedAt,
	}
}

// orderRef is the subset shared by every pipeline payload.
type orderRef struct {
	OrderID uuid.UUID `json:"orderId"`
}

// DecodeOrderID extracts the order id from an OrderCreatedEvent or
// OrderStatusChangedEvent body. Unparseable bodies and a missing id
// are reported as errors.ErrMalformedMessage.
func DecodeOrderID(body []byte) (uuid.UUID, error) {
	var ref orderRef
	if err := json.Unmarshal(body, &ref); err != nil {
		return uuid.Nil, errors.Wrap(errors.ErrMalformedMessage, err.Error())
	}
	if ref.OrderID == uuid.Nil {
		return uuid.Nil, errors.Wrap(errors.ErrMalformedMessage, "orderId is missing")
	}
	return ref.OrderID, nil
}
