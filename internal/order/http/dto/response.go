package dto

import (
	"encoding/json"
	"time"

	orderDomain "github.com/allisson/slimtrack/internal/order/domain"
)

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	CurrentStatus int       `json:"currentStatus"`
	StatusName    string    `json:"statusName"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// OrderEventResponse represents an audit trail entry in API responses.
type OrderEventResponse struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"orderId"`
	Status     int             `json:"status"`
	StatusName string          `json:"statusName"`
	Message    string          `json:"message"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// MapOrderToResponse converts a domain order to an API response.
func MapOrderToResponse(order *orderDomain.Order) OrderResponse {
	return OrderResponse{
		ID:            order.ID.String(),
		Description:   order.Description,
		CurrentStatus: int(order.CurrentStatus),
		StatusName:    order.CurrentStatus.String(),
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

// MapOrdersToResponse converts a slice of domain orders to API responses.
func MapOrdersToResponse(orders []*orderDomain.Order) []OrderResponse {
	responses := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, MapOrderToResponse(order))
	}
	return responses
}

// MapEventsToResponse converts audit events to API responses. Metadata that is
// not valid JSON is omitted.
func MapEventsToResponse(events []*orderDomain.OrderEvent) []OrderEventResponse {
	responses := make([]OrderEventResponse, 0, len(events))
	for _, event := range events {
		resp := OrderEventResponse{
			ID:         event.ID.String(),
			OrderID:    event.OrderID.String(),
			Status:     int(event.Status),
			StatusName: event.Status.String(),
			Message:    event.Message,
			Timestamp:  event.Timestamp,
		}
		if event.Metadata != nil && json.Valid([]byte(*event.Metadata)) {
			resp.Metadata = json.RawMessage(*event.Metadata)
		}
		responses = append(responses, resp)
	}
	return responses
}
