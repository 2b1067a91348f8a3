// Package dto provides data transfer objects for the order HTTP API.
package dto

import (
	validation "github.com/jellydator/validation"

	orderDomain "github.com/allisson/slimtrack/internal/order/domain"
	customValidation "github.com/allisson/slimtrack/internal/validation"
)

// CreateOrderRequest is the body of POST /api/orders.
type CreateOrderRequest struct {
	Description string `json:"description"`
}

// Validate checks if the create order request is valid.
func (r *CreateOrderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Description,
			validation.Required,
			customValidation.NotBlank,
			validation.RuneLength(1, orderDomain.MaxDescriptionLength),
		),
	)
}

// CancelOrderRequest is the optional body of POST /api/orders/:id/cancel.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// Validate checks if the cancel order request is valid.
func (r *CancelOrderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Reason,
			validation.RuneLength(0, orderDomain.MaxCancelReasonLength),
		),
	)
}
