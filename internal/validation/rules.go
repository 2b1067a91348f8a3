// Package validation provides custom validation rules for request DTOs.
package validation

import (
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/slimtrack/internal/errors"
	orderDomain "github.com/allisson/slimtrack/internal/order/domain"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoWhitespace validates that a string has no leading or trailing whitespace.
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// OrderStatus validates an order status value. A nil pointer is accepted.
var OrderStatus = validation.By(func(value any) error {
	var status int
	switch v := value.(type) {
	case int:
		status = v
	case *int:
		if v == nil {
			return nil
		}
		status = *v
	default:
		return validation.NewError("validation_order_status_type", "must be an integer")
	}
	if !orderDomain.Status(status).IsValid() {
		return validation.NewError("validation_order_status", "must be a valid order status between 1 and 6")
	}
	return nil
})
