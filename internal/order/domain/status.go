package domain

import (
	"fmt"
	"strconv"
)

// Status is the fulfillment state of an order. Values are stored and
// transmitted as integers.
type Status int

const (
	StatusReceived       Status = 1
	StatusProcessing     Status = 2
	StatusInTransit      Status = 3
	StatusOutForDelivery Status = 4
	StatusDelivered      Status = 5
	StatusCancelled      Status = 6
)

var statusNames = map[Status]string{
	StatusReceived:       "Received",
	StatusProcessing:     "Processing",
	StatusInTransit:      "InTransit",
	StatusOutForDelivery: "OutForDelivery",
	StatusDelivered:      "Delivered",
	StatusCancelled:      "Cancelled",
}

// String returns the status name, or the integer value for unknown statuses.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return strconv.Itoa(int(s))
}

// IsValid reports whether s is one of the defined statuses.
func (s Status) IsValid() bool {
	_, ok := statusNames[s]
	return ok
}

// IsTerminal reports whether no further transition can leave s.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether moving from s to next respects the pipeline order.
// The happy path only moves one step forward; any non-terminal status may be cancelled.
func (s Status) CanTransitionTo(next Status) bool {
	if s.IsTerminal() || !next.IsValid() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return next == s+1
}

// ParseStatus converts an integer or a status name into a Status.
func ParseStatus(value string) (Status, error) {
	if n, err := strconv.Atoi(value); err == nil {
		s := Status(n)
		if !s.IsValid() {
			return 0, fmt.Errorf("unknown order status %d", n)
		}
		return s, nil
	}
	for s, name := range statusNames {
		if name == value {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown order status %q", value)
}
