package domain

import "time"

// Stage describes one step of the fulfillment pipeline: which queue it consumes,
// which status it expects, where it moves the order and what it publishes next.
type Stage struct {
	Name         string
	Queue        string
	IncomingKey  string
	Precondition Status
	Target       Status
	OutgoingKey  string
	Delay        time.Duration
	Message      string
}

// Pipeline stages in execution order.
var (
	StageProcessing = Stage{
		Name:         "processing",
		Queue:        "orders.processing",
		IncomingKey:  RoutingKeyOrderCreated,
		Precondition: StatusReceived,
		Target:       StatusProcessing,
		OutgoingKey:  RoutingKeyOrderProcessing,
		Delay:        3 * time.Second,
		Message:      "Order is being processed",
	}
	StageTransit = Stage{
		Name:         "transit",
		Queue:        "orders.transit",
		IncomingKey:  RoutingKeyOrderProcessing,
		Precondition: StatusProcessing,
		Target:       StatusInTransit,
		OutgoingKey:  RoutingKeyOrderInTransit,
		Delay:        5 * time.Second,
		Message:      "Order is in transit",
	}
	StageDeliveryDispatch = Stage{
		Name:         "delivery",
		Queue:        "orders.out_for_delivery",
		IncomingKey:  RoutingKeyOrderInTransit,
		Precondition: StatusInTransit,
		Target:       StatusOutForDelivery,
		OutgoingKey:  RoutingKeyOrderOutForDelivery,
		Delay:        4 * time.Second,
		Message:      "Order is out for delivery",
	}
	StageCompletion = Stage{
		Name:         "completion",
		Queue:        "orders.delivered",
		IncomingKey:  RoutingKeyOrderOutForDelivery,
		Precondition: StatusOutForDelivery,
		Target:       StatusDelivered,
		OutgoingKey:  RoutingKeyOrderDelivered,
		Delay:        6 * time.Second,
		Message:      "Order delivered successfully",
	}
)

// Stages returns the pipeline in execution order.
func Stages() []Stage {
	return []Stage{StageProcessing, StageTransit, StageDeliveryDispatch, StageCompletion}
}

// StageByName looks up a stage by its name.
func StageByName(name string) (Stage, bool) {
	for _, s := range Stages() {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}

// ReceivedMessage is the audit message of the initial event.
const ReceivedMessage = "Order received successfully"
