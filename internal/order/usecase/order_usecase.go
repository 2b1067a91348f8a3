package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/allisson/slimtrack/internal/database"
	apperrors "github.com/allisson/slimtrack/internal/errors"
	orderDomain "github.com/allisson/slimtrack/internal/order/domain"
	outboxDomain "github.com/allisson/slimtrack/internal/outbox/domain"
)

// DefaultCancelMessage is the audit message used when no reason is given.
const DefaultCancelMessage = "Order cancelled"

// errTransitionLost aborts the transaction when another writer moved the order first.
var errTransitionLost = apperrors.New("order status changed concurrently")

type orderUseCase struct {
	txManager  database.TxManager
	orderRepo  OrderRepository
	eventRepo  OrderEventRepository
	outboxRepo OutboxWriter
}

// Create stores a Received order with its first audit event and queues order.created.
func (o *orderUseCase) Create(ctx context.Context, description string) (*orderDomain.Order, error) {
	description = strings.TrimSpace(description)
	if description == "" || utf8.RuneCountInString(description) > orderDomain.MaxDescriptionLength {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "description must have between 1 and 500 characters")
	}

	now := time.Now().UTC()
	order := &orderDomain.Order{
		ID:            uuid.Must(uuid.NewV7()),
		Description:   description,
		CurrentStatus: orderDomain.StatusReceived,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	event := orderDomain.NewOrderEvent(order.ID, orderDomain.StatusReceived, orderDomain.ReceivedMessage)
	event.Timestamp = now

	msg, err := outboxDomain.NewOutboxMessage(orderDomain.RoutingKeyOrderCreated, orderDomain.NewOrderCreatedEvent(order))
	if err != nil {
		return nil, err
	}

	err = o.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := o.orderRepo.Create(ctx, order); err != nil {
			return err
		}
		if err := o.eventRepo.Create(ctx, event); err != nil {
			return err
		}
		return o.outboxRepo.Create(ctx, msg)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// Get retrieves an order by ID.
func (o *orderUseCase) Get(ctx context.Context, orderID uuid.UUID) (*orderDomain.Order, error) {
	return o.orderRepo.GetByID(ctx, orderID)
}

// List returns a page of orders and the total number matching the filter.
func (o *orderUseCase) List(
	ctx context.Context,
	filter orderDomain.ListFilter,
) ([]*orderDomain.Order, int64, error) {
	orders, err := o.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := o.orderRepo.Count(ctx, filter.Status)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// ListEvents returns the audit trail of an existing order.
func (o *orderUseCase) ListEvents(ctx context.Context, orderID uuid.UUID) ([]*orderDomain.OrderEvent, error) {
	if _, err := o.orderRepo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return o.eventRepo.ListByOrderID(ctx, orderID)
}

// Cancel moves a non-terminal order to Cancelled. Stage workers holding a message
// for this order will then find the precondition unmet and acknowledge it.
func (o *orderUseCase) Cancel(ctx context.Context, orderID uuid.UUID, reason string) (*orderDomain.Order, error) {
	message := strings.TrimSpace(reason)
	if utf8.RuneCountInString(message) > orderDomain.MaxCancelReasonLength {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "reason must have at most 500 characters")
	}
	if message == "" {
		message = DefaultCancelMessage
	}

	order, err := o.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.CurrentStatus.CanTransitionTo(orderDomain.StatusCancelled) {
		return nil, orderDomain.ErrOrderNotCancellable
	}

	metadata, err := json.Marshal(map[string]string{"reason": message})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal cancel metadata")
	}
	metadataStr := string(metadata)

	previous := order.CurrentStatus
	event := orderDomain.NewOrderEvent(order.ID, orderDomain.StatusCancelled, message)
	event.Metadata = &metadataStr

	msg, err := outboxDomain.NewOutboxMessage(orderDomain.RoutingKeyOrderCancelled, orderDomain.OrderStatusChangedEvent{
		OrderID:   order.ID,
		OldStatus: previous,
		NewStatus: orderDomain.StatusCancelled,
		Message:   message,
		ChangedAt: event.Timestamp,
	})
	if err != nil {
		return nil, err
	}

	err = o.txManager.WithTx(ctx, func(ctx context.Context) error {
		return o.applyTransition(ctx, order.ID, previous, orderDomain.StatusCancelled, event, msg)
	})
	if err != nil {
		if apperrors.Is(err, errTransitionLost) {
			return nil, orderDomain.ErrOrderNotCancellable
		}
		return nil, err
	}

	order.CurrentStatus = orderDomain.StatusCancelled
	order.UpdatedAt = event.Timestamp
	return order, nil
}

// Advance applies one pipeline stage in a single transaction.
func (o *orderUseCase) Advance(ctx context.Context, orderID uuid.UUID, stage orderDomain.Stage) (bool, error) {
	event := orderDomain.NewOrderEvent(orderID, stage.Target, stage.Message)

	msg, err := outboxDomain.NewOutboxMessage(stage.OutgoingKey, orderDomain.OrderStatusChangedEvent{
		OrderID:   orderID,
		OldStatus: stage.Precondition,
		NewStatus: stage.Target,
		Message:   stage.Message,
		ChangedAt: event.Timestamp,
	})
	if err != nil {
		return false, err
	}

	err = o.txManager.WithTx(ctx, func(ctx context.Context) error {
		return o.applyTransition(ctx, orderID, stage.Precondition, stage.Target, event, msg)
	})
	if err != nil {
		if apperrors.Is(err, errTransitionLost) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// applyTransition runs the conditional update and, only when it wins, appends the
// audit event and the outbox message. Must be called inside a transaction.
func (o *orderUseCase) applyTransition(
	ctx context.Context,
	orderID uuid.UUID,
	expected, next orderDomain.Status,
	event *orderDomain.OrderEvent,
	msg *outboxDomain.OutboxMessage,
) error {
	affected, err := o.orderRepo.UpdateStatusIfEquals(ctx, orderID, expected, next)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errTransitionLost
	}

	if err := o.eventRepo.Create(ctx, event); err != nil {
		return err
	}
	return o.outboxRepo.Create(ctx, msg)
}

// NewOrderUseCase creates a new OrderUseCase.
func NewOrderUseCase(
	txManager database.TxManager,
	orderRepo OrderRepository,
	eventRepo OrderEventRepository,
	outboxRepo OutboxWriter,
) OrderUseCase {
	return &orderUseCase{
		txManager:  txManager,
		orderRepo:  orderRepo,
		eventRepo:  eventRepo,
		outboxRepo: outboxRepo,
	}
}
