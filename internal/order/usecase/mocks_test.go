package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	orderDomain "github.com/allisson/slimtrack/internal/order/domain"
	outboxDomain "github.com/allisson/slimtrack/internal/outbox/domain"
)

// MockTxManager runs the callback after recording the call, unless an error is configured.
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *orderDomain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*orderDomain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderDomain.Order), args.Error(1)
}

func (m *MockOrderRepository) List(
	ctx context.Context,
	filter orderDomain.ListFilter,
) ([]*orderDomain.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*orderDomain.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, status *orderDomain.Status) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatusIfEquals(
	ctx context.Context,
	orderID uuid.UUID,
	expected, next orderDomain.Status,
) (int64, error) {
	args := m.Called(ctx, orderID, expected, next)
	return args.Get(0).(int64), args.Error(1)
}

type MockOrderEventRepository struct {
	mock.Mock
}

func (m *MockOrderEventRepository) Create(ctx context.Context, event *orderDomain.OrderEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockOrderEventRepository) ListByOrderID(
	ctx context.Context,
	orderID uuid.UUID,
) ([]*orderDomain.OrderEvent, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*orderDomain.OrderEvent), args.Error(1)
}

type MockOutboxWriter struct {
	mock.Mock
}

func (m *MockOutboxWriter) Create(ctx context.Context, msg *outboxDomain.OutboxMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockOrderUseCase struct {
	mock.Mock
}

func (m *MockOrderUseCase) Create(ctx context.Context, description string) (*orderDomain.Order, error) {
	args := m.Called(ctx, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderDomain.Order), args.Error(1)
}

func (m *MockOrderUseCase) Get(ctx context.Context, orderID uuid.UUID) (*orderDomain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderDomain.Order), args.Error(1)
}

func (m *MockOrderUseCase) List(
	ctx context.Context,
	filter orderDomain.ListFilter,
) ([]*orderDomain.Order, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*orderDomain.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderUseCase) ListEvents(ctx context.Context, orderID uuid.UUID) ([]*orderDomain.OrderEvent, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*orderDomain.OrderEvent), args.Error(1)
}

func (m *MockOrderUseCase) Cancel(ctx context.Context, orderID uuid.UUID, reason string) (*orderDomain.Order, error) {
	args := m.Called(ctx, orderID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderDomain.Order), args.Error(1)
}

func (m *MockOrderUseCase) Advance(ctx context.Context, orderID uuid.UUID, stage orderDomain.Stage) (bool, error) {
	args := m.Called(ctx, orderID, stage)
	return args.Bool(0), args.Error(1)
}

type MockBusinessMetrics struct {
	mock.Mock
}

func (m *MockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *MockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *MockBusinessMetrics) RecordMessage(ctx context.Context, queue, outcome string) {
	m.Called(ctx, queue, outcome)
}

func (m *MockBusinessMetrics) RecordOutboxPublish(ctx context.Context, eventType, result string) {
	m.Called(ctx, eventType, result)
}
