package http

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	orderDomain "github.com/allisson/slimtrack/internal/order/domain"
)

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
		return nil, args.Get(1).(int64), args.Error(2)
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

