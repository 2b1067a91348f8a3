package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/slimtrack/internal/outbox/domain"
)

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

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) GetPending(
	ctx context.Context,
	limit, maxRetries int,
) ([]*domain.OutboxMessage, error) {
	args := m.Called(ctx, limit, maxRetries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OutboxMessage), args.Error(1)
}

func (m *MockOutboxRepository) Update(ctx context.Context, msg *domain.OutboxMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockOutboxRepository) List(
	ctx context.Context,
	filter domain.ListFilter,
) ([]*domain.OutboxMessage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OutboxMessage), args.Error(1)
}

func (m *MockOutboxRepository) Count(ctx context.Context, published *bool) (int64, error) {
	args := m.Called(ctx, published)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOutboxRepository) DeletePublishedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOutboxRepository) CountPublishedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishRaw(ctx context.Context, exchange, routingKey string, body []byte) error {
	args := m.Called(ctx, exchange, routingKey, body)
	return args.Error(0)
}

type MockOutboxUseCase struct {
	mock.Mock
}

func (m *MockOutboxUseCase) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOutboxUseCase) ProcessBatch(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockOutboxUseCase) List(
	ctx context.Context,
	filter domain.ListFilter,
) ([]*domain.OutboxMessage, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.OutboxMessage), args.Get(1).(int64), args.Error(2)
}

func (m *MockOutboxUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
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
