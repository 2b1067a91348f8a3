package app

import (
	"fmt"

	"github.com/allisson/slimtrack/internal/database"
	orderUseCase "github.com/allisson/slimtrack/internal/order/usecase"
	outboxHTTP "github.com/allisson/slimtrack/internal/outbox/http"
	outboxRepository "github.com/allisson/slimtrack/internal/outbox/repository"
	outboxUseCase "github.com/allisson/slimtrack/internal/outbox/usecase"
)

// outboxStore is written by the order use case and drained by the relay.
type outboxStore interface {
	orderUseCase.OutboxWriter
	outboxUseCase.OutboxRepository
}

// OutboxRepository returns the outbox repository for the configured driver.
func (c *Container) OutboxRepository() (outboxStore, error) {
	return c.outboxRepository.get(c.initOutboxRepository)
}

// OutboxUseCase returns the outbox relay and housekeeping use case. The broker is
// dialed on the first publish, so inspection and cleanup work without it.
func (c *Container) OutboxUseCase() (outboxUseCase.OutboxUseCase, error) {
	return c.outboxUseCase.get(c.initOutboxUseCase)
}

// OutboxHandler returns the HTTP handler for outbox inspection.
func (c *Container) OutboxHandler() (*outboxHTTP.OutboxHandler, error) {
	return c.outboxHandler.get(c.initOutboxHandler)
}

// OutboxCleanupScheduler returns a scheduler pruning published outbox rows, or nil
// when OUTBOX_CLEANUP_SCHEDULE is empty.
func (c *Container) OutboxCleanupScheduler() (*outboxUseCase.CleanupScheduler, error) {
	if c.config.OutboxCleanupSchedule == "" {
		return nil, nil
	}

	useCase, err := c.OutboxUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox use case for cleanup scheduler: %w", err)
	}

	return outboxUseCase.NewCleanupScheduler(
		useCase,
		c.config.OutboxCleanupSchedule,
		c.config.OutboxCleanupRetentionDays,
		c.Logger(),
	), nil
}

func (c *Container) initOutboxRepository() (outboxStore, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return outboxRepository.NewMySQLOutboxRepository(db), nil
	case database.DriverPostgres:
		return outboxRepository.NewPostgreSQLOutboxRepository(db), nil
	default:
		return nil, database.CheckDriver(c.config.DBDriver)
	}
}

func (c *Container) initOutboxUseCase() (outboxUseCase.OutboxUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for outbox use case: %w", err)
	}

	baseUseCase := outboxUseCase.NewOutboxUseCase(
		outboxUseCase.Config{
			Interval:   c.config.OutboxInterval,
			BatchSize:  c.config.OutboxBatchSize,
			MaxRetries: c.config.OutboxMaxRetries,
			Exchange:   c.config.AMQPExchange,
		},
		txManager,
		outboxRepo,
		deferredPublisher{container: c},
		businessMetrics,
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		return outboxUseCase.NewOutboxUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}
	return baseUseCase, nil
}

func (c *Container) initOutboxHandler() (*outboxHTTP.OutboxHandler, error) {
	useCase, err := c.OutboxUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox use case for outbox handler: %w", err)
	}
	return outboxHTTP.NewOutboxHandler(useCase, c.Logger()), nil
}
