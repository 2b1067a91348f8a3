package app

import (
	"fmt"

	"github.com/allisson/slimtrack/internal/database"
	orderHTTP "github.com/allisson/slimtrack/internal/order/http"
	orderRepository "github.com/allisson/slimtrack/internal/order/repository"
	orderUseCase "github.com/allisson/slimtrack/internal/order/usecase"
)

// OrderRepository returns the order repository for the configured driver.
func (c *Container) OrderRepository() (orderUseCase.OrderRepository, error) {
	return c.orderRepository.get(c.initOrderRepository)
}

// OrderEventRepository returns the order event repository for the configured driver.
func (c *Container) OrderEventRepository() (orderUseCase.OrderEventRepository, error) {
	return c.orderEventRepository.get(c.initOrderEventRepository)
}

// OrderUseCase returns the order use case, wrapped with metrics when enabled.
func (c *Container) OrderUseCase() (orderUseCase.OrderUseCase, error) {
	return c.orderUseCase.get(c.initOrderUseCase)
}

// OrderHandler returns the HTTP handler for order operations.
func (c *Container) OrderHandler() (*orderHTTP.OrderHandler, error) {
	return c.orderHandler.get(c.initOrderHandler)
}

func (c *Container) initOrderRepository() (orderUseCase.OrderRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for order repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return orderRepository.NewMySQLOrderRepository(db), nil
	case database.DriverPostgres:
		return orderRepository.NewPostgreSQLOrderRepository(db), nil
	default:
		return nil, database.CheckDriver(c.config.DBDriver)
	}
}

func (c *Container) initOrderEventRepository() (orderUseCase.OrderEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for order event repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return orderRepository.NewMySQLOrderEventRepository(db), nil
	case database.DriverPostgres:
		return orderRepository.NewPostgreSQLOrderEventRepository(db), nil
	default:
		return nil, database.CheckDriver(c.config.DBDriver)
	}
}

func (c *Container) initOrderUseCase() (orderUseCase.OrderUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for order use case: %w", err)
	}

	orderRepo, err := c.OrderRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get order repository for order use case: %w", err)
	}

	eventRepo, err := c.OrderEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get order event repository for order use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for order use case: %w", err)
	}

	baseUseCase := orderUseCase.NewOrderUseCase(txManager, orderRepo, eventRepo, outboxRepo)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for order use case: %w", err)
		}
		return orderUseCase.NewOrderUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initOrderHandler() (*orderHTTP.OrderHandler, error) {
	useCase, err := c.OrderUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get order use case for order handler: %w", err)
	}
	return orderHTTP.NewOrderHandler(useCase, c.Logger()), nil
}
