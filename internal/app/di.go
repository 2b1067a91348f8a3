// Package app provides the dependency injection container that assembles the API
// server, the stage workers and the outbox relay.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/slimtrack/internal/config"
	"github.com/allisson/slimtrack/internal/database"
	"github.com/allisson/slimtrack/internal/http"
	"github.com/allisson/slimtrack/internal/messaging"
	"github.com/allisson/slimtrack/internal/metrics"
	orderHTTP "github.com/allisson/slimtrack/internal/order/http"
	orderUseCase "github.com/allisson/slimtrack/internal/order/usecase"
	outboxHTTP "github.com/allisson/slimtrack/internal/outbox/http"
	outboxUseCase "github.com/allisson/slimtrack/internal/outbox/usecase"
)

// Container builds every component on first access. A process only pays for
// what it uses: the API never dials the broker and migrate never opens a channel.
type Container struct {
	config *config.Config

	logger          lazy[*slog.Logger]
	db              lazy[*sql.DB]
	txManager       lazy[database.TxManager]
	metricsProvider lazy[*metrics.Provider]
	businessMetrics lazy[metrics.BusinessMetrics]

	amqpConnection lazy[*messaging.Connection]
	publisher      lazy[*messaging.Publisher]
	consumer       lazy[*messaging.Consumer]

	orderRepository      lazy[orderUseCase.OrderRepository]
	orderEventRepository lazy[orderUseCase.OrderEventRepository]
	outboxRepository     lazy[outboxStore]
	orderUseCase         lazy[orderUseCase.OrderUseCase]
	outboxUseCase        lazy[outboxUseCase.OutboxUseCase]

	orderHandler  lazy[*orderHTTP.OrderHandler]
	outboxHandler lazy[*outboxHTTP.OutboxHandler]
	httpServer    lazy[*http.Server]
	metricsServer lazy[*http.MetricsServer]

	shutdownMu sync.Mutex
}

// NewContainer creates a container for cfg. Nothing is connected yet.
func NewContainer(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the JSON logger at the level named by LOG_LEVEL.
func (c *Container) Logger() *slog.Logger {
	logger, _ := c.logger.get(func() (*slog.Logger, error) {
		return newLogger(c.config.LogLevel), nil
	})
	return logger
}

// DB returns the database pool for DB_DRIVER.
func (c *Container) DB() (*sql.DB, error) {
	return c.db.get(c.initDB)
}

// TxManager returns the transaction manager shared by both use cases.
func (c *Container) TxManager() (database.TxManager, error) {
	return c.txManager.get(func() (database.TxManager, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
		}
		return database.NewTxManager(db), nil
	})
}

// MetricsProvider returns the OpenTelemetry provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	return c.metricsProvider.get(func() (*metrics.Provider, error) {
		if !c.config.MetricsEnabled {
			return nil, nil
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics provider: %w", err)
		}
		return provider, nil
	})
}

// BusinessMetrics returns the pipeline metrics recorder. It is a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	return c.businessMetrics.get(func() (metrics.BusinessMetrics, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		if provider == nil {
			return metrics.NewNoOpBusinessMetrics(), nil
		}
		return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	})
}

// HTTPServer returns the order API server with its routes registered. ctx bounds
// the background work of its middleware and is only used on the first call.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	return c.httpServer.get(func() (*http.Server, error) {
		return c.initHTTPServer(ctx)
	})
}

// MetricsServer returns the Prometheus scrape server. It requires metrics to be enabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	return c.metricsServer.get(func() (*http.MetricsServer, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
		}
		if provider == nil {
			return nil, errors.New("metrics are disabled")
		}
		return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
	})
}

// Shutdown releases what was built, servers first, then the broker, then the
// metrics provider and finally the database pool.
func (c *Container) Shutdown(ctx context.Context) error {
	c.shutdownMu.Lock()
	defer c.shutdownMu.Unlock()

	var errs []error
	release := func(what string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", what, err))
		}
	}

	if server, ok := c.httpServer.peek(); ok {
		release("http server shutdown", server.Shutdown(ctx))
	}
	if server, ok := c.metricsServer.peek(); ok {
		release("metrics server shutdown", server.Shutdown(ctx))
	}
	if publisher, ok := c.publisher.peek(); ok {
		release("publisher close", publisher.Close())
	}
	if conn, ok := c.amqpConnection.peek(); ok {
		release("amqp connection close", conn.Close())
	}
	if provider, ok := c.metricsProvider.peek(); ok && provider != nil {
		release("metrics provider shutdown", provider.Shutdown(ctx))
	}
	if db, ok := c.db.peek(); ok {
		release("database close", db.Close())
	}

	return errors.Join(errs...)
}

func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(context.Background(), database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (c *Container) initHTTPServer(ctx context.Context) (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	orderHandler, err := c.OrderHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get order handler for http server: %w", err)
	}

	outboxHandler, err := c.OutboxHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox handler for http server: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(ctx, c.config, orderHandler, outboxHandler, provider)
	return server, nil
}
