package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/slimtrack/internal/app"
	"github.com/allisson/slimtrack/internal/config"
	"github.com/allisson/slimtrack/internal/http"
	"github.com/allisson/slimtrack/internal/worker"
)

// shutdownTimeout bounds the graceful stop of every HTTP listener.
const shutdownTimeout = 30 * time.Second

// RunServer serves the order API and, when metrics are enabled, the metrics
// endpoint. Both stop together on SIGINT/SIGTERM or when either one fails.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting server",
		slog.String("version", version),
		slog.Int("port", cfg.ServerPort),
		slog.Bool("metrics", cfg.MetricsEnabled),
	)

	defer closeContainer(container, logger)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The rate limiter's janitor goroutine is bound to ctx.
	apiServer, err := container.HTTPServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	runner := worker.NewRunner(logger)
	runner.Add("api-server", serveUntilDone(apiServer))

	if cfg.MetricsEnabled {
		metricsServer, err := container.MetricsServer()
		if err != nil {
			return fmt.Errorf("failed to initialize metrics server: %w", err)
		}
		runner.Add("metrics-server", serveUntilDone(metricsServer))
	}

	return runComponents(ctx, "server", runner, logger)
}

type httpServer interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

var (
	_ httpServer = (*http.Server)(nil)
	_ httpServer = (*http.MetricsServer)(nil)
)

// serveUntilDone adapts a blocking HTTP server to worker.Runnable. The server is
// shut down within shutdownTimeout once ctx is cancelled.
func serveUntilDone(server httpServer) worker.Runnable {
	return worker.RunnableFunc(func(ctx context.Context) error {
		errCh := make(chan error, 1)
		go func() { errCh <- server.Start(ctx) }()

		select {
		case err := <-errCh:
			if err == nil {
				return errors.New("server exited unexpectedly")
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return <-errCh
		}
	})
}
