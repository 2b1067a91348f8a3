// Package commands implements the slimtrack CLI subcommands.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/allisson/slimtrack/internal/app"
	"github.com/allisson/slimtrack/internal/worker"
)

// Output receives the reports printed by one-shot commands such as clean-outbox.
var Output io.Writer = os.Stdout

// runComponents blocks until every component of a long-running process has
// returned. A signal-driven stop is logged and reported as success.
func runComponents(ctx context.Context, process string, runner worker.Runnable, logger *slog.Logger) error {
	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("%s stopped: %w", process, err)
	}
	logger.Info(process + " stopped")
	return nil
}

func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to release container resources", slog.Any("error", err))
	}
}

func closeMigrate(m *migrate.Migrate, logger *slog.Logger) {
	if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
		logger.Error("failed to close migrations",
			slog.Any("source_error", sourceErr),
			slog.Any("database_error", dbErr),
		)
	}
}
