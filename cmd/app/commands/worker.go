package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/allisson/slimtrack/internal/app"
	"github.com/allisson/slimtrack/internal/config"
	orderDomain "github.com/allisson/slimtrack/internal/order/domain"
)

// ParseStages turns a comma-separated list of stage names into stages.
// "all" or an empty value selects the whole pipeline; duplicates are ignored.
func ParseStages(value string) ([]orderDomain.Stage, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "all" {
		return orderDomain.Stages(), nil
	}

	var stages []orderDomain.Stage
	seen := make(map[string]bool)
	for _, name := range strings.Split(value, ",") {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		stage, ok := orderDomain.StageByName(name)
		if !ok {
			return nil, fmt.Errorf(
				"invalid stage: %s (valid options: processing, transit, delivery, completion, all)",
				name,
			)
		}
		seen[name] = true
		stages = append(stages, stage)
	}

	return stages, nil
}

// RunWorker runs the selected stage workers, the outbox relay unless disabled and,
// when metrics are enabled, the metrics server. Blocks until SIGINT/SIGTERM or
// until one component fails.
func RunWorker(ctx context.Context, version string, stages []orderDomain.Stage, withRelay bool) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting worker",
		slog.String("version", version),
		slog.Int("stages", len(stages)),
		slog.Bool("relay", withRelay),
	)

	defer closeContainer(container, logger)

	runner, err := container.WorkerRunner(stages, withRelay)
	if err != nil {
		return fmt.Errorf("failed to initialize worker: %w", err)
	}

	if cfg.MetricsEnabled {
		metricsServer, err := container.MetricsServer()
		if err != nil {
			return fmt.Errorf("failed to initialize metrics server: %w", err)
		}
		runner.Add("metrics-server", serveUntilDone(metricsServer))
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return runComponents(ctx, "worker", runner, logger)
}
