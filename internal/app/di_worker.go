package app

import (
	"fmt"

	orderDomain "github.com/allisson/slimtrack/internal/order/domain"
	"github.com/allisson/slimtrack/internal/worker"
)

// StageWorker builds the consumer for one pipeline stage.
func (c *Container) StageWorker(stage orderDomain.Stage) (*worker.StageWorker, error) {
	orders, err := c.OrderUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get order use case for %s worker: %w", stage.Name, err)
	}

	consumer, err := c.Consumer()
	if err != nil {
		return nil, fmt.Errorf("failed to get consumer for %s worker: %w", stage.Name, err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for %s worker: %w", stage.Name, err)
	}

	return worker.NewStageWorker(
		stage,
		worker.Config{
			Exchange:     c.config.AMQPExchange,
			Prefetch:     c.config.WorkerPrefetch,
			DelayEnabled: c.config.WorkerDelayEnabled,
		},
		orders,
		consumer,
		businessMetrics,
		c.Logger(),
	), nil
}

// WorkerRunner assembles the given stage workers, the outbox relay when withRelay
// is set and the cleanup schedule when one is configured.
func (c *Container) WorkerRunner(stages []orderDomain.Stage, withRelay bool) (*worker.Runner, error) {
	runner := worker.NewRunner(c.Logger())

	for _, stage := range stages {
		stageWorker, err := c.StageWorker(stage)
		if err != nil {
			return nil, err
		}
		runner.Add("stage:"+stage.Name, stageWorker)
	}

	if withRelay {
		// Dial up front so a broker outage fails startup instead of burning retries.
		if _, err := c.Publisher(); err != nil {
			return nil, fmt.Errorf("failed to get publisher for outbox relay: %w", err)
		}

		relay, err := c.OutboxUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get outbox use case for relay: %w", err)
		}
		runner.Add("outbox-relay", worker.RunnableFunc(relay.Start))
	}

	scheduler, err := c.OutboxCleanupScheduler()
	if err != nil {
		return nil, err
	}
	if scheduler != nil {
		runner.Add("outbox-cleanup", scheduler)
	}

	if runner.Len() == 0 {
		return nil, fmt.Errorf("nothing to run: no stages selected and relay disabled")
	}

	return runner, nil
}
