package worker

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Runnable is a long-running component that stops when ctx is cancelled.
type Runnable interface {
	Run(ctx context.Context) error
}

// RunnableFunc adapts a function to Runnable.
type RunnableFunc func(ctx context.Context) error

// Run calls f(ctx).
func (f RunnableFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Runner supervises named components. When one fails the others are cancelled.
type Runner struct {
	components map[string]Runnable
	order      []string
	logger     *slog.Logger
}

// NewRunner creates an empty Runner.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{
		components: make(map[string]Runnable),
		logger:     logger,
	}
}

// Add registers a component under name.
func (r *Runner) Add(name string, component Runnable) {
	if _, ok := r.components[name]; !ok {
		r.order = append(r.order, name)
	}
	r.components[name] = component
}

// Len returns the number of registered components.
func (r *Runner) Len() int {
	return len(r.order)
}

// Run starts every component and blocks until all of them returned.
// Cancellation of ctx is a clean shutdown and yields a nil error.
func (r *Runner) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, name := range r.order {
		component := r.components[name]
		g.Go(func() error {
			r.logger.Info("component started", slog.String("component", name))
			err := component.Run(gctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("component failed", slog.String("component", name), slog.Any("error", err))
				return err
			}
			r.logger.Info("component stopped", slog.String("component", name))
			return nil
		})
	}

	return g.Wait()
}
