package usecase

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	apperrors "github.com/allisson/slimtrack/internal/errors"
)

// CleanupScheduler prunes published outbox rows on a cron schedule.
type CleanupScheduler struct {
	outbox        OutboxUseCase
	schedule      string
	retentionDays int
	logger        *slog.Logger
}

// NewCleanupScheduler creates a CleanupScheduler. schedule accepts standard
// five-field expressions and descriptors such as "@daily".
func NewCleanupScheduler(
	outbox OutboxUseCase,
	schedule string,
	retentionDays int,
	logger *slog.Logger,
) *CleanupScheduler {
	return &CleanupScheduler{
		outbox:        outbox,
		schedule:      schedule,
		retentionDays: retentionDays,
		logger:        logger.With(slog.String("component", "outbox_cleanup")),
	}
}

// Run registers the cleanup job and blocks until ctx is cancelled, then waits
// for a running job to finish.
func (s *CleanupScheduler) Run(ctx context.Context) error {
	c := cron.New()

	_, err := c.AddFunc(s.schedule, func() {
		s.cleanup(ctx)
	})
	if err != nil {
		return apperrors.Wrapf(err, "invalid outbox cleanup schedule %q", s.schedule)
	}

	s.logger.Info("outbox cleanup scheduled",
		slog.String("schedule", s.schedule),
		slog.Int("retention_days", s.retentionDays),
	)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("outbox cleanup stopped")
	return ctx.Err()
}

func (s *CleanupScheduler) cleanup(ctx context.Context) {
	deleted, err := s.outbox.DeleteOlderThan(ctx, s.retentionDays, false)
	if err != nil {
		s.logger.Error("failed to clean published outbox messages", slog.Any("error", err))
		return
	}
	s.logger.Info("cleaned published outbox messages", slog.Int64("deleted", deleted))
}
