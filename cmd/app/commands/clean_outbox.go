package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	outboxUseCase "github.com/allisson/slimtrack/internal/outbox/usecase"
)

// RunCleanOutbox deletes published outbox messages older than days.
// Supports dry-run mode to preview the deletion count and both text/JSON output formats.
// Unpublished messages are never removed.
func RunCleanOutbox(
	ctx context.Context,
	outbox outboxUseCase.OutboxUseCase,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("cleaning outbox",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	count, err := outbox.DeleteOlderThan(ctx, days, dryRun)
	if err != nil {
		return fmt.Errorf("failed to delete outbox messages: %w", err)
	}

	if format == "json" {
		outputCleanJSON(writer, count, days, dryRun)
	} else {
		outputCleanText(writer, count, days, dryRun)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

func outputCleanText(writer io.Writer, count int64, days int, dryRun bool) {
	if dryRun {
		_, _ = fmt.Fprintf(
			writer,
			"Dry-run mode: Would delete %d published outbox message(s) older than %d day(s)\n",
			count,
			days,
		)
		return
	}
	_, _ = fmt.Fprintf(writer, "Successfully deleted %d published outbox message(s) older than %d day(s)\n", count, days)
}

func outputCleanJSON(writer io.Writer, count int64, days int, dryRun bool) {
	result := map[string]any{
		"count":   count,
		"days":    days,
		"dry_run": dryRun,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(writer, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
