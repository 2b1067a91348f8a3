// Package repository provides persistence for outbox messages.
//
// Pending rows are claimed with FOR UPDATE SKIP LOCKED so several relays can poll
// the same table without publishing a row twice.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/allisson/slimtrack/internal/database"
	apperrors "github.com/allisson/slimtrack/internal/errors"
	"github.com/allisson/slimtrack/internal/outbox/domain"
)

var outboxColumns = []string{
	"id",
	"event_type",
	"payload",
	"published",
	"created_at",
	"published_at",
	"retry_count",
	"error_message",
}

// PostgreSQLOutboxRepository handles outbox persistence for PostgreSQL.
type PostgreSQLOutboxRepository struct {
	db      *sql.DB
	builder squirrel.StatementBuilderType
}

// NewPostgreSQLOutboxRepository creates a new PostgreSQLOutboxRepository.
func NewPostgreSQLOutboxRepository(db *sql.DB) *PostgreSQLOutboxRepository {
	return &PostgreSQLOutboxRepository{
		db:      db,
		builder: database.StatementBuilder(database.DriverPostgres),
	}
}

// Create inserts a new outbox message.
func (r *PostgreSQLOutboxRepository) Create(ctx context.Context, msg *domain.OutboxMessage) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO outbox_messages (id, event_type, payload, published, created_at, published_at, retry_count, error_message)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(ctx, query, msg.ID, msg.EventType, msg.Payload, msg.Published,
		msg.CreatedAt, msg.PublishedAt, msg.RetryCount, msg.ErrorMessage)
	if err != nil {
		return apperrors.Wrap(err, "failed to create outbox message")
	}
	return nil
}

// GetPending returns up to limit unpublished rows below the retry cap, oldest first.
// Inside a transaction the rows are locked with SKIP LOCKED until it ends; outside
// one they are read without locks.
func (r *PostgreSQLOutboxRepository) GetPending(
	ctx context.Context,
	limit, maxRetries int,
) ([]*domain.OutboxMessage, error) {
	querier := database.GetTx(ctx, r.db)

	pending := r.builder.Select(outboxColumns...).
		From("outbox_messages").
		Where(squirrel.Eq{"published": false}).
		Where(squirrel.Lt{"retry_count": maxRetries}).
		OrderBy("created_at ASC").
		Limit(uint64(limit))
	if database.InTx(ctx) {
		pending = pending.Suffix("FOR UPDATE SKIP LOCKED")
	}

	query, args, err := pending.ToSql()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build pending outbox query")
	}

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get pending outbox messages")
	}
	defer rows.Close() //nolint:errcheck

	return scanPostgreSQLOutboxRows(rows)
}

// Update persists the relay-owned fields of a message.
func (r *PostgreSQLOutboxRepository) Update(ctx context.Context, msg *domain.OutboxMessage) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE outbox_messages
			  SET published = $1, published_at = $2, retry_count = $3, error_message = $4
			  WHERE id = $5`

	_, err := querier.ExecContext(ctx, query, msg.Published, msg.PublishedAt, msg.RetryCount,
		msg.ErrorMessage, msg.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update outbox message")
	}
	return nil
}

// List returns a page of outbox rows ordered by creation time.
func (r *PostgreSQLOutboxRepository) List(
	ctx context.Context,
	filter domain.ListFilter,
) ([]*domain.OutboxMessage, error) {
	querier := database.GetTx(ctx, r.db)

	builder := r.builder.Select(outboxColumns...).
		From("outbox_messages").
		OrderBy("created_at ASC", "id ASC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))
	if filter.Published != nil {
		builder = builder.Where(squirrel.Eq{"published": *filter.Published})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build list outbox query")
	}

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list outbox messages")
	}
	defer rows.Close() //nolint:errcheck

	return scanPostgreSQLOutboxRows(rows)
}

// Count returns the number of outbox rows, optionally restricted by published state.
func (r *PostgreSQLOutboxRepository) Count(ctx context.Context, published *bool) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	builder := r.builder.Select("COUNT(*)").From("outbox_messages")
	if published != nil {
		builder = builder.Where(squirrel.Eq{"published": *published})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to build count outbox query")
	}

	var total int64
	if err := querier.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, apperrors.Wrap(err, "failed to count outbox messages")
	}
	return total, nil
}

// DeletePublishedBefore removes published rows created before the given time.
// Unpublished rows are never touched.
func (r *PostgreSQLOutboxRepository) DeletePublishedBefore(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM outbox_messages WHERE published = TRUE AND created_at < $1`

	result, err := querier.ExecContext(ctx, query, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete published outbox messages")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows")
	}
	return deleted, nil
}

// CountPublishedBefore counts the rows DeletePublishedBefore would remove.
func (r *PostgreSQLOutboxRepository) CountPublishedBefore(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT COUNT(*) FROM outbox_messages WHERE published = TRUE AND created_at < $1`

	var total int64
	if err := querier.QueryRowContext(ctx, query, before).Scan(&total); err != nil {
		return 0, apperrors.Wrap(err, "failed to count published outbox messages")
	}
	return total, nil
}

func scanPostgreSQLOutboxRows(rows *sql.Rows) ([]*domain.OutboxMessage, error) {
	messages := make([]*domain.OutboxMessage, 0)
	for rows.Next() {
		var msg domain.OutboxMessage
		if err := rows.Scan(&msg.ID, &msg.EventType, &msg.Payload, &msg.Published, &msg.CreatedAt,
			&msg.PublishedAt, &msg.RetryCount, &msg.ErrorMessage); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan outbox row")
		}
		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating outbox rows")
	}
	return messages, nil
}
