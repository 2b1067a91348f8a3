package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/slimtrack/internal/database"
	apperrors "github.com/allisson/slimtrack/internal/errors"
	orderDomain "github.com/allisson/slimtrack/internal/order/domain"
)

// PostgreSQLOrderEventRepository implements OrderEvent persistence for PostgreSQL.
// Events are append-only: there is no update or delete.
type PostgreSQLOrderEventRepository struct {
	db *sql.DB
}

// Create appends an OrderEvent.
func (p *PostgreSQLOrderEventRepository) Create(ctx context.Context, event *orderDomain.OrderEvent) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO order_events (id, order_id, status, message, metadata, occurred_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		event.ID,
		event.OrderID,
		event.Status,
		event.Message,
		event.Metadata,
		event.Timestamp,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create order event")
	}
	return nil
}

// ListByOrderID returns the audit trail of an order in chronological order.
func (p *PostgreSQLOrderEventRepository) ListByOrderID(
	ctx context.Context,
	orderID uuid.UUID,
) ([]*orderDomain.OrderEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, order_id, status, message, metadata, occurred_at
			  FROM order_events
			  WHERE order_id = $1
			  ORDER BY occurred_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list order events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*orderDomain.OrderEvent, 0)
	for rows.Next() {
		var event orderDomain.OrderEvent
		if err := rows.Scan(
			&event.ID,
			&event.OrderID,
			&event.Status,
			&event.Message,
			&event.Metadata,
			&event.Timestamp,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan order event row")
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating order event rows")
	}

	return events, nil
}

// NewPostgreSQLOrderEventRepository creates a new PostgreSQL OrderEvent repository.
func NewPostgreSQLOrderEventRepository(db *sql.DB) *PostgreSQLOrderEventRepository {
	return &PostgreSQLOrderEventRepository{db: db}
}
