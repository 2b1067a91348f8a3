package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/slimtrack/internal/database"
	apperrors "github.com/allisson/slimtrack/internal/errors"
	orderDomain "github.com/allisson/slimtrack/internal/order/domain"
)

// MySQLOrderEventRepository implements OrderEvent persistence for MySQL.
type MySQLOrderEventRepository struct {
	db *sql.DB
}

// Create appends an OrderEvent.
func (m *MySQLOrderEventRepository) Create(ctx context.Context, event *orderDomain.OrderEvent) error {
	querier := database.GetTx(ctx, m.db)

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal order event id")
	}

	orderID, err := event.OrderID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal order id")
	}

	query := `INSERT INTO order_events (id, order_id, status, message, metadata, occurred_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		orderID,
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
func (m *MySQLOrderEventRepository) ListByOrderID(
	ctx context.Context,
	orderID uuid.UUID,
) ([]*orderDomain.OrderEvent, error) {
	querier := database.GetTx(ctx, m.db)

	orderIDBytes, err := orderID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal order id")
	}

	query := `SELECT id, order_id, status, message, metadata, occurred_at
			  FROM order_events
			  WHERE order_id = ?
			  ORDER BY occurred_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query, orderIDBytes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list order events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*orderDomain.OrderEvent, 0)
	for rows.Next() {
		var event orderDomain.OrderEvent
		var idBytes, eventOrderID []byte

		if err := rows.Scan(
			&idBytes,
			&eventOrderID,
			&event.Status,
			&event.Message,
			&event.Metadata,
			&event.Timestamp,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan order event row")
		}

		if err := event.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal order event id")
		}
		if err := event.OrderID.UnmarshalBinary(eventOrderID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal order id")
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating order event rows")
	}

	return events, nil
}

// NewMySQLOrderEventRepository creates a new MySQL OrderEvent repository.
func NewMySQLOrderEventRepository(db *sql.DB) *MySQLOrderEventRepository {
	return &MySQLOrderEventRepository{db: db}
}
