package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/allisson/slimtrack/internal/database"
	apperrors "github.com/allisson/slimtrack/internal/errors"
	orderDomain "github.com/allisson/slimtrack/internal/order/domain"
)

// MySQLOrderRepository implements Order persistence for MySQL.
// Uses BINARY(16) for UUID storage.
type MySQLOrderRepository struct {
	db      *sql.DB
	builder squirrel.StatementBuilderType
}

// Create inserts a new Order.
func (m *MySQLOrderRepository) Create(ctx context.Context, order *orderDomain.Order) error {
	querier := database.GetTx(ctx, m.db)

	id, err := order.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal order id")
	}

	query := `INSERT INTO orders (id, description, current_status, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		order.Description,
		order.CurrentStatus,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create order")
	}
	return nil
}

// GetByID retrieves an Order by ID. Returns ErrOrderNotFound if it does not exist.
func (m *MySQLOrderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*orderDomain.Order, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := orderID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal order id")
	}

	query := `SELECT id, description, current_status, created_at, updated_at FROM orders WHERE id = ?`

	order, err := scanMySQLOrder(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, orderDomain.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get order")
	}
	return order, nil
}

// List retrieves orders ordered by creation time descending.
func (m *MySQLOrderRepository) List(
	ctx context.Context,
	filter orderDomain.ListFilter,
) ([]*orderDomain.Order, error) {
	querier := database.GetTx(ctx, m.db)

	builder := m.builder.Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"current_status": int(*filter.Status)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build list orders query")
	}

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list orders")
	}
	defer func() {
		_ = rows.Close()
	}()

	orders := make([]*orderDomain.Order, 0)
	for rows.Next() {
		order, err := scanMySQLOrder(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan order row")
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating order rows")
	}

	return orders, nil
}

// Count returns the number of orders, optionally restricted to one status.
func (m *MySQLOrderRepository) Count(ctx context.Context, status *orderDomain.Status) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	builder := m.builder.Select("COUNT(*)").From("orders")
	if status != nil {
		builder = builder.Where(squirrel.Eq{"current_status": int(*status)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to build count orders query")
	}

	var total int64
	if err := querier.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, apperrors.Wrap(err, "failed to count orders")
	}
	return total, nil
}

// UpdateStatusIfEquals moves the order to next only while its status is still expected.
func (m *MySQLOrderRepository) UpdateStatusIfEquals(
	ctx context.Context,
	orderID uuid.UUID,
	expected, next orderDomain.Status,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := orderID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal order id")
	}

	query := `UPDATE orders
			  SET current_status = ?, updated_at = ?
			  WHERE id = ? AND current_status = ?`

	result, err := querier.ExecContext(ctx, query, next, time.Now().UTC(), id, expected)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to update order status")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMySQLOrder(row rowScanner) (*orderDomain.Order, error) {
	var order orderDomain.Order
	var idBytes []byte

	if err := row.Scan(
		&idBytes,
		&order.Description,
		&order.CurrentStatus,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := order.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal order id")
	}
	return &order, nil
}

// NewMySQLOrderRepository creates a new MySQL Order repository.
func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{
		db:      db,
		builder: database.StatementBuilder(database.DriverMySQL),
	}
}
