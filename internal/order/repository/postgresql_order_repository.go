// Package repository implements persistence for orders and their audit trail.
//
// Provides PostgreSQL and MySQL implementations with transaction support via database.GetTx().
// PostgreSQL uses native UUID types, MySQL uses BINARY(16) types.
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

var orderColumns = []string{"id", "description", "current_status", "created_at", "updated_at"}

// PostgreSQLOrderRepository implements Order persistence for PostgreSQL.
type PostgreSQLOrderRepository struct {
	db      *sql.DB
	builder squirrel.StatementBuilderType
}

// Create inserts a new Order.
func (p *PostgreSQLOrderRepository) Create(ctx context.Context, order *orderDomain.Order) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO orders (id, description, current_status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		order.ID,
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
func (p *PostgreSQLOrderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*orderDomain.Order, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, description, current_status, created_at, updated_at FROM orders WHERE id = $1`

	var order orderDomain.Order
	err := querier.QueryRowContext(ctx, query, orderID).Scan(
		&order.ID,
		&order.Description,
		&order.CurrentStatus,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, orderDomain.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get order")
	}

	return &order, nil
}

// List retrieves orders ordered by creation time descending.
func (p *PostgreSQLOrderRepository) List(
	ctx context.Context,
	filter orderDomain.ListFilter,
) ([]*orderDomain.Order, error) {
	querier := database.GetTx(ctx, p.db)

	builder := p.builder.Select(orderColumns...).
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
		var order orderDomain.Order
		if err := rows.Scan(
			&order.ID,
			&order.Description,
			&order.CurrentStatus,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan order row")
		}
		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating order rows")
	}

	return orders, nil
}

// Count returns the number of orders, optionally restricted to one status.
func (p *PostgreSQLOrderRepository) Count(ctx context.Context, status *orderDomain.Status) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	builder := p.builder.Select("COUNT(*)").From("orders")
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
// The check and the write are one UPDATE statement, so concurrent callers racing on the
// same transition see exactly one affected row between them.
func (p *PostgreSQLOrderRepository) UpdateStatusIfEquals(
	ctx context.Context,
	orderID uuid.UUID,
	expected, next orderDomain.Status,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE orders
			  SET current_status = $1, updated_at = $2
			  WHERE id = $3 AND current_status = $4`

	result, err := querier.ExecContext(ctx, query, next, time.Now().UTC(), orderID, expected)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to update order status")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return affected, nil
}

// NewPostgreSQLOrderRepository creates a new PostgreSQL Order repository.
func NewPostgreSQLOrderRepository(db *sql.DB) *PostgreSQLOrderRepository {
	return &PostgreSQLOrderRepository{
		db:      db,
		builder: database.StatementBuilder(database.DriverPostgres),
	}
}
