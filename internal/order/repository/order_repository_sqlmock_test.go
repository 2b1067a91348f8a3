package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/slimtrack/internal/errors"
	orderDomain "github.com/allisson/slimtrack/internal/order/domain"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db, mock
}

const postgresCASPattern = `UPDATE orders\s+SET current_status = \$1, updated_at = \$2\s+WHERE id = \$3 AND current_status = \$4`

func TestPostgreSQLOrderRepository_UpdateStatusIfEquals_SQL(t *testing.T) {
	orderID := uuid.Must(uuid.NewV7())

	t.Run("Success_OneRowAffected", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(postgresCASPattern).
			WithArgs(orderDomain.StatusProcessing, sqlmock.AnyArg(), orderID, orderDomain.StatusReceived).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewPostgreSQLOrderRepository(db)
		affected, err := repo.UpdateStatusIfEquals(
			context.Background(),
			orderID,
			orderDomain.StatusReceived,
			orderDomain.StatusProcessing,
		)

		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_LostRace", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(postgresCASPattern).
			WithArgs(orderDomain.StatusInTransit, sqlmock.AnyArg(), orderID, orderDomain.StatusProcessing).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewPostgreSQLOrderRepository(db)
		affected, err := repo.UpdateStatusIfEquals(
			context.Background(),
			orderID,
			orderDomain.StatusProcessing,
			orderDomain.StatusInTransit,
		)

		require.NoError(t, err)
		assert.Zero(t, affected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_Exec", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(postgresCASPattern).WillReturnError(errors.New("connection reset"))

		repo := NewPostgreSQLOrderRepository(db)
		_, err := repo.UpdateStatusIfEquals(
			context.Background(),
			orderID,
			orderDomain.StatusProcessing,
			orderDomain.StatusInTransit,
		)

		assert.ErrorContains(t, err, "failed to update order status")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMySQLOrderRepository_UpdateStatusIfEquals_SQL(t *testing.T) {
	orderID := uuid.Must(uuid.NewV7())
	idBytes, err := orderID.MarshalBinary()
	require.NoError(t, err)

	db, mock := newMockDB(t)
	mock.ExpectExec(`UPDATE orders\s+SET current_status = \?, updated_at = \?\s+WHERE id = \? AND current_status = \?`).
		WithArgs(orderDomain.StatusDelivered, sqlmock.AnyArg(), idBytes, orderDomain.StatusOutForDelivery).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewMySQLOrderRepository(db)
	affected, err := repo.UpdateStatusIfEquals(
		context.Background(),
		orderID,
		orderDomain.StatusOutForDelivery,
		orderDomain.StatusDelivered,
	)

	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLOrderRepository_GetByID_NotFound_SQL(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT (.+) FROM orders WHERE id = \$1`).WillReturnError(sql.ErrNoRows)

	repo := NewPostgreSQLOrderRepository(db)
	order, err := repo.GetByID(context.Background(), uuid.Must(uuid.NewV7()))

	assert.Nil(t, order)
	assert.ErrorIs(t, err, orderDomain.ErrOrderNotFound)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostgreSQLOrderRepository_List_SQL(t *testing.T) {
	now := time.Now().UTC()
	orderID := uuid.Must(uuid.NewV7())

	t.Run("Success_WithStatusFilter", func(t *testing.T) {
		db, mock := newMockDB(t)
		rows := sqlmock.NewRows(orderColumns).AddRow(orderID.String(), "Laptop", 3, now, now)
		mock.ExpectQuery(`SELECT id, description, current_status, created_at, updated_at FROM orders ` +
			`WHERE current_status = \$1 ORDER BY created_at DESC, id DESC LIMIT 10 OFFSET 20`).
			WithArgs(3).
			WillReturnRows(rows)

		status := orderDomain.StatusInTransit
		repo := NewPostgreSQLOrderRepository(db)
		orders, err := repo.List(context.Background(), orderDomain.ListFilter{Status: &status, Offset: 20, Limit: 10})

		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, orderID, orders[0].ID)
		assert.Equal(t, orderDomain.StatusInTransit, orders[0].CurrentStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_WithoutFilter", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT (.+) FROM orders ORDER BY created_at DESC, id DESC LIMIT 5 OFFSET 0`).
			WillReturnRows(sqlmock.NewRows(orderColumns))

		repo := NewPostgreSQLOrderRepository(db)
		orders, err := repo.List(context.Background(), orderDomain.ListFilter{Limit: 5})

		require.NoError(t, err)
		assert.NotNil(t, orders)
		assert.Empty(t, orders)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepository_Count_SQL(t *testing.T) {
	t.Run("Postgres_WithStatus", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE current_status = \$1`).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		status := orderDomain.StatusDelivered
		total, err := NewPostgreSQLOrderRepository(db).Count(context.Background(), &status)

		require.NoError(t, err)
		assert.Equal(t, int64(7), total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MySQL_WithStatus", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE current_status = \?`).
			WithArgs(6).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		status := orderDomain.StatusCancelled
		total, err := NewMySQLOrderRepository(db).Count(context.Background(), &status)

		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
