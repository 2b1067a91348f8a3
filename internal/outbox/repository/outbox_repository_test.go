package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/slimtrack/internal/database"
	"github.com/allisson/slimtrack/internal/outbox/domain"
	"github.com/allisson/slimtrack/internal/testutil"
)

type outboxStore interface {
	Create(ctx context.Context, msg *domain.OutboxMessage) error
	GetPending(ctx context.Context, limit, maxRetries int) ([]*domain.OutboxMessage, error)
	Update(ctx context.Context, msg *domain.OutboxMessage) error
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.OutboxMessage, error)
	Count(ctx context.Context, published *bool) (int64, error)
	DeletePublishedBefore(ctx context.Context, before time.Time) (int64, error)
	CountPublishedBefore(ctx context.Context, before time.Time) (int64, error)
}

var outboxFixtures = []struct {
	name  string
	setup func(t *testing.T) *sql.DB
	repo  func(db *sql.DB) outboxStore
}{
	{
		name:  "postgres",
		setup: testutil.Postgres.Open,
		repo:  func(db *sql.DB) outboxStore { return NewPostgreSQLOutboxRepository(db) },
	},
	{
		name:  "mysql",
		setup: testutil.MySQL.Open,
		repo:  func(db *sql.DB) outboxStore { return NewMySQLOutboxRepository(db) },
	},
}

func newTestMessage(t *testing.T, eventType string, createdAt time.Time) *domain.OutboxMessage {
	t.Helper()
	msg, err := domain.NewOutboxMessage(eventType, map[string]string{"orderId": "test"})
	require.NoError(t, err)
	msg.CreatedAt = createdAt
	return msg
}

func TestOutboxRepository_GetPending(t *testing.T) {
	for _, f := range outboxFixtures {
		t.Run(f.name, func(t *testing.T) {
			db := f.setup(t)

			repo := f.repo(db)
			ctx := context.Background()
			base := time.Now().UTC().Truncate(time.Second)

			older := newTestMessage(t, "order.created", base)
			newer := newTestMessage(t, "order.processing", base.Add(time.Second))
			exhausted := newTestMessage(t, "order.in_transit", base.Add(-time.Minute))
			exhausted.RetryCount = 5
			published := newTestMessage(t, "order.delivered", base.Add(-time.Hour))
			published.MarkPublished(base)

			for _, m := range []*domain.OutboxMessage{newer, older, exhausted, published} {
				require.NoError(t, repo.Create(ctx, m))
			}

			pending, err := repo.GetPending(ctx, 10, 5)
			require.NoError(t, err)
			require.Len(t, pending, 2)
			assert.Equal(t, older.ID, pending[0].ID)
			assert.Equal(t, newer.ID, pending[1].ID)

			pending, err = repo.GetPending(ctx, 1, 5)
			require.NoError(t, err)
			assert.Len(t, pending, 1)
		})
	}
}

func TestOutboxRepository_GetPending_SkipsLockedRows(t *testing.T) {
	for _, f := range outboxFixtures {
		t.Run(f.name, func(t *testing.T) {
			db := f.setup(t)

			repo := f.repo(db)
			txManager := database.NewTxManager(db)
			ctx := context.Background()

			require.NoError(t, repo.Create(ctx, newTestMessage(t, "order.created", time.Now().UTC())))

			errDone := errors.New("done")
			err := txManager.WithTx(ctx, func(txCtx context.Context) error {
				held, err := repo.GetPending(txCtx, 10, 5)
				require.NoError(t, err)
				require.Len(t, held, 1)

				// A second relay does not see the row while the first holds the lock.
				err = txManager.WithTx(context.Background(), func(otherCtx context.Context) error {
					other, err := repo.GetPending(otherCtx, 10, 5)
					require.NoError(t, err)
					assert.Empty(t, other)
					return nil
				})
				require.NoError(t, err)
				return errDone
			})
			assert.ErrorIs(t, err, errDone)
		})
	}
}

func TestOutboxRepository_UpdateListAndCount(t *testing.T) {
	for _, f := range outboxFixtures {
		t.Run(f.name, func(t *testing.T) {
			db := f.setup(t)

			repo := f.repo(db)
			ctx := context.Background()
			base := time.Now().UTC().Truncate(time.Second)

			first := newTestMessage(t, "order.created", base)
			second := newTestMessage(t, "order.processing", base.Add(time.Second))
			require.NoError(t, repo.Create(ctx, first))
			require.NoError(t, repo.Create(ctx, second))

			second.MarkFailed(errors.New("channel closed"))
			require.NoError(t, repo.Update(ctx, second))
			first.MarkPublished(base.Add(time.Minute))
			require.NoError(t, repo.Update(ctx, first))

			all, err := repo.List(ctx, domain.ListFilter{Limit: 10})
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, first.ID, all[0].ID)
			assert.True(t, all[0].Published)
			assert.NotNil(t, all[0].PublishedAt)
			assert.Nil(t, all[0].ErrorMessage)

			unpublished := false
			pending, err := repo.List(ctx, domain.ListFilter{Published: &unpublished, Limit: 10})
			require.NoError(t, err)
			require.Len(t, pending, 1)
			assert.Equal(t, 1, pending[0].RetryCount)
			require.NotNil(t, pending[0].ErrorMessage)
			assert.Equal(t, "channel closed", *pending[0].ErrorMessage)

			total, err := repo.Count(ctx, nil)
			require.NoError(t, err)
			assert.Equal(t, int64(2), total)

			total, err = repo.Count(ctx, &unpublished)
			require.NoError(t, err)
			assert.Equal(t, int64(1), total)
		})
	}
}

func TestOutboxRepository_DeletePublishedBefore(t *testing.T) {
	for _, f := range outboxFixtures {
		t.Run(f.name, func(t *testing.T) {
			db := f.setup(t)

			repo := f.repo(db)
			ctx := context.Background()
			now := time.Now().UTC()

			oldPublished := newTestMessage(t, "order.created", now.AddDate(0, 0, -10))
			oldPublished.MarkPublished(now.AddDate(0, 0, -10))
			oldUnpublished := newTestMessage(t, "order.created", now.AddDate(0, 0, -10))
			recentPublished := newTestMessage(t, "order.created", now)
			recentPublished.MarkPublished(now)

			for _, m := range []*domain.OutboxMessage{oldPublished, oldUnpublished, recentPublished} {
				require.NoError(t, repo.Create(ctx, m))
			}

			cutoff := now.AddDate(0, 0, -7)
			count, err := repo.CountPublishedBefore(ctx, cutoff)
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)

			deleted, err := repo.DeletePublishedBefore(ctx, cutoff)
			require.NoError(t, err)
			assert.Equal(t, int64(1), deleted)

			total, err := repo.Count(ctx, nil)
			require.NoError(t, err)
			assert.Equal(t, int64(2), total)
		})
	}
}
