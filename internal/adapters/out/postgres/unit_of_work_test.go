package postgres_test

import (
	"bytes"
	"log/slog"
	"testing"

	postgres_adapter "fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/testdb"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUnitOfWork_Commit(t *testing.T) {
	newFactory := func(t *testing.T) (*postgres_adapter.GormUnitOfWorkFactory, *bytes.Buffer) {
		t.Helper()
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		return postgres_adapter.NewGormUnitOfWorkFactory(testdb.New(t), postgres_adapter.WithLogger(logger)), &buf
	}
	newOrder := func(t *testing.T) *order.Order {
		t.Helper()
		o, err := order.NewOrder(42, 7, order.StateRef{ID: 1, Code: order.Requested},
			order.TypeDelivery, order.MethodOnline, kernel.MustMoney("59.90", "PEN"))
		require.NoError(t, err)
		return o
	}

	t.Run("should report the aggregates written once committed", func(t *testing.T) {
		factory, buf := newFactory(t)
		ctx := t.Context()
		uow := factory.Create()

		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.OrderRepository().Add(ctx, newOrder(t)))
		assert.Empty(t, buf.String())

		require.NoError(t, uow.Commit(ctx))

		assert.Contains(t, buf.String(), "Unit of work committed")
		assert.Contains(t, buf.String(), "order:42")
		assert.Contains(t, buf.String(), "component=unit_of_work")
	})

	t.Run("should forget the aggregates of a rolled back unit", func(t *testing.T) {
		factory, buf := newFactory(t)
		ctx := t.Context()
		uow := factory.Create()

		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.OrderRepository().Add(ctx, newOrder(t)))
		require.NoError(t, uow.Rollback(ctx))

		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.Commit(ctx))

		assert.NotContains(t, buf.String(), "order:42")
	})
}
