package queries_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetAbandonedTransactionsQuery(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	t.Run("should accept an empty gateway", func(t *testing.T) {
		query, err := queries.NewGetAbandonedTransactionsQuery("", now, 10)
		require.NoError(t, err)
		require.NoError(t, query.Validate())
		assert.Equal(t, 10, query.Limit())
	})

	t.Run("should reject an unknown gateway", func(t *testing.T) {
		_, err := queries.NewGetAbandonedTransactionsQuery("visa", now, 10)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject a limit out of range", func(t *testing.T) {
		_, err := queries.NewGetAbandonedTransactionsQuery(payment.Niubiz, now, 0)
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

		_, err = queries.NewGetAbandonedTransactionsQuery(payment.Niubiz, now, queries.MaxAbandonedTransactions+1)
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should require a reference time", func(t *testing.T) {
		_, err := queries.NewGetAbandonedTransactionsQuery(payment.Niubiz, time.Time{}, 10)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestGetAbandonedTransactionsQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetAbandonedTransactionsQuery{}
	err := query.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetAbandonedTransactionsQueryIsNotConstructed)
}
