package kernel_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	t.Run("should normalize the currency", func(t *testing.T) {
		m, err := kernel.NewMoney(decimal.RequireFromString("59.90"), " pen ")

		require.NoError(t, err)
		assert.Equal(t, "PEN", m.Currency())
		assert.Equal(t, "59.90 PEN", m.String())
		assert.True(t, m.IsPositive())
	})

	t.Run("should convert to minor units with rounding", func(t *testing.T) {
		assert.Equal(t, int64(5990), kernel.MustMoney("59.90", "PEN").MinorUnits())
		assert.Equal(t, int64(1001), kernel.MustMoney("10.005", "USD").MinorUnits())
	})

	t.Run("should reject negative amounts and bad currencies", func(t *testing.T) {
		_, err := kernel.NewMoney(decimal.NewFromInt(-1), "PEN")
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

		_, err = kernel.NewMoney(decimal.NewFromInt(1), "soles")
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should report zero values", func(t *testing.T) {
		var m kernel.Money
		require.ErrorIs(t, m.Validate(), errs.ErrValueIsRequired)
	})
}

func TestGeoPoint(t *testing.T) {
	t.Run("should validate ranges", func(t *testing.T) {
		_, err := kernel.NewGeoPoint(91, 0)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

		_, err = kernel.NewGeoPoint(0, -181)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should compute great-circle distance", func(t *testing.T) {
		miraflores, err := kernel.NewGeoPoint(-12.1211, -77.0297)
		require.NoError(t, err)
		callao, err := kernel.NewGeoPoint(-12.0566, -77.1181)
		require.NoError(t, err)

		assert.InDelta(t, 11.9, miraflores.DistanceKm(callao), 0.5)
		assert.InDelta(t, 0, miraflores.DistanceKm(miraflores), 1e-9)
	})

	t.Run("zero value is reported", func(t *testing.T) {
		var p kernel.GeoPoint
		assert.True(t, p.IsZero())
		require.Error(t, p.Validate())
	})
}

func TestScope(t *testing.T) {
	s, err := kernel.NewScope(42, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(42), s.OrderID)

	_, err = kernel.NewScope(0, 0)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}
