package delivery_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_Whitelist(t *testing.T) {
	legal := map[delivery.State]map[delivery.Action]delivery.State{
		delivery.NotAssigned:    {delivery.ActionAccept: delivery.Accepted},
		delivery.Accepted:       {delivery.ActionInPlaceOrigin: delivery.InPlaceOrigin},
		delivery.InPlaceOrigin:  {delivery.ActionInRoadDelivery: delivery.InRoadDelivery},
		delivery.InRoadDelivery: {delivery.ActionInPlaceDestiny: delivery.InPlaceDestiny},
		delivery.InPlaceDestiny: {
			delivery.ActionGivenDelivery: delivery.GivenDelivery,
			delivery.ActionBackToOrigin:  delivery.BackToOrigin,
		},
		delivery.BackToOrigin: {delivery.ActionGivenDelivery: delivery.GivenDelivery},
	}

	for _, from := range delivery.States() {
		for _, action := range delivery.Actions() {
			want, ok := legal[from][action]

			got, err := delivery.Next(from, action, true)

			if ok {
				require.NoError(t, err, "%s + %s", from, action)
				assert.Equal(t, want, got)
				continue
			}

			var invalid *errs.ActionInvalidError
			require.ErrorAs(t, err, &invalid, "%s + %s", from, action)
			assert.Equal(t, action.String(), invalid.Action)
			assert.Equal(t, from.String(), invalid.State)
			assert.Equal(t, from, got, "state must stay unchanged")
		}
	}
}

func TestNext_BackToOriginOnlyForCourier(t *testing.T) {
	t.Run("should reject non courier orders", func(t *testing.T) {
		got, err := delivery.Next(delivery.InPlaceDestiny, delivery.ActionBackToOrigin, false)

		require.ErrorIs(t, err, errs.ErrActionInvalid)
		assert.Equal(t, delivery.InPlaceDestiny, got)
	})

	t.Run("should accept courier orders", func(t *testing.T) {
		got, err := delivery.Next(delivery.InPlaceDestiny, delivery.ActionBackToOrigin, true)

		require.NoError(t, err)
		assert.Equal(t, delivery.BackToOrigin, got)
	})
}

func TestAllowed(t *testing.T) {
	assert.Equal(t,
		[]delivery.Action{delivery.ActionGivenDelivery, delivery.ActionBackToOrigin},
		delivery.Allowed(delivery.InPlaceDestiny))
	assert.Empty(t, delivery.Allowed(delivery.GivenDelivery))
}

func TestParsers(t *testing.T) {
	a, err := delivery.ParseAction("inRoadDelivery")
	require.NoError(t, err)
	assert.Equal(t, delivery.ActionInRoadDelivery, a)

	_, err = delivery.ParseAction("teleport")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	require.NoError(t, delivery.GivenDelivery.Validate())
	require.Error(t, delivery.State("LOST").Validate())

	c, err := delivery.ParseCarrierCode("olva")
	require.NoError(t, err)
	assert.Equal(t, delivery.CarrierOlva, c)

	none, err := delivery.ParseCarrierCode("")
	require.NoError(t, err)
	assert.Equal(t, delivery.CarrierNone, none)
}
