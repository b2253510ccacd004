package commands_test

import (
	"testing"

	"fulfillment/internal/core/application/deliveryfsm"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChangeOrderStateCommand(t *testing.T) {
	t.Run("should parse the action", func(t *testing.T) {
		cmd, err := commands.NewChangeOrderStateCommand(42, 7, "confirm")

		require.NoError(t, err)
		assert.NoError(t, cmd.Validate())
		assert.Equal(t, order.ActionConfirm, cmd.Action())
		assert.Equal(t, int64(42), cmd.Scope().OrderID)
		assert.Equal(t, int64(7), cmd.Scope().CompanyID)
	})

	t.Run("should reject an unknown action", func(t *testing.T) {
		_, err := commands.NewChangeOrderStateCommand(42, 7, "teleport")

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should join scope and action errors", func(t *testing.T) {
		_, err := commands.NewChangeOrderStateCommand(0, 7, "teleport")

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should fail validation when zero valued", func(t *testing.T) {
		assert.ErrorIs(t, commands.ChangeOrderStateCommand{}.Validate(),
			commands.ErrChangeOrderStateCommandIsNotConstructed)
	})
}

func TestNewChangeDeliveryStateCommand(t *testing.T) {
	t.Run("should keep the collect data", func(t *testing.T) {
		collect := &deliveryfsm.CollectData{Method: "cash", Amount: "10.00"}

		cmd, err := commands.NewChangeDeliveryStateCommand(42, 7, 3, "givenDelivery", collect)

		require.NoError(t, err)
		assert.Equal(t, delivery.ActionGivenDelivery, cmd.Action())
		assert.Equal(t, int64(3), cmd.DriverID())
		assert.Same(t, collect, cmd.Collect())
	})

	t.Run("should require a driver", func(t *testing.T) {
		_, err := commands.NewChangeDeliveryStateCommand(42, 7, 0, "accept", nil)

		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject an order action", func(t *testing.T) {
		_, err := commands.NewChangeDeliveryStateCommand(42, 7, 3, "confirm", nil)

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestNewInitiateCheckoutCommand(t *testing.T) {
	t.Run("should build the auth context", func(t *testing.T) {
		cmd, err := commands.NewInitiateCheckoutCommand(42, 7, "culqi", "shop", "sandbox", []int64{43})

		require.NoError(t, err)
		assert.Equal(t, payment.Culqi, cmd.Gateway())
		assert.Equal(t, ports.AuthContext{CompanyID: 7, AppCode: "shop", Environment: "sandbox"}, cmd.Auth())
		assert.Equal(t, []int64{43}, cmd.Related())
	})

	t.Run("should not share the related slice", func(t *testing.T) {
		related := []int64{43}
		cmd, err := commands.NewInitiateCheckoutCommand(42, 7, "culqi", "shop", "sandbox", related)
		require.NoError(t, err)

		related[0] = 99
		got := cmd.Related()
		got[0] = 100

		assert.Equal(t, []int64{43}, cmd.Related())
	})

	t.Run("should reject an unknown gateway", func(t *testing.T) {
		_, err := commands.NewInitiateCheckoutCommand(42, 7, "barter", "shop", "sandbox", nil)

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject invalid related ids", func(t *testing.T) {
		_, err := commands.NewInitiateCheckoutCommand(42, 7, "culqi", "shop", "sandbox", []int64{0})

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestNewConfirmPaymentCommand(t *testing.T) {
	t.Run("should copy headers", func(t *testing.T) {
		headers := map[string]string{"X-Signature": "abc"}

		cmd, err := commands.NewConfirmPaymentCommand(42, 7, "niubiz", []byte(`{}`), headers, "")
		require.NoError(t, err)
		headers["X-Signature"] = "changed"

		assert.Equal(t, "abc", cmd.Payload().Headers["X-Signature"])
		assert.Equal(t, payment.Niubiz, cmd.Gateway())
	})

	t.Run("should accept a token without body", func(t *testing.T) {
		cmd, err := commands.NewConfirmPaymentCommand(42, 7, "niubiz", nil, nil, "tok_123")

		require.NoError(t, err)
		assert.Equal(t, "tok_123", cmd.Payload().AuthorizationToken)
	})

	t.Run("should require a payload", func(t *testing.T) {
		_, err := commands.NewConfirmPaymentCommand(42, 7, "niubiz", nil, nil, "")

		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestNewRefundPaymentCommand(t *testing.T) {
	t.Run("should default a blank reason", func(t *testing.T) {
		cmd, err := commands.NewRefundPaymentCommand(42, 7, "  ")

		require.NoError(t, err)
		assert.Equal(t, "requested", cmd.Reason())
	})

	t.Run("should require a scope", func(t *testing.T) {
		_, err := commands.NewRefundPaymentCommand(42, 0, "damaged")

		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}
