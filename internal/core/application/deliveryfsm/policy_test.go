package deliveryfsm_test

import (
	"testing"

	"fulfillment/internal/core/application/deliveryfsm"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPaymentPolicy_SettlesOnDelivery(t *testing.T) {
	build := func(t *testing.T, app string, method order.PaymentMethod, state order.PaymentState) *order.Order {
		o, err := order.Restore(order.Snapshot{
			ID: 42, CompanyID: 7, AppCode: app, StatusID: 3, Status: order.Dispatched,
			DeliveryState: delivery.NotAssigned, PaymentState: state, PaymentMethod: method,
			Type: order.TypeDelivery, Total: kernel.MustMoney("10.00", "PEN"),
		})
		require.NoError(t, err)
		return o
	}
	policy := deliveryfsm.DefaultPaymentPolicy{ExemptApps: []string{"marketplace"}}

	t.Run("should settle cash and card on delivery", func(t *testing.T) {
		assert.True(t, policy.SettlesOnDelivery(build(t, "shop", order.MethodCashOnDelivery, order.PaymentPending)))
		assert.True(t, policy.SettlesOnDelivery(build(t, "shop", order.MethodCardOnDelivery, order.PaymentPending)))
	})

	t.Run("should not settle online payments", func(t *testing.T) {
		assert.False(t, policy.SettlesOnDelivery(build(t, "shop", order.MethodOnline, order.PaymentPending)))
	})

	t.Run("should not settle twice", func(t *testing.T) {
		assert.False(t, policy.SettlesOnDelivery(build(t, "shop", order.MethodCashOnDelivery, order.PaymentPaid)))
	})

	t.Run("should skip exempt apps", func(t *testing.T) {
		assert.False(t, policy.SettlesOnDelivery(build(t, "marketplace", order.MethodCashOnDelivery, order.PaymentPending)))
	})
}
