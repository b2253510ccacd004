package commands_test

import (
	"context"

	"fulfillment/internal/core/application/deliveryfsm"
	"fulfillment/internal/core/application/fulfillment"
	"fulfillment/internal/core/application/payments"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type mockFulfillment struct{ mock.Mock }

func (m *mockFulfillment) Order(ctx context.Context, scope kernel.Scope) (*order.Order, error) {
	args := m.Called(ctx, scope)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *mockFulfillment) Driver(ctx context.Context, companyID, id int64) (*driver.Driver, error) {
	args := m.Called(ctx, companyID, id)
	d, _ := args.Get(0).(*driver.Driver)
	return d, args.Error(1)
}

func (m *mockFulfillment) ChangeOrderState(
	ctx context.Context, o *order.Order, action order.Action,
) (fulfillment.StatusChange, error) {
	args := m.Called(ctx, o, action)
	return args.Get(0).(fulfillment.StatusChange), args.Error(1)
}

func (m *mockFulfillment) ChangeDeliveryState(
	ctx context.Context, o *order.Order, d *driver.Driver, action delivery.Action, collect *deliveryfsm.CollectData,
) (deliveryfsm.Response, error) {
	args := m.Called(ctx, o, d, action, collect)
	return args.Get(0).(deliveryfsm.Response), args.Error(1)
}

type mockPayments struct{ mock.Mock }

func (m *mockPayments) InitiateCheckout(
	ctx context.Context, o *order.Order, code payment.GatewayCode, auth ports.AuthContext, related ...int64,
) (payments.Checkout, error) {
	args := m.Called(ctx, o, code, auth, related)
	return args.Get(0).(payments.Checkout), args.Error(1)
}

func (m *mockPayments) ConfirmTransaction(
	ctx context.Context, o *order.Order, payload ports.WebhookPayload,
) (payments.Outcome, error) {
	args := m.Called(ctx, o, payload)
	return args.Get(0).(payments.Outcome), args.Error(1)
}

func (m *mockPayments) Refund(ctx context.Context, o *order.Order, reason string) (payments.Outcome, error) {
	args := m.Called(ctx, o, reason)
	return args.Get(0).(payments.Outcome), args.Error(1)
}
