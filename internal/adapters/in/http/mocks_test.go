package http_test

import (
	"context"

	"fulfillment/internal/core/application/deliveryfsm"
	"fulfillment/internal/core/application/fulfillment"
	"fulfillment/internal/core/application/payments"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type mockChangeOrderState struct{ mock.Mock }

func (m *mockChangeOrderState) Handle(
	ctx context.Context, cmd commands.ChangeOrderStateCommand,
) (fulfillment.StatusChange, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(fulfillment.StatusChange), args.Error(1)
}

type mockChangeDeliveryState struct{ mock.Mock }

func (m *mockChangeDeliveryState) Handle(
	ctx context.Context, cmd commands.ChangeDeliveryStateCommand,
) (deliveryfsm.Response, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(deliveryfsm.Response), args.Error(1)
}

type mockInitiateCheckout struct{ mock.Mock }

func (m *mockInitiateCheckout) Handle(
	ctx context.Context, cmd commands.InitiateCheckoutCommand,
) (payments.Checkout, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(payments.Checkout), args.Error(1)
}

type mockConfirmPayment struct{ mock.Mock }

func (m *mockConfirmPayment) Handle(ctx context.Context, cmd commands.ConfirmPaymentCommand) (payments.Outcome, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(payments.Outcome), args.Error(1)
}

type mockRefundPayment struct{ mock.Mock }

func (m *mockRefundPayment) Handle(ctx context.Context, cmd commands.RefundPaymentCommand) (payments.Outcome, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(payments.Outcome), args.Error(1)
}

type mockAbandoned struct{ mock.Mock }

func (m *mockAbandoned) Handle(
	ctx context.Context, query queries.GetAbandonedTransactionsQuery,
) ([]queries.GetAbandonedTransactionsQueryResponse, error) {
	args := m.Called(ctx, query)
	rows, _ := args.Get(0).([]queries.GetAbandonedTransactionsQueryResponse)
	return rows, args.Error(1)
}

type mockStateLog struct{ mock.Mock }

func (m *mockStateLog) Handle(
	ctx context.Context, query queries.GetOrderStateLogQuery,
) ([]queries.GetOrderStateLogQueryResponse, error) {
	args := m.Called(ctx, query)
	rows, _ := args.Get(0).([]queries.GetOrderStateLogQueryResponse)
	return rows, args.Error(1)
}

type mockDeliveryQuote struct{ mock.Mock }

func (m *mockDeliveryQuote) Handle(
	ctx context.Context, query queries.GetDeliveryQuoteQuery,
) (queries.GetDeliveryQuoteQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.GetDeliveryQuoteQueryResponse), args.Error(1)
}

type mockGatewayInformation struct{ mock.Mock }

func (m *mockGatewayInformation) Handle(
	ctx context.Context, query queries.GetGatewayInformationQuery,
) (ports.GatewayInformation, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(ports.GatewayInformation), args.Error(1)
}

type mockGatewayTransactions struct{ mock.Mock }

func (m *mockGatewayTransactions) Handle(
	ctx context.Context, query queries.GetGatewayTransactionsQuery,
) ([]queries.GetGatewayTransactionsQueryResponse, error) {
	args := m.Called(ctx, query)
	rows, _ := args.Get(0).([]queries.GetGatewayTransactionsQueryResponse)
	return rows, args.Error(1)
}
