package queries_test

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type mockGateways struct{ mock.Mock }

func (m *mockGateways) GatewayInformation(code payment.GatewayCode) (ports.GatewayInformation, error) {
	args := m.Called(code)
	return args.Get(0).(ports.GatewayInformation), args.Error(1)
}

func (m *mockGateways) GatewayTransactions(
	ctx context.Context, auth ports.AuthContext, code payment.GatewayCode, from, to time.Time,
) ([]ports.GatewayResult, error) {
	args := m.Called(ctx, auth, code, from, to)
	results, _ := args.Get(0).([]ports.GatewayResult)
	return results, args.Error(1)
}

type mockQuotes struct{ mock.Mock }

func (m *mockQuotes) Order(ctx context.Context, scope kernel.Scope) (*order.Order, error) {
	args := m.Called(ctx, scope)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *mockQuotes) QuoteDelivery(ctx context.Context, o *order.Order) (delivery.Quote, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(delivery.Quote), args.Error(1)
}
