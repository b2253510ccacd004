// Package mocks holds testify mocks of the ports shared by application and
// adapter tests.
package mocks

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type PaymentGateway struct{ mock.Mock }

func (m *PaymentGateway) GetPaymentLink(ctx context.Context, req ports.CheckoutRequest) (ports.CheckoutSession, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.CheckoutSession), args.Error(1)
}

func (m *PaymentGateway) GetCheckoutInformation(ctx context.Context, req ports.CheckoutRequest) (ports.CheckoutSession, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.CheckoutSession), args.Error(1)
}

func (m *PaymentGateway) ValidateTransaction(ctx context.Context, req ports.TransactionRequest) (ports.GatewayResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.GatewayResult), args.Error(1)
}

func (m *PaymentGateway) AuthorizeTransaction(ctx context.Context, req ports.TransactionRequest) (ports.GatewayResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.GatewayResult), args.Error(1)
}

func (m *PaymentGateway) GetPaymentGatewayInformation() ports.GatewayInformation {
	args := m.Called()
	return args.Get(0).(ports.GatewayInformation)
}

func (m *PaymentGateway) GetStatusTransaction(ctx context.Context, req ports.TransactionRequest) (ports.GatewayResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.GatewayResult), args.Error(1)
}

func (m *PaymentGateway) GetRefundTransaction(ctx context.Context, req ports.RefundRequest) (ports.RefundResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.RefundResult), args.Error(1)
}

func (m *PaymentGateway) GetAllTransaction(ctx context.Context, req ports.ListRequest) ([]ports.GatewayResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.GatewayResult), args.Error(1)
}

func (m *PaymentGateway) SaveTransaction(ctx context.Context, req ports.TransactionRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *PaymentGateway) GetCurrency(ctx context.Context, creds ports.Credentials) (string, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Error(1)
}

func (m *PaymentGateway) GetTotalPayment(ctx context.Context, req ports.TotalRequest) (kernel.Money, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(kernel.Money), args.Error(1)
}

type GatewayFactory struct{ mock.Mock }

func (m *GatewayFactory) For(code payment.GatewayCode) (ports.PaymentGateway, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.PaymentGateway), args.Error(1)
}

type CredentialStore struct{ mock.Mock }

func (m *CredentialStore) GetCredentials(ctx context.Context, auth ports.AuthContext, query ports.CredentialQuery) (ports.Credentials, error) {
	args := m.Called(ctx, auth, query)
	return args.Get(0).(ports.Credentials), args.Error(1)
}

type Notifier struct{ mock.Mock }

func (m *Notifier) Dispatch(ctx context.Context, msg notification.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// Sent returns the messages dispatched so far.
func (m *Notifier) Sent() []notification.Message {
	var out []notification.Message
	for _, call := range m.Calls {
		if call.Method == "Dispatch" {
			out = append(out, call.Arguments.Get(1).(notification.Message))
		}
	}
	return out
}

type DeliveryClient struct{ mock.Mock }

func (m *DeliveryClient) Create(ctx context.Context, req ports.ShipmentRequest) (delivery.Tracking, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(delivery.Tracking), args.Error(1)
}

func (m *DeliveryClient) GetPrice(ctx context.Context, req ports.QuoteRequest) (delivery.Quote, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(delivery.Quote), args.Error(1)
}

func (m *DeliveryClient) UpdateStatus(ctx context.Context, status ports.ShipmentStatus) error {
	args := m.Called(ctx, status)
	return args.Error(0)
}

type DeliveryClientFactory struct{ mock.Mock }

func (m *DeliveryClientFactory) For(code delivery.CarrierCode) (ports.DeliveryClient, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.DeliveryClient), args.Error(1)
}

type Locker struct{ mock.Mock }

func (m *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (ports.Unlock, bool, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(ports.Unlock), args.Bool(1), args.Error(2)
}
