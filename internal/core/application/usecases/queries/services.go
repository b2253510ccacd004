package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/application/fulfillment"
	"fulfillment/internal/core/application/payments"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
)

// Gateways is the read side of payments.Coordinator the handlers use.
type Gateways interface {
	GatewayInformation(code payment.GatewayCode) (ports.GatewayInformation, error)
	GatewayTransactions(
		ctx context.Context, auth ports.AuthContext, code payment.GatewayCode, from, to time.Time,
	) ([]ports.GatewayResult, error)
}

// Quotes is the part of fulfillment.Facade the quote handler uses.
type Quotes interface {
	Order(ctx context.Context, scope kernel.Scope) (*order.Order, error)
	QuoteDelivery(ctx context.Context, o *order.Order) (delivery.Quote, error)
}

var (
	_ Gateways = (*payments.Coordinator)(nil)
	_ Quotes   = (*fulfillment.Facade)(nil)
)
