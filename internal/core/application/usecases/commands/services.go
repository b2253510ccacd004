package commands

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
)

// Fulfillment is the part of fulfillment.Facade the handlers drive.
type Fulfillment interface {
	Order(ctx context.Context, scope kernel.Scope) (*order.Order, error)
	Driver(ctx context.Context, companyID, id int64) (*driver.Driver, error)
	ChangeOrderState(ctx context.Context, o *order.Order, action order.Action) (fulfillment.StatusChange, error)
	ChangeDeliveryState(
		ctx context.Context, o *order.Order, d *driver.Driver, action delivery.Action, collect *deliveryfsm.CollectData,
	) (deliveryfsm.Response, error)
}

// Payments is the part of payments.Coordinator the handlers drive.
type Payments interface {
	InitiateCheckout(
		ctx context.Context, o *order.Order, code payment.GatewayCode, auth ports.AuthContext, related ...int64,
	) (payments.Checkout, error)
	ConfirmTransaction(ctx context.Context, o *order.Order, payload ports.WebhookPayload) (payments.Outcome, error)
	Refund(ctx context.Context, o *order.Order, reason string) (payments.Outcome, error)
}

var (
	_ Fulfillment = (*fulfillment.Facade)(nil)
	_ Payments    = (*payments.Coordinator)(nil)
)
