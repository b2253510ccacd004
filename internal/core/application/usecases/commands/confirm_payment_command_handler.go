package commands

import (
	"context"
	"fmt"

	"fulfillment/internal/core/application/payments"
	"fulfillment/internal/pkg/errs"
)

// ConfirmPaymentCommandHandler settles an order's transaction from a gateway
// callback. Callbacks naming another gateway than the order's are refused.
type ConfirmPaymentCommandHandler struct {
	fulfillment Fulfillment
	payments    Payments
}

func NewConfirmPaymentCommandHandler(f Fulfillment, p Payments) ConfirmPaymentCommandHandler {
	return ConfirmPaymentCommandHandler{fulfillment: f, payments: p}
}

func (h ConfirmPaymentCommandHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (payments.Outcome, error) {
	if err := cmd.Validate(); err != nil {
		return payments.Outcome{}, err
	}

	o, err := h.fulfillment.Order(ctx, cmd.Scope())
	if err != nil {
		return payments.Outcome{}, err
	}
	if o.GatewayCode() != cmd.Gateway() {
		return payments.Outcome{}, errs.NewValueIsInvalidErrorWithCause("gateway",
			fmt.Errorf("order %d is paid through %q", o.ID(), o.GatewayCode()))
	}

	return h.payments.ConfirmTransaction(ctx, o, cmd.Payload())
}
