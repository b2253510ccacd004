package commands

import (
	"context"

	"fulfillment/internal/core/application/payments"
)

type InitiateCheckoutCommandHandler struct {
	fulfillment Fulfillment
	payments    Payments
}

func NewInitiateCheckoutCommandHandler(f Fulfillment, p Payments) InitiateCheckoutCommandHandler {
	return InitiateCheckoutCommandHandler{fulfillment: f, payments: p}
}

func (h InitiateCheckoutCommandHandler) Handle(
	ctx context.Context,
	cmd InitiateCheckoutCommand,
) (payments.Checkout, error) {
	if err := cmd.Validate(); err != nil {
		return payments.Checkout{}, err
	}

	o, err := h.fulfillment.Order(ctx, cmd.Scope())
	if err != nil {
		return payments.Checkout{}, err
	}

	return h.payments.InitiateCheckout(ctx, o, cmd.Gateway(), cmd.Auth(), cmd.Related()...)
}
