package commands

import (
	"context"

	"fulfillment/internal/core/application/payments"
)

type RefundPaymentCommandHandler struct {
	fulfillment Fulfillment
	payments    Payments
}

func NewRefundPaymentCommandHandler(f Fulfillment, p Payments) RefundPaymentCommandHandler {
	return RefundPaymentCommandHandler{fulfillment: f, payments: p}
}

func (h RefundPaymentCommandHandler) Handle(ctx context.Context, cmd RefundPaymentCommand) (payments.Outcome, error) {
	if err := cmd.Validate(); err != nil {
		return payments.Outcome{}, err
	}

	o, err := h.fulfillment.Order(ctx, cmd.Scope())
	if err != nil {
		return payments.Outcome{}, err
	}

	return h.payments.Refund(ctx, o, cmd.Reason())
}
