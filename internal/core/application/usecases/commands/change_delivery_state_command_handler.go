package commands

import (
	"context"

	"fulfillment/internal/core/application/deliveryfsm"
)

// ChangeDeliveryStateCommandHandler resolves the order and the acting driver
// and hands both to the delivery state machine.
type ChangeDeliveryStateCommandHandler struct {
	fulfillment Fulfillment
}

func NewChangeDeliveryStateCommandHandler(f Fulfillment) ChangeDeliveryStateCommandHandler {
	return ChangeDeliveryStateCommandHandler{fulfillment: f}
}

func (h ChangeDeliveryStateCommandHandler) Handle(
	ctx context.Context,
	cmd ChangeDeliveryStateCommand,
) (deliveryfsm.Response, error) {
	if err := cmd.Validate(); err != nil {
		return deliveryfsm.Response{}, err
	}

	o, err := h.fulfillment.Order(ctx, cmd.Scope())
	if err != nil {
		return deliveryfsm.Response{}, err
	}

	d, err := h.fulfillment.Driver(ctx, cmd.Scope().CompanyID, cmd.DriverID())
	if err != nil {
		return deliveryfsm.Response{}, err
	}

	return h.fulfillment.ChangeDeliveryState(ctx, o, d, cmd.Action(), cmd.Collect())
}
