package commands

import (
	"context"

	"fulfillment/internal/core/application/fulfillment"
)

// ChangeOrderStateCommandHandler loads the order and runs the status
// transition through the fulfillment facade.
type ChangeOrderStateCommandHandler struct {
	fulfillment Fulfillment
}

func NewChangeOrderStateCommandHandler(f Fulfillment) ChangeOrderStateCommandHandler {
	return ChangeOrderStateCommandHandler{fulfillment: f}
}

func (h ChangeOrderStateCommandHandler) Handle(
	ctx context.Context,
	cmd ChangeOrderStateCommand,
) (fulfillment.StatusChange, error) {
	if err := cmd.Validate(); err != nil {
		return fulfillment.StatusChange{}, err
	}

	o, err := h.fulfillment.Order(ctx, cmd.Scope())
	if err != nil {
		return fulfillment.StatusChange{}, err
	}

	return h.fulfillment.ChangeOrderState(ctx, o, cmd.Action())
}
