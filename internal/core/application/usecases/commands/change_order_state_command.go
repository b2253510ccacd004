package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrChangeOrderStateCommandIsNotConstructed = errors.New(
		"ChangeOrderStateCommand must be created via NewChangeOrderStateCommand constructor",
	)
)

// ChangeOrderStateCommand asks for an order status transition.
//
// Example:
//
//	cmd, err := NewChangeOrderStateCommand(42, 7, "confirm")
//	if err != nil {
//	    return fmt.Errorf("invalid status change: %w", err)
//	}
//	change, err := handler.Handle(ctx, cmd)
type ChangeOrderStateCommand struct { //nolint:recvcheck //using for validation
	scope  kernel.Scope
	action order.Action

	guard guard.ConstructorGuard
}

// NewChangeOrderStateCommand validates the order scope and the action name.
func NewChangeOrderStateCommand(orderID, companyID int64, action string) (ChangeOrderStateCommand, error) {
	cmd := ChangeOrderStateCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setScope(orderID, companyID),
		cmd.setAction(action),
	); err != nil {
		return ChangeOrderStateCommand{}, err
	}

	return cmd, nil
}

func (c ChangeOrderStateCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStateCommandIsNotConstructed)
}

func (c ChangeOrderStateCommand) Scope() kernel.Scope  { return c.scope }
func (c ChangeOrderStateCommand) Action() order.Action { return c.action }

func (c *ChangeOrderStateCommand) setScope(orderID, companyID int64) error {
	scope, err := kernel.NewScope(orderID, companyID)
	if err != nil {
		return err
	}

	c.scope = scope
	return nil
}

func (c *ChangeOrderStateCommand) setAction(raw string) error {
	action, err := order.ParseAction(raw)
	if err != nil {
		return err
	}

	c.action = action
	return nil
}
