package commands

import (
	"errors"

	"fulfillment/internal/core/application/deliveryfsm"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrChangeDeliveryStateCommandIsNotConstructed = errors.New(
		"ChangeDeliveryStateCommand must be created via NewChangeDeliveryStateCommand constructor",
	)
)

// ChangeDeliveryStateCommand is a driver moving a delivery leg forward.
// Collect is only read on the transition that hands the order over.
type ChangeDeliveryStateCommand struct { //nolint:recvcheck //using for validation
	scope    kernel.Scope
	driverID int64
	action   delivery.Action
	collect  *deliveryfsm.CollectData

	guard guard.ConstructorGuard
}

func NewChangeDeliveryStateCommand(
	orderID, companyID, driverID int64,
	action string,
	collect *deliveryfsm.CollectData,
) (ChangeDeliveryStateCommand, error) {
	cmd := ChangeDeliveryStateCommand{
		collect: collect,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setScope(orderID, companyID),
		cmd.setDriverID(driverID),
		cmd.setAction(action),
	); err != nil {
		return ChangeDeliveryStateCommand{}, err
	}

	return cmd, nil
}

func (c ChangeDeliveryStateCommand) Validate() error {
	return c.guard.Validate(ErrChangeDeliveryStateCommandIsNotConstructed)
}

func (c ChangeDeliveryStateCommand) Scope() kernel.Scope               { return c.scope }
func (c ChangeDeliveryStateCommand) DriverID() int64                   { return c.driverID }
func (c ChangeDeliveryStateCommand) Action() delivery.Action           { return c.action }
func (c ChangeDeliveryStateCommand) Collect() *deliveryfsm.CollectData { return c.collect }

func (c *ChangeDeliveryStateCommand) setScope(orderID, companyID int64) error {
	scope, err := kernel.NewScope(orderID, companyID)
	if err != nil {
		return err
	}

	c.scope = scope
	return nil
}

func (c *ChangeDeliveryStateCommand) setDriverID(id int64) error {
	if id <= 0 {
		return errs.NewValueIsRequiredError("driverId")
	}

	c.driverID = id
	return nil
}

func (c *ChangeDeliveryStateCommand) setAction(raw string) error {
	action, err := delivery.ParseAction(raw)
	if err != nil {
		return err
	}

	c.action = action
	return nil
}
