package commands

import (
	"errors"
	"slices"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrInitiateCheckoutCommandIsNotConstructed = errors.New(
		"InitiateCheckoutCommand must be created via NewInitiateCheckoutCommand constructor",
	)
)

// InitiateCheckoutCommand opens (or reuses) a gateway checkout for an order.
// Related orders are paid by the same transaction.
//
// Example:
//
//	cmd, err := NewInitiateCheckoutCommand(42, 7, "mercadopago", "shop", "sandbox", nil)
//	if err != nil {
//	    return err
//	}
//	checkout, err := handler.Handle(ctx, cmd)
//	// redirect the customer to checkout.URL
type InitiateCheckoutCommand struct { //nolint:recvcheck //using for validation
	scope       kernel.Scope
	gateway     payment.GatewayCode
	appCode     string
	environment string
	related     []int64

	guard guard.ConstructorGuard
}

func NewInitiateCheckoutCommand(
	orderID, companyID int64,
	gateway, appCode, environment string,
	related []int64,
) (InitiateCheckoutCommand, error) {
	cmd := InitiateCheckoutCommand{
		appCode:     appCode,
		environment: environment,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setScope(orderID, companyID),
		cmd.setGateway(gateway),
		cmd.setRelated(related),
	); err != nil {
		return InitiateCheckoutCommand{}, err
	}

	return cmd, nil
}

func (c InitiateCheckoutCommand) Validate() error {
	return c.guard.Validate(ErrInitiateCheckoutCommandIsNotConstructed)
}

func (c InitiateCheckoutCommand) Scope() kernel.Scope          { return c.scope }
func (c InitiateCheckoutCommand) Gateway() payment.GatewayCode { return c.gateway }
func (c InitiateCheckoutCommand) Related() []int64             { return slices.Clone(c.related) }

// Auth is the tenant context credentials are resolved for.
func (c InitiateCheckoutCommand) Auth() ports.AuthContext {
	return ports.AuthContext{CompanyID: c.scope.CompanyID, AppCode: c.appCode, Environment: c.environment}
}

func (c *InitiateCheckoutCommand) setScope(orderID, companyID int64) error {
	scope, err := kernel.NewScope(orderID, companyID)
	if err != nil {
		return err
	}

	c.scope = scope
	return nil
}

func (c *InitiateCheckoutCommand) setGateway(raw string) error {
	code, err := payment.ParseGatewayCode(raw)
	if err != nil {
		return err
	}

	c.gateway = code
	return nil
}

func (c *InitiateCheckoutCommand) setRelated(related []int64) error {
	for _, id := range related {
		if id <= 0 {
			return errs.NewValueIsInvalidError("relatedOrderIds")
		}
	}

	c.related = slices.Clone(related)
	return nil
}
