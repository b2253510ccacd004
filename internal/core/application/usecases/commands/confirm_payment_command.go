package commands

import (
	"errors"
	"maps"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrConfirmPaymentCommandIsNotConstructed = errors.New(
		"ConfirmPaymentCommand must be created via NewConfirmPaymentCommand constructor",
	)
)

// ConfirmPaymentCommand carries a gateway callback for an order's current
// transaction.
type ConfirmPaymentCommand struct { //nolint:recvcheck //using for validation
	scope   kernel.Scope
	gateway payment.GatewayCode
	payload ports.WebhookPayload

	guard guard.ConstructorGuard
}

func NewConfirmPaymentCommand(
	orderID, companyID int64,
	gateway string,
	body []byte,
	headers map[string]string,
	authorizationToken string,
) (ConfirmPaymentCommand, error) {
	cmd := ConfirmPaymentCommand{
		payload: ports.WebhookPayload{
			Body:               body,
			Headers:            maps.Clone(headers),
			AuthorizationToken: authorizationToken,
		},
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setScope(orderID, companyID),
		cmd.setGateway(gateway),
		cmd.checkPayload(),
	); err != nil {
		return ConfirmPaymentCommand{}, err
	}

	return cmd, nil
}

func (c ConfirmPaymentCommand) Validate() error {
	return c.guard.Validate(ErrConfirmPaymentCommandIsNotConstructed)
}

func (c ConfirmPaymentCommand) Scope() kernel.Scope           { return c.scope }
func (c ConfirmPaymentCommand) Gateway() payment.GatewayCode  { return c.gateway }
func (c ConfirmPaymentCommand) Payload() ports.WebhookPayload { return c.payload }

func (c *ConfirmPaymentCommand) setScope(orderID, companyID int64) error {
	scope, err := kernel.NewScope(orderID, companyID)
	if err != nil {
		return err
	}

	c.scope = scope
	return nil
}

func (c *ConfirmPaymentCommand) setGateway(raw string) error {
	code, err := payment.ParseGatewayCode(raw)
	if err != nil {
		return err
	}

	c.gateway = code
	return nil
}

func (c *ConfirmPaymentCommand) checkPayload() error {
	if len(c.payload.Body) == 0 && c.payload.AuthorizationToken == "" {
		return errs.NewValueIsRequiredError("payload")
	}
	return nil
}
