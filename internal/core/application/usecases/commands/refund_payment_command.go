package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrRefundPaymentCommandIsNotConstructed = errors.New(
		"RefundPaymentCommand must be created via NewRefundPaymentCommand constructor",
	)
)

const defaultRefundReason = "requested"

type RefundPaymentCommand struct { //nolint:recvcheck //using for validation
	scope  kernel.Scope
	reason string

	guard guard.ConstructorGuard
}

// NewRefundPaymentCommand builds a refund request. A blank reason is
// recorded as "requested".
func NewRefundPaymentCommand(orderID, companyID int64, reason string) (RefundPaymentCommand, error) {
	scope, err := kernel.NewScope(orderID, companyID)
	if err != nil {
		return RefundPaymentCommand{}, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultRefundReason
	}

	return RefundPaymentCommand{scope: scope, reason: reason, guard: guard.NewConstructorGuard()}, nil
}

func (c RefundPaymentCommand) Validate() error {
	return c.guard.Validate(ErrRefundPaymentCommandIsNotConstructed)
}

func (c RefundPaymentCommand) Scope() kernel.Scope { return c.scope }
func (c RefundPaymentCommand) Reason() string      { return c.reason }
