package payments

import (
	"context"

	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/pkg/errs"
)

// NotifyApproved tells every order paid by tx that the payment went through.
// The notification sentinel on the transaction is claimed first, so the
// fan-out happens once even when webhooks, polls and sweeps overlap. It
// returns the number of messages accepted by the notifier.
func (c *Coordinator) NotifyApproved(ctx context.Context, tx *payment.GatewayTransaction) (int, error) {
	if tx.State() != payment.StateApproved {
		return 0, errs.NewActionInvalidError("notify", tx.State().String())
	}

	at := c.clock()
	claimed, err := c.uowFactory.Create().TransactionRepository().ClaimNotification(ctx, tx.CompanyID(), tx.ID(), at)
	if err != nil {
		return 0, err
	}
	if !claimed {
		return 0, nil
	}
	tx.MarkNotified(at)
	return c.fanOut(ctx, tx, notification.EventPaymentApproved), nil
}

func (c *Coordinator) fanOut(ctx context.Context, tx *payment.GatewayTransaction, event notification.Event) int {
	if c.notifier == nil {
		return 0
	}

	sent := 0
	now := c.clock()
	for _, orderID := range tx.OrderIDs() {
		for _, audience := range []notification.Audience{notification.AudienceCustomer, notification.AudienceEmployee} {
			err := c.notifier.Dispatch(ctx, notification.Message{
				Event:         event,
				Audience:      audience,
				CompanyID:     tx.CompanyID(),
				OrderID:       orderID,
				TransactionID: tx.ID().String(),
				Data: map[string]string{
					"gateway": tx.GatewayCode().String(),
					"amount":  tx.Amount().String(),
				},
				At: now,
			})
			if err != nil {
				c.logger.WarnContext(ctx, "Notification not dispatched",
					"order_id", orderID, "transaction_id", tx.ID(), "event", event, "error", err)
				continue
			}
			sent++
		}
	}
	return sent
}
