package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const refundLeaseMargin = 30 * time.Second

// Refund returns the order's approved payment. The refund is recorded as its
// own transaction and the original is canceled, both in one unit of work.
// The transaction is leased before the gateway is called, so concurrent
// refunds of one payment reach the gateway once.
//
// Errors:
//   - errs.ErrAlreadyCanceled when the payment was already refunded
//   - errs.ErrRefundInProgress while another refund of the payment runs
//   - errs.ErrActionInvalid when the payment is not approved
//   - errs.ErrRefundWindowExceeded past the gateway's refund window
func (c *Coordinator) Refund(ctx context.Context, o *order.Order, reason string) (Outcome, error) {
	tx, err := c.current(ctx, o)
	if err != nil {
		return Outcome{}, err
	}

	unlock, acquired, err := c.locker.TryLock(ctx, "refund:"+tx.ID().String(), c.cfg.GatewayTimeout+refundLeaseMargin)
	if err != nil {
		return Outcome{}, fmt.Errorf("lease refund of %s: %w", tx.ID(), err)
	}
	if !acquired {
		return Outcome{}, errs.NewRefundInProgressError(tx.ID().String())
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			c.logger.WarnContext(ctx, "Refund lease not released", "transaction_id", tx.ID(), "error", err)
		}
	}()

	// re-read under the lease: a refund finishing before it was taken is visible now
	tx, err = c.uowFactory.Create().TransactionRepository().Get(ctx, tx.CompanyID(), tx.ID())
	if err != nil {
		return Outcome{}, fmt.Errorf("load transaction of order %d: %w", o.ID(), err)
	}
	if tx.State() == payment.StateCanceled {
		return Outcome{}, errs.NewAlreadyCanceledError(tx.ID().String())
	}
	if tx.State() != payment.StateApproved {
		return Outcome{}, errs.NewActionInvalidError("refund", tx.State().String())
	}

	now := c.clock()
	deadline := tx.RefundDeadline()
	if tx.GatewayCode().RefundWindow() == 0 || now.After(deadline) {
		return Outcome{}, errs.NewRefundWindowExceededError(tx.ID().String(), deadline)
	}

	gw, creds, err := c.gateway(ctx, authFor(tx), tx.GatewayCode())
	if err != nil {
		return Outcome{}, err
	}
	var res ports.RefundResult
	err = c.call(ctx, tx.GatewayCode(), "getRefundTransaction", func(ctx context.Context) error {
		res, err = gw.GetRefundTransaction(ctx, ports.RefundRequest{Transaction: tx, Reason: reason, Credentials: creds})
		return err
	})
	if err != nil {
		return Outcome{}, err
	}

	refund, err := payment.NewRefundTransaction(tx, res.ReferenceID, res.Raw, now)
	if err != nil {
		return Outcome{}, err
	}
	if err = tx.Cancel(); err != nil {
		return Outcome{}, err
	}

	entry := order.LogEntry{
		Kind:   order.LogPayment,
		From:   string(o.PaymentState()),
		To:     string(order.PaymentRefunded),
		Action: "refund",
		At:     now,
		Data: map[string]string{
			"gateway":       tx.GatewayCode().String(),
			"transactionId": tx.ID().String(),
			"refundId":      refund.ID().String(),
		},
	}
	if reason != "" {
		entry.Data["reason"] = reason
	}
	next := o.WithPaymentOutcome(order.PaymentOutcome{State: order.PaymentRefunded, Entry: entry})

	if err = c.writeRefund(ctx, tx, refund, next, entry); err != nil {
		return Outcome{}, err
	}
	*o = *next

	c.logger.InfoContext(ctx, "Payment refunded",
		"transaction_id", tx.ID(), "refund_id", refund.ID(), "order_id", o.ID(), "company_id", o.CompanyID())
	c.fanOut(ctx, tx, notification.EventRefundIssued)

	out := outcomeOf(tx, true)
	refundID := refund.ID()
	out.RefundID = &refundID
	return out, nil
}

func (c *Coordinator) writeRefund(
	ctx context.Context, original, refund *payment.GatewayTransaction, next *order.Order, entry order.LogEntry,
) error {
	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.TransactionRepository().Create(ctx, refund); err != nil {
		return fmt.Errorf("record refund of %s: %w", original.ID(), err)
	}
	err := uow.TransactionRepository().Cancel(ctx, original)
	if errors.Is(err, ports.ErrStaleWrite) {
		return errs.NewAlreadyCanceledError(original.ID().String())
	}
	if err != nil {
		return fmt.Errorf("cancel transaction %s: %w", original.ID(), err)
	}
	err = uow.OrderRepository().ApplyPaymentPatch(ctx, ports.PaymentPatch{
		Scope:         next.Scope(),
		TransactionID: original.ID(),
		Next:          next,
		Log:           []order.LogEntry{entry},
	})
	if err != nil {
		return fmt.Errorf("record refund of order %d: %w", next.ID(), err)
	}
	return uow.Commit(ctx)
}
