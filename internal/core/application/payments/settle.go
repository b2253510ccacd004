package payments

import (
	"context"
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
)

// ConfirmTransaction applies a gateway callback to the order's current
// transaction. Callbacks carrying an authorization token are captured,
// the others are validated. Once the transaction is terminal the stored
// outcome is returned without calling the gateway.
func (c *Coordinator) ConfirmTransaction(ctx context.Context, o *order.Order, payload ports.WebhookPayload) (Outcome, error) {
	tx, err := c.current(ctx, o)
	if err != nil {
		return Outcome{}, err
	}
	if tx.IsTerminal() {
		return outcomeOf(tx, false), nil
	}

	gw, creds, err := c.gateway(ctx, authFor(tx), tx.GatewayCode())
	if err != nil {
		return Outcome{}, err
	}
	req := ports.TransactionRequest{
		Transaction: tx,
		Session:     o.CheckoutSession(),
		Payload:     payload,
		Credentials: creds,
	}

	var result ports.GatewayResult
	if payload.AuthorizationToken != "" {
		err = c.call(ctx, tx.GatewayCode(), "authorizeTransaction", func(ctx context.Context) error {
			result, err = gw.AuthorizeTransaction(ctx, req)
			return err
		})
	} else {
		err = c.call(ctx, tx.GatewayCode(), "validateTransaction", func(ctx context.Context) error {
			result, err = gw.ValidateTransaction(ctx, req)
			return err
		})
	}
	if err != nil {
		return Outcome{}, err
	}
	return c.settle(ctx, o, tx, result, "confirm")
}

// StatusPoll asks the gateway for the state of the order's current transaction.
func (c *Coordinator) StatusPoll(ctx context.Context, o *order.Order) (Outcome, error) {
	tx, err := c.current(ctx, o)
	if err != nil {
		return Outcome{}, err
	}
	return c.poll(ctx, o, tx)
}

// PollTransaction is StatusPoll for a transaction picked by a sweep.
func (c *Coordinator) PollTransaction(ctx context.Context, tx *payment.GatewayTransaction) (Outcome, error) {
	if err := tx.Validate(); err != nil {
		return Outcome{}, err
	}
	if tx.IsTerminal() {
		return outcomeOf(tx, false), nil
	}
	o, err := c.loadOrder(ctx, tx)
	if err != nil {
		return Outcome{}, err
	}
	return c.poll(ctx, o, tx)
}

func (c *Coordinator) poll(ctx context.Context, o *order.Order, tx *payment.GatewayTransaction) (Outcome, error) {
	if tx.IsTerminal() {
		return outcomeOf(tx, false), nil
	}

	gw, creds, err := c.gateway(ctx, authFor(tx), tx.GatewayCode())
	if err != nil {
		return Outcome{}, err
	}

	var result ports.GatewayResult
	err = c.call(ctx, tx.GatewayCode(), "getStatusTransaction", func(ctx context.Context) error {
		result, err = gw.GetStatusTransaction(ctx, ports.TransactionRequest{
			Transaction: tx,
			Session:     o.CheckoutSession(),
			Credentials: creds,
		})
		return err
	})
	if err != nil {
		return Outcome{}, err
	}
	return c.settle(ctx, o, tx, result, "poll")
}

// settle writes a gateway result. A pending or unchanged result writes
// nothing. A lost race reloads the transaction and returns what the winner
// stored.
func (c *Coordinator) settle(
	ctx context.Context, o *order.Order, tx *payment.GatewayTransaction, result ports.GatewayResult, action string,
) (Outcome, error) {
	if result.State == payment.StatePending || result.State == tx.State() {
		return outcomeOf(tx, false), nil
	}

	now := c.clock()
	classification := payment.Classification{
		State:       result.State,
		ReferenceID: result.ReferenceID,
		RawResponse: result.Raw,
		PaidAt:      result.PaidAt,
	}
	if result.ErrorCode != "" {
		classification.GatewayErrorCode = payment.NormalizeErrorCode(tx.GatewayCode(), result.ErrorCode)
	}
	if err := tx.ApplyClassification(classification, now); err != nil {
		return Outcome{}, err
	}

	paymentState := orderPaymentState(tx.State(), false)
	entry := order.LogEntry{
		Kind:   order.LogPayment,
		From:   string(o.PaymentState()),
		To:     string(paymentState),
		Action: action,
		At:     now,
		Data: map[string]string{
			"gateway":       tx.GatewayCode().String(),
			"transactionId": tx.ID().String(),
			"state":         tx.State().String(),
		},
	}
	if classification.GatewayErrorCode != "" {
		entry.Data["errorCode"] = classification.GatewayErrorCode
	}
	next := o.WithPaymentOutcome(order.PaymentOutcome{
		State:     paymentState,
		ErrorCode: classification.GatewayErrorCode,
		Entry:     entry,
	})

	stored, superseded, err := c.write(ctx, tx, next, entry)
	if err != nil {
		return Outcome{}, err
	}
	if stored != nil {
		c.logger.InfoContext(ctx, "Transaction already settled",
			"transaction_id", tx.ID(), "state", stored.State(), "via", action)
		return outcomeOf(stored, false), nil
	}
	if superseded {
		// the order moved on to a newer checkout; only the ledger row changes
		c.logger.WarnContext(ctx, "Superseded transaction settled",
			"transaction_id", tx.ID(), "order_id", o.ID(), "company_id", o.CompanyID(),
			"gateway", tx.GatewayCode(), "state", tx.State(), "via", action)
		return outcomeOf(tx, true), nil
	}
	*o = *next

	c.logger.InfoContext(ctx, "Transaction settled",
		"transaction_id", tx.ID(), "order_id", o.ID(), "company_id", o.CompanyID(),
		"gateway", tx.GatewayCode(), "state", tx.State(), "via", action)

	if tx.State() == payment.StateApproved {
		if _, err = c.NotifyApproved(ctx, tx); err != nil {
			c.logger.WarnContext(ctx, "Approval fan-out failed", "transaction_id", tx.ID(), "error", err)
		}
	}
	return outcomeOf(tx, true), nil
}

// write persists a classified transaction and, while the order still points
// at it, the order's payment outcome, in one unit of work. When the guard on
// the transaction matched nothing it returns the stored row. superseded
// reports that only the transaction was written.
func (c *Coordinator) write(
	ctx context.Context, tx *payment.GatewayTransaction, next *order.Order, entry order.LogEntry,
) (stored *payment.GatewayTransaction, superseded bool, err error) {
	uow := c.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, false, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	err = uow.TransactionRepository().ApplyOutcome(ctx, tx)
	if errors.Is(err, ports.ErrStaleWrite) {
		_ = uow.Rollback(ctx)
		stored, err = c.uowFactory.Create().TransactionRepository().Get(ctx, tx.CompanyID(), tx.ID())
		if err != nil {
			return nil, false, fmt.Errorf("reload settled transaction %s: %w", tx.ID(), err)
		}
		return stored, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("settle transaction %s: %w", tx.ID(), err)
	}

	if isCurrent(next, tx) {
		err = uow.OrderRepository().ApplyPaymentPatch(ctx, ports.PaymentPatch{
			Scope:         next.Scope(),
			TransactionID: tx.ID(),
			Next:          next,
			Log:           []order.LogEntry{entry},
		})
	} else {
		err = ports.ErrStaleWrite
	}
	switch {
	case errors.Is(err, ports.ErrStaleWrite):
		superseded = true
	case err != nil:
		return nil, false, fmt.Errorf("record payment of order %d: %w", next.ID(), err)
	}
	return nil, superseded, uow.Commit(ctx)
}

// isCurrent reports whether o still points at tx.
func isCurrent(o *order.Order, tx *payment.GatewayTransaction) bool {
	id := o.GatewayTransactionID()
	return id != nil && id.IsEqual(tx.ID())
}
