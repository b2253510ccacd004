package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// InitiateCheckout opens a hosted checkout for o on the gateway code and
// records it as a PENDING transaction. A live checkout for the same order,
// gateway and amount is returned instead of opening a second one.
// related lists other orders paid by the same checkout.
//
// Example:
//
//	co, err := coordinator.InitiateCheckout(ctx, o, payment.Mercadopago,
//	    ports.AuthContext{CompanyID: 7, AppCode: "shop"})
//	if errors.Is(err, errs.ErrGatewayMisconfigured) {
//	    // the tenant has no mercadopago credentials
//	}
//	redirect(co.URL)
func (c *Coordinator) InitiateCheckout(
	ctx context.Context, o *order.Order, code payment.GatewayCode, auth ports.AuthContext, related ...int64,
) (Checkout, error) {
	if err := o.Validate(); err != nil {
		return Checkout{}, err
	}
	if err := code.Validate(); err != nil {
		return Checkout{}, err
	}
	if !o.Total().IsPositive() {
		return Checkout{}, errs.NewValueIsInvalidErrorWithCause("total", errors.New("must be positive"))
	}
	if o.PaymentState() == order.PaymentPaid || o.Status() == order.Canceled {
		return Checkout{}, errs.NewActionInvalidError("checkout", string(o.PaymentState()))
	}
	auth.CompanyID = o.CompanyID()
	if auth.AppCode == "" {
		auth.AppCode = o.AppCode()
	}

	gw, creds, err := c.gateway(ctx, auth, code)
	if err != nil {
		return Checkout{}, err
	}
	logger := c.logger.With("order_id", o.ID(), "company_id", o.CompanyID(), "gateway", code)
	now := c.clock()

	if err = c.checkCurrency(ctx, gw, code, creds, o.Total()); err != nil {
		return Checkout{}, err
	}

	amount := o.Total()
	err = c.call(ctx, code, "getTotalPayment", func(ctx context.Context) error {
		total, err := gw.GetTotalPayment(ctx, ports.TotalRequest{Amount: o.Total(), Credentials: creds})
		if err != nil {
			return err
		}
		amount = total
		return nil
	})
	if err != nil && !errors.Is(err, errs.ErrFunctionNotImplemented) {
		return Checkout{}, err
	}

	if live, ok := c.liveCheckout(ctx, o, code); ok && live.Amount().Equal(amount) {
		logger.InfoContext(ctx, "Reusing live checkout", "transaction_id", live.ID())
		return Checkout{
			TransactionID: live.ID(),
			Code:          live.Code(),
			Gateway:       code,
			URL:           live.Additional().CheckoutURL,
			ReferenceID:   live.ReferenceID(),
			Amount:        live.Amount(),
			ExpiresAt:     live.DateExpiration(),
			Reused:        true,
		}, nil
	}

	ttl := c.cfg.CheckoutTTL
	if code.IsOffline() {
		ttl = c.cfg.OfflineCheckoutTTL
	}
	expiresAt := now.Add(ttl)
	req := ports.CheckoutRequest{
		Scope:           o.Scope(),
		TransactionCode: payment.IdempotencyCode(o.ID(), o.CompanyID(), code),
		Amount:          amount,
		Description:     "Order " + strconv.FormatInt(o.ID(), 10),
		ExpiresAt:       expiresAt,
		Credentials:     creds,
	}
	var session ports.CheckoutSession
	err = c.call(ctx, code, "getCheckoutInformation", func(ctx context.Context) error {
		session, err = gw.GetCheckoutInformation(ctx, req)
		if errors.Is(err, errs.ErrFunctionNotImplemented) {
			session, err = gw.GetPaymentLink(ctx, req)
		}
		return err
	})
	if err != nil {
		return Checkout{}, err
	}

	tx, err := payment.NewPaymentTransaction(payment.CheckoutParams{
		OrderID:         o.ID(),
		CompanyID:       o.CompanyID(),
		RelatedOrderIDs: related,
		Gateway:         code,
		Amount:          amount,
		ReferenceID:     session.ReferenceID,
		TokenGateway:    session.Token,
		Now:             now,
		ExpiresAt:       expiresAt,
		Additional: payment.AdditionalInformation{
			Environment:   creds.Environment,
			CredentialRef: auth.AppCode,
			CheckoutURL:   session.URL,
		},
	})
	if err != nil {
		return Checkout{}, err
	}

	err = c.call(ctx, code, "saveTransaction", func(ctx context.Context) error {
		return gw.SaveTransaction(ctx, ports.TransactionRequest{Transaction: tx, Session: session.Session, Credentials: creds})
	})
	if err != nil && !errors.Is(err, errs.ErrFunctionNotImplemented) {
		return Checkout{}, err
	}

	entry := order.LogEntry{
		Kind:   order.LogPayment,
		From:   string(o.PaymentState()),
		To:     string(order.PaymentPending),
		Action: "checkout",
		At:     now,
		Data:   map[string]string{"gateway": code.String(), "transactionId": tx.ID().String()},
	}
	next := o.WithCheckout(order.Checkout{
		TransactionID: tx.ID(),
		Gateway:       code,
		Session:       session.Session,
		Entry:         entry,
	})

	uow := c.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return Checkout{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.TransactionRepository().Create(ctx, tx); err != nil {
		return Checkout{}, fmt.Errorf("record checkout of order %d: %w", o.ID(), err)
	}
	err = uow.OrderRepository().ApplyCheckoutPatch(ctx, ports.CheckoutPatch{
		Scope: o.Scope(),
		Next:  next,
		Log:   []order.LogEntry{entry},
	})
	if err != nil {
		return Checkout{}, fmt.Errorf("link checkout to order %d: %w", o.ID(), err)
	}
	if err = uow.Commit(ctx); err != nil {
		return Checkout{}, err
	}
	*o = *next

	logger.InfoContext(ctx, "Checkout opened", "transaction_id", tx.ID(), "expires_at", expiresAt)
	return Checkout{
		TransactionID: tx.ID(),
		Code:          tx.Code(),
		Gateway:       code,
		URL:           session.URL,
		ReferenceID:   session.ReferenceID,
		Amount:        amount,
		ExpiresAt:     expiresAt,
	}, nil
}

// liveCheckout returns the order's latest payment on code when it can still be paid.
func (c *Coordinator) liveCheckout(ctx context.Context, o *order.Order, code payment.GatewayCode) (*payment.GatewayTransaction, bool) {
	tx, err := c.uowFactory.Create().TransactionRepository().
		FindLatestByCode(ctx, o.CompanyID(), payment.IdempotencyCode(o.ID(), o.CompanyID(), code))
	if err != nil {
		if !errors.Is(err, errs.ErrObjectNotFound) {
			c.logger.WarnContext(ctx, "Checkout lookup failed", "order_id", o.ID(), "error", err)
		}
		return nil, false
	}
	return tx, tx.IsReconcilable(c.clock())
}

// checkCurrency refuses to charge total on a gateway account settling in
// another currency. Gateways that cannot tell are trusted.
func (c *Coordinator) checkCurrency(
	ctx context.Context, gw ports.PaymentGateway, code payment.GatewayCode, creds ports.Credentials, total kernel.Money,
) error {
	var currency string
	err := c.call(ctx, code, "getCurrency", func(ctx context.Context) error {
		var err error
		currency, err = gw.GetCurrency(ctx, creds)
		return err
	})
	if errors.Is(err, errs.ErrFunctionNotImplemented) {
		return nil
	}
	if err != nil {
		return err
	}
	if currency != "" && !strings.EqualFold(currency, total.Currency()) {
		return errs.NewValueIsInvalidErrorWithCause("currency",
			fmt.Errorf("%s charges in %s, order total is in %s", code, strings.ToUpper(currency), total.Currency()))
	}
	return nil
}
