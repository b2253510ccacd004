package payments_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/testdb"
	"fulfillment/internal/core/application/payments"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/core/ports/mocks"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	start = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	auth  = ports.AuthContext{CompanyID: 7, AppCode: "shop"}
	creds = ports.Credentials{Environment: "sandbox", Values: map[string]string{"accessToken": "TEST-1"}}
)

type fixture struct {
	now         time.Time
	factory     *postgres.GormUnitOfWorkFactory
	gateway     *mocks.PaymentGateway
	credentials *mocks.CredentialStore
	notifier    *mocks.Notifier
	coordinator *payments.Coordinator
	order       *order.Order
}

func newFixture(t *testing.T, cfg payments.Config, with ...func(*payments.Deps)) *fixture {
	t.Helper()

	f := &fixture{
		now:         start,
		factory:     postgres.NewGormUnitOfWorkFactory(testdb.New(t)),
		gateway:     &mocks.PaymentGateway{},
		credentials: &mocks.CredentialStore{},
		notifier:    &mocks.Notifier{},
	}
	gateways := &mocks.GatewayFactory{}
	gateways.On("For", mock.Anything).Return(f.gateway, nil)
	f.credentials.On("GetCredentials", mock.Anything, mock.Anything, mock.Anything).Return(creds, nil).Maybe()
	f.notifier.On("Dispatch", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.gateway.On("GetCurrency", mock.Anything, mock.Anything).Return("PEN", nil).Maybe()
	f.gateway.On("GetTotalPayment", mock.Anything, mock.Anything).
		Return(kernel.Money{}, errs.NewFunctionNotImplementedError("mercadopago", "getTotalPayment")).Maybe()
	f.gateway.On("SaveTransaction", mock.Anything, mock.Anything).
		Return(errs.NewFunctionNotImplementedError("mercadopago", "saveTransaction")).Maybe()

	deps := payments.Deps{
		UnitOfWork:  f.factory,
		Gateways:    gateways,
		Credentials: f.credentials,
		Notifier:    f.notifier,
	}
	for _, fn := range with {
		fn(&deps)
	}
	coordinator, err := payments.New(cfg, deps, payments.WithClock(func() time.Time { return f.now }))
	require.NoError(t, err)
	f.coordinator = coordinator

	o, err := order.NewOrder(42, 7, order.StateRef{ID: 1, Code: order.Requested},
		order.TypeDelivery, order.MethodOnline, kernel.MustMoney("59.90", "PEN"))
	require.NoError(t, err)
	require.NoError(t, f.factory.Create().OrderRepository().Add(t.Context(), o))
	f.order = o
	return f
}

func (f *fixture) expectCheckout(referenceID string) *mock.Call {
	return f.gateway.On("GetCheckoutInformation", mock.Anything, mock.MatchedBy(func(req ports.CheckoutRequest) bool {
		return req.Scope.OrderID == 42 && req.Credentials.Get("accessToken") == "TEST-1"
	})).Return(ports.CheckoutSession{
		ReferenceID: referenceID,
		URL:         "https://checkout.example/" + referenceID,
		Session:     json.RawMessage(`{"preferenceId":"` + referenceID + `"}`),
	}, nil)
}

func (f *fixture) checkout(t *testing.T) payments.Checkout {
	t.Helper()

	f.expectCheckout("pref-1").Once()
	co, err := f.coordinator.InitiateCheckout(t.Context(), f.order, payment.Mercadopago, auth)
	require.NoError(t, err)
	return co
}

func (f *fixture) approve(t *testing.T) payments.Outcome {
	t.Helper()

	f.checkout(t)
	f.gateway.On("ValidateTransaction", mock.Anything, mock.Anything).
		Return(ports.GatewayResult{State: payment.StateApproved, ReferenceID: "pay-9", PaidAt: f.now}, nil).Once()
	out, err := f.coordinator.ConfirmTransaction(t.Context(), f.order, ports.WebhookPayload{Body: []byte(`{}`)})
	require.NoError(t, err)
	return out
}

func (f *fixture) transaction(t *testing.T, id kernel.UUID) *payment.GatewayTransaction {
	t.Helper()

	tx, err := f.factory.Create().TransactionRepository().Get(t.Context(), 7, id)
	require.NoError(t, err)
	return tx
}

func (f *fixture) reload(t *testing.T) *order.Order {
	t.Helper()

	o, err := f.factory.Create().OrderRepository().Get(t.Context(), f.order.Scope())
	require.NoError(t, err)
	return o
}

func settlements(o *order.Order) int {
	n := 0
	for _, e := range o.StateLog() {
		if e.Kind == order.LogPayment && (e.Action == "confirm" || e.Action == "poll") {
			n++
		}
	}
	return n
}

func TestCoordinator_CheckoutAndConfirm(t *testing.T) {
	t.Run("should take order 42 of company 7 from checkout to paid on mercadopago", func(t *testing.T) {
		f := newFixture(t, payments.Config{})

		co := f.checkout(t)

		assert.Equal(t, "https://checkout.example/pref-1", co.URL)
		assert.Equal(t, payment.IdempotencyCode(42, 7, payment.Mercadopago), co.Code)
		assert.Equal(t, start.Add(payments.DefaultCheckoutTTL), co.ExpiresAt)
		assert.False(t, co.Reused)

		tx := f.transaction(t, co.TransactionID)
		assert.Equal(t, payment.StatePending, tx.State())
		assert.Equal(t, payment.StatusOpen, tx.Status())
		assert.Equal(t, "pref-1", tx.ReferenceID())
		assert.Equal(t, "shop", tx.Additional().CredentialRef)
		assert.Equal(t, "sandbox", tx.Additional().Environment)

		linked := f.reload(t)
		require.NotNil(t, linked.GatewayTransactionID())
		assert.Equal(t, co.TransactionID, *linked.GatewayTransactionID())
		assert.JSONEq(t, `{"preferenceId":"pref-1"}`, string(linked.CheckoutSession()))

		f.gateway.On("ValidateTransaction", mock.Anything, mock.MatchedBy(func(req ports.TransactionRequest) bool {
			return req.Transaction.ID() == co.TransactionID && string(req.Payload.Body) == `{"id":"pay-9"}`
		})).Return(ports.GatewayResult{State: payment.StateApproved, ReferenceID: "pay-9", PaidAt: start.Add(time.Minute)}, nil).Once()

		out, err := f.coordinator.ConfirmTransaction(t.Context(), f.order, ports.WebhookPayload{Body: []byte(`{"id":"pay-9"}`)})

		require.NoError(t, err)
		assert.True(t, out.Applied)
		assert.Equal(t, payment.StateApproved, out.State)
		assert.Equal(t, order.PaymentPaid, out.PaymentState)
		assert.NoError(t, out.Rejected())

		paid := f.reload(t)
		assert.Equal(t, order.PaymentPaid, paid.PaymentState())
		assert.True(t, paid.FlagStatusOrder())
		assert.Equal(t, 1, settlements(paid))

		tx = f.transaction(t, co.TransactionID)
		assert.Equal(t, payment.StatusClosed, tx.Status())
		assert.Equal(t, "pay-9", tx.ReferenceID())
		require.NotNil(t, tx.DatePayment())
		assert.Equal(t, start.Add(time.Minute), tx.DatePayment().UTC())
		assert.NotNil(t, tx.NotifiedAt())

		sent := f.notifier.Sent()
		require.Len(t, sent, 2)
		for _, msg := range sent {
			assert.Equal(t, notification.EventPaymentApproved, msg.Event)
			assert.Equal(t, int64(42), msg.OrderID)
			assert.Equal(t, co.TransactionID.String(), msg.TransactionID)
		}
	})

	t.Run("should not write twice when the webhook is delivered again", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		f.approve(t)

		again, err := f.coordinator.ConfirmTransaction(t.Context(), f.order, ports.WebhookPayload{Body: []byte(`{}`)})

		require.NoError(t, err)
		assert.False(t, again.Applied)
		assert.Equal(t, payment.StateApproved, again.State)
		f.gateway.AssertNumberOfCalls(t, "ValidateTransaction", 1)
		assert.Equal(t, 1, settlements(f.reload(t)))
		assert.Len(t, f.notifier.Sent(), 2)
	})

	t.Run("should capture when the callback carries a token", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		f.checkout(t)
		f.gateway.On("AuthorizeTransaction", mock.Anything, mock.MatchedBy(func(req ports.TransactionRequest) bool {
			return req.Payload.AuthorizationToken == "tok_visa"
		})).Return(ports.GatewayResult{State: payment.StateCapturePending}, nil).Once()

		out, err := f.coordinator.ConfirmTransaction(t.Context(), f.order, ports.WebhookPayload{AuthorizationToken: "tok_visa"})

		require.NoError(t, err)
		assert.True(t, out.Applied)
		assert.Equal(t, order.PaymentCapturePending, f.reload(t).PaymentState())
		f.gateway.AssertNotCalled(t, "ValidateTransaction", mock.Anything, mock.Anything)
	})

	t.Run("should report a declined payment as a typed outcome", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		f.checkout(t)
		f.gateway.On("ValidateTransaction", mock.Anything, mock.Anything).
			Return(ports.GatewayResult{State: payment.StateRejected, ErrorCode: "cc_rejected_insufficient_amount"}, nil).Once()

		out, err := f.coordinator.ConfirmTransaction(t.Context(), f.order, ports.WebhookPayload{})

		require.NoError(t, err)
		require.ErrorIs(t, out.Rejected(), errs.ErrGatewayRejected)
		assert.Equal(t, payment.ErrorInsufficientFunds, out.ErrorCode)

		rejected := f.reload(t)
		assert.Equal(t, order.PaymentRejected, rejected.PaymentState())
		assert.Equal(t, payment.ErrorInsufficientFunds, rejected.GatewayErrorCode())
		assert.False(t, rejected.FlagStatusOrder())
		assert.Empty(t, f.notifier.Sent())
	})

	t.Run("should fail without an order transaction", func(t *testing.T) {
		f := newFixture(t, payments.Config{})

		_, err := f.coordinator.ConfirmTransaction(t.Context(), f.order, ports.WebhookPayload{})

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

func TestCoordinator_PollAndConfirmConverge(t *testing.T) {
	t.Run("should ignore a webhook arriving after the poll settled", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		f.checkout(t)
		f.gateway.On("GetStatusTransaction", mock.Anything, mock.Anything).
			Return(ports.GatewayResult{State: payment.StateApproved}, nil).Once()

		polled, err := f.coordinator.StatusPoll(t.Context(), f.order)
		require.NoError(t, err)
		confirmed, err := f.coordinator.ConfirmTransaction(t.Context(), f.order, ports.WebhookPayload{})
		require.NoError(t, err)

		assert.True(t, polled.Applied)
		assert.False(t, confirmed.Applied)
		assert.Equal(t, polled.State, confirmed.State)
		f.gateway.AssertNotCalled(t, "ValidateTransaction", mock.Anything, mock.Anything)
		assert.Equal(t, 1, settlements(f.reload(t)))
	})

	t.Run("should keep the first terminal result when a stale sweep reads a different one", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		co := f.checkout(t)
		stale := f.transaction(t, co.TransactionID)

		f.gateway.On("ValidateTransaction", mock.Anything, mock.Anything).
			Return(ports.GatewayResult{State: payment.StateApproved}, nil).Once()
		_, err := f.coordinator.ConfirmTransaction(t.Context(), f.order, ports.WebhookPayload{})
		require.NoError(t, err)

		f.gateway.On("GetStatusTransaction", mock.Anything, mock.Anything).
			Return(ports.GatewayResult{State: payment.StateRejected, ErrorCode: "cc_rejected_other_reason"}, nil).Once()
		out, err := f.coordinator.PollTransaction(t.Context(), stale)

		require.NoError(t, err)
		assert.False(t, out.Applied)
		assert.Equal(t, payment.StateApproved, out.State)
		assert.Equal(t, payment.StateApproved, f.transaction(t, co.TransactionID).State())

		settled := f.reload(t)
		assert.Equal(t, order.PaymentPaid, settled.PaymentState())
		assert.Equal(t, 1, settlements(settled))
	})

	t.Run("should settle a superseded checkout without touching the paid order", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		f.expectCheckout("nb-1").Once()
		first, err := f.coordinator.InitiateCheckout(t.Context(), f.order, payment.Niubiz, auth)
		require.NoError(t, err)
		superseded := f.transaction(t, first.TransactionID)

		approved := f.approve(t)
		require.Equal(t, order.PaymentPaid, approved.PaymentState)

		f.gateway.On("GetStatusTransaction", mock.Anything, mock.MatchedBy(func(req ports.TransactionRequest) bool {
			return req.Transaction.ID() == first.TransactionID
		})).Return(ports.GatewayResult{State: payment.StateRejected, ErrorCode: "card_declined"}, nil).Once()
		out, err := f.coordinator.PollTransaction(t.Context(), superseded)

		require.NoError(t, err)
		assert.True(t, out.Applied)
		assert.Equal(t, payment.StateRejected, f.transaction(t, first.TransactionID).State())

		paid := f.reload(t)
		assert.Equal(t, order.PaymentPaid, paid.PaymentState())
		assert.True(t, paid.FlagStatusOrder())
		assert.Empty(t, paid.GatewayErrorCode())
		assert.Equal(t, approved.TransactionID, *paid.GatewayTransactionID())
		assert.Equal(t, 1, settlements(paid))
	})

	t.Run("should write nothing while the gateway reports pending", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		co := f.checkout(t)
		f.gateway.On("GetStatusTransaction", mock.Anything, mock.Anything).
			Return(ports.GatewayResult{State: payment.StatePending}, nil).Once()

		out, err := f.coordinator.PollTransaction(t.Context(), f.transaction(t, co.TransactionID))

		require.NoError(t, err)
		assert.False(t, out.Applied)
		assert.Equal(t, payment.StatePending, f.transaction(t, co.TransactionID).State())
		assert.Zero(t, settlements(f.reload(t)))
	})

	t.Run("should leave the transaction untouched when the gateway is down", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		co := f.checkout(t)
		f.gateway.On("GetStatusTransaction", mock.Anything, mock.Anything).
			Return(ports.GatewayResult{}, errs.NewGatewayTransientError("mercadopago", "getStatusTransaction", assert.AnError)).Once()

		_, err := f.coordinator.StatusPoll(t.Context(), f.order)

		require.ErrorIs(t, err, errs.ErrGatewayTransient)
		assert.Equal(t, payment.StatePending, f.transaction(t, co.TransactionID).State())
	})
}

func TestCoordinator_NotifyApproved(t *testing.T) {
	t.Run("should fan out once and stamp the transaction", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		co := f.checkout(t)
		tx := f.transaction(t, co.TransactionID)
		require.NoError(t, tx.ApplyClassification(payment.Classification{State: payment.StateApproved}, start))
		require.NoError(t, f.factory.Create().TransactionRepository().ApplyOutcome(t.Context(), tx))

		sent, err := f.coordinator.NotifyApproved(t.Context(), tx)
		require.NoError(t, err)
		again, err := f.coordinator.NotifyApproved(t.Context(), f.transaction(t, co.TransactionID))
		require.NoError(t, err)

		assert.Equal(t, 2, sent)
		assert.Zero(t, again)
		require.NotNil(t, tx.NotifiedAt())
		assert.Equal(t, start, *tx.NotifiedAt())
		assert.Len(t, f.notifier.Sent(), 2)
	})

	t.Run("should refuse a payment that is not approved", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		co := f.checkout(t)

		_, err := f.coordinator.NotifyApproved(t.Context(), f.transaction(t, co.TransactionID))

		require.ErrorIs(t, err, errs.ErrActionInvalid)
		assert.Empty(t, f.notifier.Sent())
	})
}

func TestCoordinator_InitiateCheckout(t *testing.T) {
	t.Run("should reuse a live checkout", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		first := f.checkout(t)

		f.now = start.Add(10 * time.Minute)
		second, err := f.coordinator.InitiateCheckout(t.Context(), f.order, payment.Mercadopago, auth)

		require.NoError(t, err)
		assert.True(t, second.Reused)
		assert.Equal(t, first.TransactionID, second.TransactionID)
		assert.Equal(t, first.URL, second.URL)
		f.gateway.AssertNumberOfCalls(t, "GetCheckoutInformation", 1)
	})

	t.Run("should open a new checkout once the previous one expired", func(t *testing.T) {
		f := newFixture(t, payments.Config{CheckoutTTL: 15 * time.Minute})
		first := f.checkout(t)

		f.now = start.Add(16 * time.Minute)
		f.expectCheckout("pref-2").Once()
		second, err := f.coordinator.InitiateCheckout(t.Context(), f.order, payment.Mercadopago, auth)

		require.NoError(t, err)
		assert.False(t, second.Reused)
		assert.NotEqual(t, first.TransactionID, second.TransactionID)
		assert.Equal(t, second.TransactionID, *f.reload(t).GatewayTransactionID())
	})

	t.Run("should fall back to a payment link", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		f.gateway.On("GetCheckoutInformation", mock.Anything, mock.Anything).
			Return(ports.CheckoutSession{}, errs.NewFunctionNotImplementedError("mercadopago", "getCheckoutInformation"))
		f.gateway.On("GetPaymentLink", mock.Anything, mock.Anything).
			Return(ports.CheckoutSession{ReferenceID: "link-1", URL: "https://pay.example/link-1"}, nil).Once()

		co, err := f.coordinator.InitiateCheckout(t.Context(), f.order, payment.Mercadopago, auth)

		require.NoError(t, err)
		assert.Equal(t, "https://pay.example/link-1", co.URL)
	})

	t.Run("should charge the gateway total when it adds fees", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		f.gateway.ExpectedCalls = nil
		f.gateway.On("GetCurrency", mock.Anything, mock.Anything).
			Return("", errs.NewFunctionNotImplementedError("mercadopago", "getCurrency")).Once()
		f.gateway.On("GetTotalPayment", mock.Anything, mock.Anything).Return(kernel.MustMoney("61.70", "PEN"), nil)
		f.gateway.On("SaveTransaction", mock.Anything, mock.Anything).Return(nil).Once()
		f.expectCheckout("pref-1").Once()

		co, err := f.coordinator.InitiateCheckout(t.Context(), f.order, payment.Mercadopago, auth)

		require.NoError(t, err)
		assert.True(t, co.Amount.Equal(kernel.MustMoney("61.70", "PEN")))
		f.gateway.AssertExpectations(t)
	})

	t.Run("should refuse a gateway account settling in another currency", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		f.gateway.ExpectedCalls = nil
		f.gateway.On("GetCurrency", mock.Anything, mock.MatchedBy(func(c ports.Credentials) bool {
			return c.Get("accessToken") == "TEST-1"
		})).Return("usd", nil).Once()

		_, err := f.coordinator.InitiateCheckout(t.Context(), f.order, payment.Mercadopago, auth)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		f.gateway.AssertNotCalled(t, "GetCheckoutInformation", mock.Anything, mock.Anything)
		assert.Nil(t, f.reload(t).GatewayTransactionID())
	})

	t.Run("should keep offline checkouts open longer", func(t *testing.T) {
		f := newFixture(t, payments.Config{CheckoutTTL: 15 * time.Minute, OfflineCheckoutTTL: 72 * time.Hour})
		f.expectCheckout("cip-1").Once()

		co, err := f.coordinator.InitiateCheckout(t.Context(), f.order, payment.PagoEfectivo, auth)

		require.NoError(t, err)
		assert.Equal(t, start.Add(72*time.Hour), co.ExpiresAt)
		assert.Equal(t, start.Add(72*time.Hour), f.transaction(t, co.TransactionID).DateExpiration().UTC())
	})

	t.Run("should fail as misconfigured without credentials", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		f.credentials.ExpectedCalls = nil
		f.credentials.On("GetCredentials", mock.Anything, mock.Anything, mock.Anything).
			Return(ports.Credentials{}, errs.NewObjectNotFoundError("credentials", "mercadopago"))

		_, err := f.coordinator.InitiateCheckout(t.Context(), f.order, payment.Mercadopago, auth)

		require.ErrorIs(t, err, errs.ErrGatewayMisconfigured)
		assert.Nil(t, f.reload(t).GatewayTransactionID())
	})

	t.Run("should refuse to charge a paid order", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		f.approve(t)

		_, err := f.coordinator.InitiateCheckout(t.Context(), f.order, payment.Mercadopago, auth)

		require.ErrorIs(t, err, errs.ErrActionInvalid)
	})

	t.Run("should report a gateway timeout as transient and record nothing", func(t *testing.T) {
		f := newFixture(t, payments.Config{GatewayTimeout: 20 * time.Millisecond})
		f.gateway.On("GetCheckoutInformation", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				<-args.Get(0).(context.Context).Done()
			}).
			Return(ports.CheckoutSession{}, context.DeadlineExceeded)

		_, err := f.coordinator.InitiateCheckout(t.Context(), f.order, payment.Mercadopago, auth)

		require.ErrorIs(t, err, errs.ErrGatewayTransient)
		assert.Nil(t, f.reload(t).GatewayTransactionID())
	})
}

func TestCoordinator_Refund(t *testing.T) {
	t.Run("should refund an approved payment once", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		approved := f.approve(t)
		f.gateway.On("GetRefundTransaction", mock.Anything, mock.MatchedBy(func(req ports.RefundRequest) bool {
			return req.Transaction.ID() == approved.TransactionID && req.Reason == "customer request"
		})).Return(ports.RefundResult{ReferenceID: "rf-1"}, nil).Once()

		out, err := f.coordinator.Refund(t.Context(), f.order, "customer request")

		require.NoError(t, err)
		assert.Equal(t, payment.StateCanceled, out.State)
		assert.Equal(t, order.PaymentRefunded, out.PaymentState)
		require.NotNil(t, out.RefundID)

		refund := f.transaction(t, *out.RefundID)
		assert.Equal(t, payment.TypeRefund, refund.Type())
		assert.Equal(t, "rf-1", refund.ReferenceID())
		require.NotNil(t, refund.OriginalID())
		assert.Equal(t, approved.TransactionID, *refund.OriginalID())
		assert.Equal(t, payment.StateCanceled, f.transaction(t, approved.TransactionID).State())
		assert.Equal(t, order.PaymentRefunded, f.reload(t).PaymentState())

		_, err = f.coordinator.Refund(t.Context(), f.order, "customer request")

		require.ErrorIs(t, err, errs.ErrAlreadyCanceled)
		f.gateway.AssertNumberOfCalls(t, "GetRefundTransaction", 1)
	})

	t.Run("should refuse past the refund window", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		f.approve(t)

		f.now = start.Add(payment.Mercadopago.RefundWindow() + time.Hour)
		_, err := f.coordinator.Refund(t.Context(), f.order, "")

		require.ErrorIs(t, err, errs.ErrRefundWindowExceeded)
		f.gateway.AssertNotCalled(t, "GetRefundTransaction", mock.Anything, mock.Anything)
		assert.Equal(t, order.PaymentPaid, f.reload(t).PaymentState())
	})

	t.Run("should refuse a payment that is not approved", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		f.checkout(t)

		_, err := f.coordinator.Refund(t.Context(), f.order, "")

		require.ErrorIs(t, err, errs.ErrActionInvalid)
	})

	t.Run("should reach the gateway once when two refunds race", func(t *testing.T) {
		f := newFixture(t, payments.Config{})
		f.approve(t)
		first, second := f.reload(t), f.reload(t)

		entered, release := make(chan struct{}), make(chan struct{})
		f.gateway.On("GetRefundTransaction", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) {
				close(entered)
				<-release
			}).
			Return(ports.RefundResult{ReferenceID: "rf-1"}, nil).Once()

		done := make(chan error, 1)
		go func() {
			_, err := f.coordinator.Refund(context.Background(), first, "customer request")
			done <- err
		}()
		<-entered

		_, err := f.coordinator.Refund(t.Context(), second, "customer request")
		require.ErrorIs(t, err, errs.ErrRefundInProgress)

		close(release)
		require.NoError(t, <-done)
		f.gateway.AssertNumberOfCalls(t, "GetRefundTransaction", 1)
		assert.Equal(t, order.PaymentRefunded, f.reload(t).PaymentState())

		_, err = f.coordinator.Refund(t.Context(), second, "customer request")
		require.ErrorIs(t, err, errs.ErrAlreadyCanceled)
	})

	t.Run("should not call the gateway while another replica holds the refund lease", func(t *testing.T) {
		locker := &mocks.Locker{}
		f := newFixture(t, payments.Config{}, func(deps *payments.Deps) { deps.Locker = locker })
		approved := f.approve(t)
		locker.On("TryLock", mock.Anything, "refund:"+approved.TransactionID.String(), mock.Anything).
			Return(nil, false, nil).Once()

		_, err := f.coordinator.Refund(t.Context(), f.order, "")

		require.ErrorIs(t, err, errs.ErrRefundInProgress)
		f.gateway.AssertNotCalled(t, "GetRefundTransaction", mock.Anything, mock.Anything)
		assert.Equal(t, order.PaymentPaid, f.reload(t).PaymentState())
		locker.AssertExpectations(t)
	})
}
