package gateways

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
)

// Credential keys read by the Stripe strategy.
const (
	KeyStripeSecretKey = "secret_key"
	KeySuccessURL      = "success_url"
	KeyCancelURL       = "cancel_url"

	StripeSignatureHeader = "Stripe-Signature"
)

// Stripe rejects checkout sessions that expire sooner than this.
const stripeMinSessionTTL = 30 * time.Minute

var _ ports.PaymentGateway = (*StripeGateway)(nil)

// StripeGateway runs payments through Stripe Checkout sessions. A fresh API
// client is built per call because every tenant brings its own keys.
type StripeGateway struct {
	httpClient *http.Client
	now        func() time.Time
}

func NewStripeGateway(httpClient *http.Client) *StripeGateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &StripeGateway{httpClient: httpClient, now: time.Now}
}

func (g *StripeGateway) api(creds ports.Credentials) (*client.API, error) {
	key := creds.Get(KeyStripeSecretKey)
	if key == "" {
		return nil, errs.NewGatewayMisconfiguredError(payment.Stripe.String(), errors.New("secret_key is not configured"))
	}

	cfg := &stripe.BackendConfig{
		HTTPClient:        g.httpClient,
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if u := creds.Get(KeyBaseURL); u != "" {
		cfg.URL = stripe.String(u)
	}

	return client.New(key, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, cfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, cfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, cfg),
	}), nil
}

func (g *StripeGateway) GetPaymentGatewayInformation() ports.GatewayInformation {
	return ports.GatewayInformation{
		Code:        payment.Stripe,
		Name:        "Stripe",
		Description: "Stripe Checkout sessions",
	}
}

func (g *StripeGateway) GetCheckoutInformation(ctx context.Context, req ports.CheckoutRequest) (ports.CheckoutSession, error) {
	sc, err := g.api(req.Credentials)
	if err != nil {
		return ports.CheckoutSession{}, err
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Order %d", req.Scope.OrderID)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.TransactionCode),
		SuccessURL:        stripe.String(req.Credentials.Get(KeySuccessURL)),
		CancelURL:         stripe.String(req.Credentials.Get(KeyCancelURL)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(req.Amount.Currency())),
				UnitAmount: stripe.Int64(req.Amount.MinorUnits()),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(description),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		Metadata: map[string]string{
			"order_id":   strconv.FormatInt(req.Scope.OrderID, 10),
			"company_id": strconv.FormatInt(req.Scope.CompanyID, 10),
		},
	}
	if !req.ExpiresAt.IsZero() && req.ExpiresAt.Sub(g.now()) >= stripeMinSessionTTL {
		params.ExpiresAt = stripe.Int64(req.ExpiresAt.Unix())
	}
	params.Context = ctx

	s, err := sc.CheckoutSessions.New(params)
	if err != nil {
		return ports.CheckoutSession{}, stripeError("checkout", err)
	}

	raw, _ := json.Marshal(s)
	return ports.CheckoutSession{ReferenceID: s.ID, URL: s.URL, Session: raw}, nil
}

func (g *StripeGateway) GetPaymentLink(context.Context, ports.CheckoutRequest) (ports.CheckoutSession, error) {
	return ports.CheckoutSession{}, errs.NewFunctionNotImplementedError(payment.Stripe.String(), "paymentLink")
}

// ValidateTransaction verifies a Stripe event and reads the checkout session
// it carries.
func (g *StripeGateway) ValidateTransaction(_ context.Context, req ports.TransactionRequest) (ports.GatewayResult, error) {
	if req.Transaction == nil {
		return ports.GatewayResult{}, errs.NewValueIsRequiredError("transaction")
	}
	secret := req.Credentials.Get(KeyWebhookSecret)
	if secret == "" {
		return ports.GatewayResult{}, errs.NewGatewayMisconfiguredError(payment.Stripe.String(), errors.New("webhook_secret is not configured"))
	}

	event, err := webhook.ConstructEventWithOptions(
		req.Payload.Body,
		header(req.Payload.Headers, StripeSignatureHeader),
		secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return ports.GatewayResult{}, errs.NewValueIsInvalidErrorWithCause("signature", err)
	}

	var s stripe.CheckoutSession
	if err = json.Unmarshal(event.Data.Raw, &s); err != nil {
		return ports.GatewayResult{}, errs.NewValueIsInvalidErrorWithCause("webhookBody", err)
	}
	if s.ClientReferenceID != req.Transaction.Code() && s.ID != req.Transaction.ReferenceID() {
		return ports.GatewayResult{}, errs.NewValueIsInvalidError("reference")
	}

	res := sessionResult(&s, event.Data.Raw)
	switch event.Type {
	case "checkout.session.async_payment_failed":
		res.State = payment.StateRejected
		res.ErrorCode = "async_payment_failed"
	case "checkout.session.expired":
		res.State = payment.StateCanceled
	}
	if res.State == payment.StateApproved {
		res.PaidAt = time.Unix(event.Created, 0).UTC()
	}
	return res, nil
}

func (g *StripeGateway) AuthorizeTransaction(context.Context, ports.TransactionRequest) (ports.GatewayResult, error) {
	return ports.GatewayResult{}, errs.NewFunctionNotImplementedError(payment.Stripe.String(), "authorize")
}

func (g *StripeGateway) GetStatusTransaction(ctx context.Context, req ports.TransactionRequest) (ports.GatewayResult, error) {
	s, err := g.session(ctx, req.Credentials, req.Transaction)
	if err != nil {
		return ports.GatewayResult{}, err
	}
	raw, _ := json.Marshal(s)
	return sessionResult(s, raw), nil
}

func (g *StripeGateway) GetRefundTransaction(ctx context.Context, req ports.RefundRequest) (ports.RefundResult, error) {
	s, err := g.session(ctx, req.Credentials, req.Transaction)
	if err != nil {
		return ports.RefundResult{}, err
	}
	if s.PaymentIntent == nil || s.PaymentIntent.ID == "" {
		return ports.RefundResult{}, errs.NewValueIsInvalidErrorWithCause("paymentIntent", errors.New("checkout session has no payment"))
	}

	sc, err := g.api(req.Credentials)
	if err != nil {
		return ports.RefundResult{}, err
	}
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(s.PaymentIntent.ID),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
		Metadata:      map[string]string{"reason": req.Reason},
	}
	params.Context = ctx

	r, err := sc.Refunds.New(params)
	if err != nil {
		return ports.RefundResult{}, stripeError("refund", err)
	}
	raw, _ := json.Marshal(r)
	return ports.RefundResult{ReferenceID: r.ID, Raw: raw}, nil
}

func (g *StripeGateway) GetAllTransaction(ctx context.Context, req ports.ListRequest) ([]ports.GatewayResult, error) {
	sc, err := g.api(req.Credentials)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionListParams{}
	params.Filters.AddFilter("created", "gte", strconv.FormatInt(req.From.Unix(), 10))
	params.Filters.AddFilter("created", "lt", strconv.FormatInt(req.To.Unix(), 10))
	params.Context = ctx

	var results []ports.GatewayResult
	it := sc.CheckoutSessions.List(params)
	for it.Next() {
		s := it.CheckoutSession()
		raw, _ := json.Marshal(s)
		results = append(results, sessionResult(s, raw))
	}
	if err = it.Err(); err != nil {
		return nil, stripeError("list", err)
	}
	return results, nil
}

func (g *StripeGateway) SaveTransaction(context.Context, ports.TransactionRequest) error {
	return errs.NewFunctionNotImplementedError(payment.Stripe.String(), "save")
}

func (g *StripeGateway) GetCurrency(_ context.Context, creds ports.Credentials) (string, error) {
	if c := creds.Get(KeyCurrency); c != "" {
		return strings.ToUpper(c), nil
	}
	return "USD", nil
}

func (g *StripeGateway) GetTotalPayment(context.Context, ports.TotalRequest) (kernel.Money, error) {
	return kernel.Money{}, errs.NewFunctionNotImplementedError(payment.Stripe.String(), "total")
}

func (g *StripeGateway) session(ctx context.Context, creds ports.Credentials, tx *payment.GatewayTransaction) (*stripe.CheckoutSession, error) {
	if tx == nil {
		return nil, errs.NewValueIsRequiredError("transaction")
	}
	if tx.ReferenceID() == "" {
		return nil, errs.NewValueIsRequiredError("referenceId")
	}
	sc, err := g.api(creds)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := sc.CheckoutSessions.Get(tx.ReferenceID(), params)
	if err != nil {
		return nil, stripeError("status", err)
	}
	return s, nil
}

func sessionResult(s *stripe.CheckoutSession, raw []byte) ports.GatewayResult {
	res := ports.GatewayResult{State: payment.StatePending, ReferenceID: s.ID, Raw: json.RawMessage(raw)}
	switch {
	case s.Status == stripe.CheckoutSessionStatusExpired:
		res.State = payment.StateCanceled
	case s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		s.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		res.State = payment.StateApproved
	}
	return res
}

func stripeError(op string, err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return errs.NewGatewayTransientError(payment.Stripe.String(), op, err)
	}

	switch {
	case se.HTTPStatusCode >= http.StatusInternalServerError || se.HTTPStatusCode == http.StatusTooManyRequests:
		return errs.NewGatewayTransientError(payment.Stripe.String(), op, err)
	case se.HTTPStatusCode == http.StatusUnauthorized || se.HTTPStatusCode == http.StatusForbidden:
		return errs.NewGatewayMisconfiguredError(payment.Stripe.String(), err)
	case se.HTTPStatusCode == http.StatusNotFound:
		return errs.NewObjectNotFoundErrorWithCause("gatewayTransaction", op, err)
	}
	return errs.NewValueIsInvalidErrorWithCause(op, err)
}
