package ports

import (
	"context"
	"encoding/json"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/payment"
)

// GatewayInformation describes a gateway integration.
type GatewayInformation struct {
	Code        payment.GatewayCode `json:"code"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
}

// CheckoutRequest asks a gateway for a hosted checkout or a payment link.
type CheckoutRequest struct {
	Scope           kernel.Scope
	TransactionCode string
	Amount          kernel.Money
	Description     string
	ExpiresAt       time.Time
	Credentials     Credentials
}

// CheckoutSession is what the gateway returned for a checkout. Session is
// stored on the order untouched and handed back on validation.
type CheckoutSession struct {
	ReferenceID string
	Token       string
	URL         string
	Session     json.RawMessage
}

// WebhookPayload is a gateway callback as received by the HTTP adapter.
type WebhookPayload struct {
	Body               []byte
	Headers            map[string]string
	AuthorizationToken string
}

// TransactionRequest addresses an existing transaction at the gateway.
type TransactionRequest struct {
	Transaction *payment.GatewayTransaction
	Session     json.RawMessage
	Payload     WebhookPayload
	Credentials Credentials
}

// GatewayResult is a gateway's reading of a transaction, already mapped onto
// the payment states by the strategy. ErrorCode is the gateway's own code.
type GatewayResult struct {
	State       payment.State
	ReferenceID string
	ErrorCode   string
	PaidAt      time.Time
	Raw         json.RawMessage
}

// RefundRequest asks the gateway to return an approved payment.
type RefundRequest struct {
	Transaction *payment.GatewayTransaction
	Reason      string
	Credentials Credentials
}

// RefundResult is the gateway's acknowledgement of a refund.
type RefundResult struct {
	ReferenceID string
	Raw         json.RawMessage
}

// ListRequest selects gateway-side transactions in a time range.
type ListRequest struct {
	From        time.Time
	To          time.Time
	Credentials Credentials
}

// TotalRequest asks how much the customer is charged for an amount.
type TotalRequest struct {
	Amount      kernel.Money
	Credentials Credentials
}

// PaymentGateway is the capability set every gateway strategy exposes.
// Capabilities a gateway does not offer fail with errs.ErrFunctionNotImplemented.
// Timeouts and 5xx responses fail with errs.ErrGatewayTransient, bad
// credentials with errs.ErrGatewayMisconfigured.
type PaymentGateway interface {
	GetPaymentLink(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	GetCheckoutInformation(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)

	// ValidateTransaction verifies a webhook (signature and body) and reads the result it carries.
	ValidateTransaction(ctx context.Context, req TransactionRequest) (GatewayResult, error)

	// AuthorizeTransaction captures a payment from a token collected client side.
	AuthorizeTransaction(ctx context.Context, req TransactionRequest) (GatewayResult, error)

	GetPaymentGatewayInformation() GatewayInformation
	GetStatusTransaction(ctx context.Context, req TransactionRequest) (GatewayResult, error)
	GetRefundTransaction(ctx context.Context, req RefundRequest) (RefundResult, error)
	GetAllTransaction(ctx context.Context, req ListRequest) ([]GatewayResult, error)

	// SaveTransaction registers a freshly opened transaction with the gateway, when it needs that.
	SaveTransaction(ctx context.Context, req TransactionRequest) error

	GetCurrency(ctx context.Context, creds Credentials) (string, error)
	GetTotalPayment(ctx context.Context, req TotalRequest) (kernel.Money, error)
}

// GatewayFactory returns the strategy for a gateway code.
type GatewayFactory interface {
	For(code payment.GatewayCode) (PaymentGateway, error)
}
