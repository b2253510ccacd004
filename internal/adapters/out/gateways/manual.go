package gateways

import (
	"context"
	"encoding/json"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// ManualSignatureHeader carries the signature of a manual confirmation.
const ManualSignatureHeader = "X-Manual-Signature"

var _ ports.PaymentGateway = (*ManualGateway)(nil)

// ManualGateway settles payments collected outside of any gateway (cash,
// bank deposit). Staff confirm them through a signed callback; there is no
// remote side to poll.
type ManualGateway struct{}

func NewManualGateway() *ManualGateway {
	return &ManualGateway{}
}

var manualStatuses = map[string]payment.State{
	"paid":     payment.StateApproved,
	"approved": payment.StateApproved,
	"rejected": payment.StateRejected,
	"canceled": payment.StateCanceled,
}

func (*ManualGateway) GetPaymentGatewayInformation() ports.GatewayInformation {
	return ports.GatewayInformation{
		Code:        payment.Manual,
		Name:        "Manual",
		Description: "Payments confirmed by staff",
	}
}

func (*ManualGateway) GetCheckoutInformation(_ context.Context, req ports.CheckoutRequest) (ports.CheckoutSession, error) {
	return ports.CheckoutSession{ReferenceID: req.TransactionCode}, nil
}

func (*ManualGateway) GetPaymentLink(context.Context, ports.CheckoutRequest) (ports.CheckoutSession, error) {
	return ports.CheckoutSession{}, errs.NewFunctionNotImplementedError(payment.Manual.String(), "paymentLink")
}

func (*ManualGateway) ValidateTransaction(_ context.Context, req ports.TransactionRequest) (ports.GatewayResult, error) {
	if req.Transaction == nil {
		return ports.GatewayResult{}, errs.NewValueIsRequiredError("transaction")
	}
	secret := req.Credentials.Get(KeyWebhookSecret)
	if secret == "" {
		return ports.GatewayResult{}, errs.NewGatewayMisconfiguredError(payment.Manual.String(), errs.NewValueIsRequiredError(KeyWebhookSecret))
	}
	if err := VerifySignature(secret, req.Payload.Body, header(req.Payload.Headers, ManualSignatureHeader)); err != nil {
		return ports.GatewayResult{}, err
	}

	var body resultBody
	if err := json.Unmarshal(req.Payload.Body, &body); err != nil {
		return ports.GatewayResult{}, errs.NewValueIsInvalidErrorWithCause("webhookBody", err)
	}
	if body.Reference != req.Transaction.Code() {
		return ports.GatewayResult{}, errs.NewValueIsInvalidError("reference")
	}

	state, ok := manualStatuses[strings.ToLower(body.Status)]
	if !ok {
		return ports.GatewayResult{}, errs.NewValueIsInvalidError("status")
	}
	res := ports.GatewayResult{State: state, ReferenceID: body.ID, ErrorCode: body.ErrorCode, Raw: req.Payload.Body}
	if body.PaidAt != nil {
		res.PaidAt = body.PaidAt.UTC()
	}
	return res, nil
}

func (*ManualGateway) AuthorizeTransaction(context.Context, ports.TransactionRequest) (ports.GatewayResult, error) {
	return ports.GatewayResult{}, errs.NewFunctionNotImplementedError(payment.Manual.String(), "authorize")
}

// GetStatusTransaction reports the stored state back unchanged.
func (*ManualGateway) GetStatusTransaction(_ context.Context, req ports.TransactionRequest) (ports.GatewayResult, error) {
	if req.Transaction == nil {
		return ports.GatewayResult{}, errs.NewValueIsRequiredError("transaction")
	}
	return ports.GatewayResult{State: req.Transaction.State(), ReferenceID: req.Transaction.ReferenceID()}, nil
}

func (*ManualGateway) GetRefundTransaction(context.Context, ports.RefundRequest) (ports.RefundResult, error) {
	return ports.RefundResult{}, errs.NewFunctionNotImplementedError(payment.Manual.String(), "refund")
}

func (*ManualGateway) GetAllTransaction(context.Context, ports.ListRequest) ([]ports.GatewayResult, error) {
	return nil, errs.NewFunctionNotImplementedError(payment.Manual.String(), "list")
}

func (*ManualGateway) SaveTransaction(context.Context, ports.TransactionRequest) error {
	return errs.NewFunctionNotImplementedError(payment.Manual.String(), "save")
}

func (*ManualGateway) GetCurrency(_ context.Context, creds ports.Credentials) (string, error) {
	if c := creds.Get(KeyCurrency); c != "" {
		return strings.ToUpper(c), nil
	}
	return "PEN", nil
}

func (*ManualGateway) GetTotalPayment(context.Context, ports.TotalRequest) (kernel.Money, error) {
	return kernel.Money{}, errs.NewFunctionNotImplementedError(payment.Manual.String(), "total")
}
