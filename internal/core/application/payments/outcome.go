package payments

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/pkg/errs"
)

// Outcome is the result of confirming, polling or refunding a transaction.
// Applied is false when nothing was written, either because the gateway still
// reports the payment pending or because another caller settled it first.
type Outcome struct {
	TransactionID kernel.UUID
	Gateway       payment.GatewayCode
	State         payment.State
	PaymentState  order.PaymentState
	ErrorCode     string
	Applied       bool
	RefundID      *kernel.UUID
}

// Rejected returns the gateway rejection carried by the outcome, if any.
func (o Outcome) Rejected() error {
	if o.State != payment.StateRejected {
		return nil
	}
	return errs.NewGatewayRejectedError(o.Gateway.String(), o.ErrorCode)
}

// Checkout is an opened (or reused) hosted checkout.
type Checkout struct {
	TransactionID kernel.UUID
	Code          string
	Gateway       payment.GatewayCode
	URL           string
	ReferenceID   string
	Amount        kernel.Money
	ExpiresAt     time.Time
	Reused        bool
}

// orderPaymentState maps a transaction state onto the order. A checkout the
// gateway canceled before payment leaves the order rejected, not refunded.
func orderPaymentState(s payment.State, refund bool) order.PaymentState {
	if s == payment.StateCanceled && !refund {
		return order.PaymentRejected
	}
	return order.PaymentStateFor(s)
}

func outcomeOf(tx *payment.GatewayTransaction, applied bool) Outcome {
	return Outcome{
		TransactionID: tx.ID(),
		Gateway:       tx.GatewayCode(),
		State:         tx.State(),
		PaymentState:  orderPaymentState(tx.State(), tx.DatePayment() != nil),
		ErrorCode:     tx.ErrorCode(),
		Applied:       applied,
	}
}
