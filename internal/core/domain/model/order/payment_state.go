package order

import (
	"fmt"

	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/pkg/errs"
)

// PaymentState is the payment outcome as seen from the order.
type PaymentState string

const (
	PaymentPending        PaymentState = "PENDING"
	PaymentPaid           PaymentState = "PAID"
	PaymentRejected       PaymentState = "REJECTED"
	PaymentCapturePending PaymentState = "CAPTURE_PENDING"
	PaymentRefunded       PaymentState = "REFUNDED"
)

func (p PaymentState) Validate() error {
	switch p {
	case PaymentPending, PaymentPaid, PaymentRejected, PaymentCapturePending, PaymentRefunded:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("paymentState", fmt.Errorf("%q is not an order payment state", string(p)))
}

// PaymentStateFor maps a transaction state onto the order.
func PaymentStateFor(s payment.State) PaymentState {
	switch s {
	case payment.StateApproved:
		return PaymentPaid
	case payment.StateRejected:
		return PaymentRejected
	case payment.StateCapturePending:
		return PaymentCapturePending
	case payment.StateCanceled:
		return PaymentRefunded
	default:
		return PaymentPending
	}
}

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	MethodOnline         PaymentMethod = "ONLINE"
	MethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	MethodCardOnDelivery PaymentMethod = "CARD_ON_DELIVERY"
)

func (m PaymentMethod) Validate() error {
	switch m {
	case MethodOnline, MethodCashOnDelivery, MethodCardOnDelivery:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("paymentMethod", fmt.Errorf("%q is not a payment method", string(m)))
}

// CollectsOnDelivery reports methods settled by the driver at hand-off.
func (m PaymentMethod) CollectsOnDelivery() bool {
	return m == MethodCashOnDelivery || m == MethodCardOnDelivery
}

// Type is the kind of fulfillment the order asked for.
type Type string

const (
	TypeDelivery    Type = "DELIVERY"
	TypeCourier     Type = "COURIER"
	TypeFreeCourier Type = "FREE_COURIER"
)

func (t Type) Validate() error {
	switch t {
	case TypeDelivery, TypeCourier, TypeFreeCourier:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("typeOrder", fmt.Errorf("%q is not an order type", string(t)))
}

// IsCourier reports parcel orders that may be returned to their origin.
func (t Type) IsCourier() bool {
	return t == TypeCourier
}
