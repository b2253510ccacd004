package order

import (
	"encoding/json"
	"fmt"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/pkg/errs"
)

// DeliveryChange is everything a single delivery transition writes.
type DeliveryChange struct {
	From         delivery.State
	To           delivery.State
	DeliveryID   int64
	Status       *StateRef
	PaymentState *PaymentState
	Log          []LogEntry
}

// WithDeliveryChange returns a copy of the order with the change applied.
// The change must start from the current delivery state and, past
// NOT_ASSIGNED, name the delivery running the leg.
func (o *Order) WithDeliveryChange(c DeliveryChange) (*Order, error) {
	if c.From != o.deliveryState {
		return nil, errs.NewActionInvalidErrorWithCause(
			string(c.To), o.deliveryState.String(),
			fmt.Errorf("change starts from %s", c.From),
		)
	}
	if err := c.To.Validate(); err != nil {
		return nil, err
	}
	if c.To.RequiresDriver() && c.DeliveryID <= 0 {
		return nil, errs.NewValueIsRequiredError("deliveryId")
	}
	if o.deliveryID != nil && *o.deliveryID != c.DeliveryID {
		return nil, errs.NewAlreadyAssignedError("orderId", o.id)
	}

	next := o.clone()
	next.deliveryState = c.To
	id := c.DeliveryID
	next.deliveryID = &id
	if c.Status != nil {
		next.status = c.Status.Code
		next.statusID = c.Status.ID
	}
	if c.PaymentState != nil {
		next.paymentState = *c.PaymentState
		next.flagStatusOrder = *c.PaymentState == PaymentPaid
	}
	next.stateLog = append(next.stateLog, c.Log...)
	return next, nil
}

// WithStatus returns a copy with a new order status and its log entry.
func (o *Order) WithStatus(ref StateRef, entry LogEntry) *Order {
	next := o.clone()
	next.status = ref.Code
	next.statusID = ref.ID
	next.stateLog = append(next.stateLog, entry)
	return next
}

// Checkout links the order to a freshly opened gateway transaction.
type Checkout struct {
	TransactionID kernel.UUID
	Gateway       payment.GatewayCode
	Session       json.RawMessage
	Entry         LogEntry
}

// WithCheckout returns a copy pointing at the new transaction with a pending payment.
func (o *Order) WithCheckout(c Checkout) *Order {
	next := o.clone()
	id := c.TransactionID
	next.gatewayTransactionID = &id
	next.gatewayCode = c.Gateway
	next.checkoutSession = c.Session
	next.paymentState = PaymentPending
	next.flagStatusOrder = false
	next.gatewayErrorCode = ""
	next.stateLog = append(next.stateLog, c.Entry)
	return next
}

// PaymentOutcome is what settling or refunding a transaction writes on the order.
type PaymentOutcome struct {
	State     PaymentState
	ErrorCode string
	Entry     LogEntry
}

// WithPaymentOutcome returns a copy carrying the payment result. The order is
// flagged for fulfillment only when the payment is approved.
func (o *Order) WithPaymentOutcome(p PaymentOutcome) *Order {
	next := o.clone()
	next.paymentState = p.State
	next.flagStatusOrder = p.State == PaymentPaid
	next.gatewayErrorCode = p.ErrorCode
	next.stateLog = append(next.stateLog, p.Entry)
	return next
}

// WithTracking returns a copy with carrier tracking information.
func (o *Order) WithTracking(raw json.RawMessage) *Order {
	next := o.clone()
	next.trackingInformation = raw
	return next
}

// WithRoute returns a copy with the pickup and drop-off points used for carrier quotes.
func (o *Order) WithRoute(origin, destination kernel.GeoPoint, carrier delivery.CarrierCode) *Order {
	next := o.clone()
	next.origin = origin
	next.destination = destination
	next.carrier = carrier
	return next
}
