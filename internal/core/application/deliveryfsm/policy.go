package deliveryfsm

import (
	"slices"

	"fulfillment/internal/core/domain/model/order"
)

// PaymentOnDeliveryPolicy decides whether handing an order over settles its
// payment.
type PaymentOnDeliveryPolicy interface {
	SettlesOnDelivery(o *order.Order) bool
}

// DefaultPaymentPolicy settles cash and card on delivery orders, except for
// the apps listed in ExemptApps, which settle those payments on their own.
type DefaultPaymentPolicy struct {
	ExemptApps []string
}

func (p DefaultPaymentPolicy) SettlesOnDelivery(o *order.Order) bool {
	if !o.PaymentMethod().CollectsOnDelivery() {
		return false
	}
	if o.PaymentState() == order.PaymentPaid {
		return false
	}
	return !slices.Contains(p.ExemptApps, o.AppCode())
}
