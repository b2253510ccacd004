// Package notification describes the messages the fulfillment flows emit.
// Delivery is best effort and handled by an adapter behind ports.Notifier.
package notification

import "time"

// Audience is who a message is addressed to.
type Audience string

const (
	AudienceCustomer Audience = "customer"
	AudienceEmployee Audience = "employee"
	AudienceDriver   Audience = "driver"
)

// Event names what happened.
type Event string

const (
	EventDeliveryAccepted   Event = "delivery_accepted"
	EventDriverAtOrigin     Event = "driver_at_origin"
	EventOrderOnTheWay      Event = "order_on_the_way"
	EventDriverAtDestiny    Event = "driver_at_destiny"
	EventOrderDelivered     Event = "order_delivered"
	EventOrderReturning     Event = "order_returning"
	EventOrderReturned      Event = "order_returned"
	EventPaymentApproved    Event = "payment_approved"
	EventRefundIssued       Event = "refund_issued"
	EventOrderStatusChanged Event = "order_status_changed"
)

// Message is a single notification for one audience.
type Message struct {
	Event         Event             `json:"event"`
	Audience      Audience          `json:"audience"`
	CompanyID     int64             `json:"companyId"`
	OrderID       int64             `json:"orderId"`
	DeliveryID    *int64            `json:"deliveryId,omitempty"`
	TransactionID string            `json:"transactionId,omitempty"`
	Data          map[string]string `json:"data,omitempty"`
	At            time.Time         `json:"at"`
}

// Channel is the pub/sub channel a message is routed to.
func (m Message) Channel() string {
	return "notifications:" + string(m.Audience)
}
