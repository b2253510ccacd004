package ports

import (
	"context"
	"encoding/json"
	"errors"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// ErrStaleWrite is returned by guarded writes whose guard matched no row:
// another writer changed the row since it was read.
var ErrStaleWrite = errors.New("write guard matched no rows")

// DeliveryPatch writes the delivery dimension of Next, guarded by the delivery
// state, assignment and order status the caller read. ExpectedDeliveryID nil
// means the order must still be unassigned.
//
// The order status and payment state of Next are only written when the
// transition changes them: WritesStatus and SettlesPayment. A settling write is
// also conditioned on ExpectedPaymentState.
type DeliveryPatch struct {
	Scope                kernel.Scope
	ExpectedState        delivery.State
	ExpectedDeliveryID   *int64
	ExpectedStatusID     int64
	ExpectedPaymentState order.PaymentState
	WritesStatus         bool
	SettlesPayment       bool
	Next                 *order.Order
	Log                  []order.LogEntry
}

// StatusPatch writes the order status of Next, guarded by the status id the caller read.
type StatusPatch struct {
	Scope            kernel.Scope
	ExpectedStatusID int64
	Next             *order.Order
	Log              []order.LogEntry
}

// PaymentPatch writes the payment outcome of Next: payment state, flagStatusOrder
// and gateway error code. The write only lands while the order still points
// at TransactionID.
type PaymentPatch struct {
	Scope         kernel.Scope
	TransactionID kernel.UUID
	Next          *order.Order
	Log           []order.LogEntry
}

// CheckoutPatch links Next to its gateway transaction and stores the checkout session.
type CheckoutPatch struct {
	Scope kernel.Scope
	Next  *order.Order
	Log   []order.LogEntry
}

// OrderRepository is the order side of the persistence ledger.
// Every call is scoped by order and company id.
type OrderRepository interface {
	// Add stores a new order with its state log.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get loads an order and its full state log.
	Get(ctx context.Context, scope kernel.Scope) (*order.Order, error)

	// ApplyDeliveryPatch returns ErrStaleWrite when the guard matched no row.
	ApplyDeliveryPatch(ctx context.Context, patch DeliveryPatch) error

	// ApplyStatusPatch returns ErrStaleWrite when the guard matched no row.
	ApplyStatusPatch(ctx context.Context, patch StatusPatch) error

	// ApplyPaymentPatch returns errs.ErrObjectNotFound when the order does not
	// exist and ErrStaleWrite when it moved on to another transaction.
	ApplyPaymentPatch(ctx context.Context, patch PaymentPatch) error

	// ApplyCheckoutPatch returns errs.ErrObjectNotFound when the order does not exist.
	ApplyCheckoutPatch(ctx context.Context, patch CheckoutPatch) error

	// SetTrackingInformation stores carrier tracking data as an opaque document.
	SetTrackingInformation(ctx context.Context, scope kernel.Scope, raw json.RawMessage) error
}

// OrderStateRepository resolves order status codes to their ids.
type OrderStateRepository interface {
	GetByCode(ctx context.Context, code order.Status) (order.StateRef, error)
}
