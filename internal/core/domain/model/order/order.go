package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not built by NewOrder or Restore.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or Restore")
)

// Order is the aggregate root of fulfillment. See the package documentation
// for the ownership of each state dimension.
//
// Invariants:
//   - id and companyID are positive and never change
//   - a delivery state past NOT_ASSIGNED always has a delivery id
//   - the state log only grows
type Order struct {
	id        int64
	companyID int64
	appCode   string

	status   Status
	statusID int64

	deliveryState delivery.State
	deliveryID    *int64
	carrier       delivery.CarrierCode
	typeOrder     Type
	origin        kernel.GeoPoint
	destination   kernel.GeoPoint

	paymentState         PaymentState
	paymentMethod        PaymentMethod
	total                kernel.Money
	gatewayTransactionID *kernel.UUID
	gatewayCode          payment.GatewayCode
	checkoutSession      json.RawMessage
	flagStatusOrder      bool
	gatewayErrorCode     string

	stateLog            []LogEntry
	trackingInformation json.RawMessage

	guard guard.ConstructorGuard
}

// NewOrder creates an order in its initial status with an unassigned delivery leg
// and a pending payment.
//
// Parameters:
//   - id, companyID: platform identifiers (both must be positive)
//   - initial: the REQUESTED status reference resolved from the order states table
//   - typeOrder, method: fulfillment kind and payment method
//   - total: order amount
//
// Example:
//
//	o, err := order.NewOrder(42, 7, order.StateRef{ID: 1, Code: order.Requested},
//	    order.TypeDelivery, order.MethodOnline, kernel.MustMoney("59.90", "PEN"))
func NewOrder(id, companyID int64, initial StateRef, typeOrder Type, method PaymentMethod, total kernel.Money) (*Order, error) {
	return Restore(Snapshot{
		ID:            id,
		CompanyID:     companyID,
		StatusID:      initial.ID,
		Status:        initial.Code,
		DeliveryState: delivery.NotAssigned,
		PaymentState:  PaymentPending,
		PaymentMethod: method,
		Type:          typeOrder,
		Total:         total,
	})
}

// Snapshot is the flat form of an order used by persistence adapters.
type Snapshot struct {
	ID                   int64
	CompanyID            int64
	AppCode              string
	StatusID             int64
	Status               Status
	DeliveryState        delivery.State
	DeliveryID           *int64
	Carrier              delivery.CarrierCode
	Type                 Type
	Origin               kernel.GeoPoint
	Destination          kernel.GeoPoint
	PaymentState         PaymentState
	PaymentMethod        PaymentMethod
	Total                kernel.Money
	GatewayTransactionID *kernel.UUID
	GatewayCode          payment.GatewayCode
	CheckoutSession      json.RawMessage
	FlagStatusOrder      bool
	GatewayErrorCode     string
	StateLog             []LogEntry
	TrackingInformation  json.RawMessage
}

// Restore rebuilds an order from a snapshot, validating every invariant that
// does not depend on the status code. Unknown status codes are accepted: the
// order state machine treats them as unsupported.
func Restore(s Snapshot) (*Order, error) {
	scope := kernel.Scope{OrderID: s.ID, CompanyID: s.CompanyID}

	if err := errors.Join(
		scope.Validate(),
		s.DeliveryState.Validate(),
		s.PaymentState.Validate(),
		s.PaymentMethod.Validate(),
		s.Type.Validate(),
		s.Total.Validate(),
		validateDeliveryAssignment(s.DeliveryState, s.DeliveryID),
	); err != nil {
		return nil, err
	}
	if s.Status == "" {
		return nil, errs.NewValueIsRequiredError("orderState")
	}
	if s.GatewayCode != "" {
		if err := s.GatewayCode.Validate(); err != nil {
			return nil, err
		}
	}

	return &Order{
		id:                   s.ID,
		companyID:            s.CompanyID,
		appCode:              s.AppCode,
		status:               s.Status,
		statusID:             s.StatusID,
		deliveryState:        s.DeliveryState,
		deliveryID:           cloneID(s.DeliveryID),
		carrier:              s.Carrier,
		typeOrder:            s.Type,
		origin:               s.Origin,
		destination:          s.Destination,
		paymentState:         s.PaymentState,
		paymentMethod:        s.PaymentMethod,
		total:                s.Total,
		gatewayTransactionID: s.GatewayTransactionID,
		gatewayCode:          s.GatewayCode,
		checkoutSession:      s.CheckoutSession,
		flagStatusOrder:      s.FlagStatusOrder,
		gatewayErrorCode:     s.GatewayErrorCode,
		stateLog:             slices.Clone(s.StateLog),
		trackingInformation:  s.TrackingInformation,
		guard:                guard.NewConstructorGuard(),
	}, nil
}

func validateDeliveryAssignment(state delivery.State, deliveryID *int64) error {
	if state.RequiresDriver() && deliveryID == nil {
		return errs.NewValueIsInvalidErrorWithCause(
			"deliveryState",
			fmt.Errorf("%s requires an assigned delivery", state),
		)
	}
	return nil
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// Snapshot returns the flat form of the order.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:                   o.id,
		CompanyID:            o.companyID,
		AppCode:              o.appCode,
		StatusID:             o.statusID,
		Status:               o.status,
		DeliveryState:        o.deliveryState,
		DeliveryID:           cloneID(o.deliveryID),
		Carrier:              o.carrier,
		Type:                 o.typeOrder,
		Origin:               o.origin,
		Destination:          o.destination,
		PaymentState:         o.paymentState,
		PaymentMethod:        o.paymentMethod,
		Total:                o.total,
		GatewayTransactionID: o.gatewayTransactionID,
		GatewayCode:          o.gatewayCode,
		CheckoutSession:      o.checkoutSession,
		FlagStatusOrder:      o.flagStatusOrder,
		GatewayErrorCode:     o.gatewayErrorCode,
		StateLog:             slices.Clone(o.stateLog),
		TrackingInformation:  o.trackingInformation,
	}
}

// Validate ensures the order was built through NewOrder or Restore.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

func (o *Order) ID() int64                            { return o.id }
func (o *Order) CompanyID() int64                     { return o.companyID }
func (o *Order) Scope() kernel.Scope                  { return kernel.Scope{OrderID: o.id, CompanyID: o.companyID} }
func (o *Order) AppCode() string                      { return o.appCode }
func (o *Order) Status() Status                       { return o.status }
func (o *Order) StatusID() int64                      { return o.statusID }
func (o *Order) DeliveryState() delivery.State        { return o.deliveryState }
func (o *Order) DeliveryID() *int64                   { return cloneID(o.deliveryID) }
func (o *Order) Carrier() delivery.CarrierCode        { return o.carrier }
func (o *Order) Type() Type                           { return o.typeOrder }
func (o *Order) Origin() kernel.GeoPoint              { return o.origin }
func (o *Order) Destination() kernel.GeoPoint         { return o.destination }
func (o *Order) PaymentState() PaymentState           { return o.paymentState }
func (o *Order) PaymentMethod() PaymentMethod         { return o.paymentMethod }
func (o *Order) Total() kernel.Money                  { return o.total }
func (o *Order) GatewayTransactionID() *kernel.UUID   { return o.gatewayTransactionID }
func (o *Order) GatewayCode() payment.GatewayCode     { return o.gatewayCode }
func (o *Order) CheckoutSession() json.RawMessage     { return o.checkoutSession }
func (o *Order) FlagStatusOrder() bool                { return o.flagStatusOrder }
func (o *Order) GatewayErrorCode() string             { return o.gatewayErrorCode }
func (o *Order) StateLog() []LogEntry                 { return slices.Clone(o.stateLog) }
func (o *Order) TrackingInformation() json.RawMessage { return o.trackingInformation }

// HasDelivery reports whether a delivery leg has been assigned.
func (o *Order) HasDelivery() bool {
	return o.deliveryID != nil
}

// IsAssignedTo reports whether deliveryID runs the order's delivery leg.
func (o *Order) IsAssignedTo(deliveryID int64) bool {
	return o.deliveryID != nil && *o.deliveryID == deliveryID
}

func (o *Order) clone() *Order {
	next := *o
	next.deliveryID = cloneID(o.deliveryID)
	next.stateLog = slices.Clone(o.stateLog)
	return &next
}
