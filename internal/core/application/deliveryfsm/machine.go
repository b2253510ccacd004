// Package deliveryfsm drives the delivery leg of an order.
//
// A Machine is rebuilt for every request from the order, the driver acting on
// it and the carrier credentials. ChangeState validates the action against the
// delivery whitelist, derives the order status and payment changes that go
// with it, persists everything in one guarded write and then runs the best
// effort side effects (notifications, carrier sync).
//
//	m := deliveryfsm.New(deps, o, d, creds)
//	if err := m.ChangeState(ctx, delivery.ActionAccept, nil); err != nil {
//	    return err // ActionInvalid, AlreadyAssigned, AssignmentRace or a persistence failure
//	}
//	resp, _ := m.SendResponse()
package deliveryfsm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// Deps are the collaborators shared by every Machine.
type Deps struct {
	UnitOfWork  ports.UnitOfWorkFactory
	OrderStates ports.OrderStateRepository
	Notifier    ports.Notifier
	// Carriers is optional; without it carrier sync is skipped.
	Carriers ports.DeliveryClientFactory
	// PaymentPolicy defaults to DefaultPaymentPolicy{}.
	PaymentPolicy PaymentOnDeliveryPolicy
	Clock         func() time.Time
	Logger        *slog.Logger
}

// CollectData is what the driver reports when collecting an on-delivery payment.
type CollectData struct {
	Method      string
	Amount      string
	VoucherCode string
	Note        string
}

func (c *CollectData) fields() map[string]string {
	if c == nil {
		return nil
	}
	data := map[string]string{}
	for k, v := range map[string]string{
		"method":      c.Method,
		"amount":      c.Amount,
		"voucherCode": c.VoucherCode,
		"note":        c.Note,
	} {
		if v != "" {
			data[k] = v
		}
	}
	return data
}

// Response is the outcome of the last successful transition.
type Response struct {
	OrderID       int64
	CompanyID     int64
	DeliveryID    int64
	Action        delivery.Action
	From          delivery.State
	To            delivery.State
	OrderStatus   order.Status
	PaymentState  order.PaymentState
	Notifications int
	Tracking      *delivery.Tracking
	At            time.Time
}

// Machine is the delivery state machine of one order.
type Machine struct {
	deps        Deps
	order       *order.Order
	driver      *driver.Driver
	credentials *ports.Credentials
	logger      *slog.Logger
	response    *Response
}

// New builds a machine for o acted on by d. credentials are the carrier
// credentials of the order's carrier and may be nil.
func New(deps Deps, o *order.Order, d *driver.Driver, credentials *ports.Credentials) *Machine {
	if deps.PaymentPolicy == nil {
		deps.PaymentPolicy = DefaultPaymentPolicy{}
	}
	if deps.Clock == nil {
		deps.Clock = func() time.Time { return time.Now().UTC() }
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Machine{
		deps:        deps,
		order:       o,
		driver:      d,
		credentials: credentials,
		logger:      deps.Logger.With("component", "delivery_state_machine"),
	}
}

// ChangeState applies action to the delivery leg. On success the order passed
// to New reflects the persisted state.
func (m *Machine) ChangeState(ctx context.Context, action delivery.Action, collect *CollectData) error {
	if err := m.order.Validate(); err != nil {
		return err
	}
	if m.driver == nil {
		return errs.NewValueIsRequiredError("delivery")
	}
	if err := m.driver.Validate(); err != nil {
		return err
	}

	from := m.order.DeliveryState()
	to, err := delivery.Next(from, action, m.order.Type().IsCourier())
	if err != nil {
		return err
	}
	eff, ok := effects[from][action]
	if !ok {
		return errs.NewActionInvalidError(action.String(), from.String())
	}
	if err = m.checkActor(action); err != nil {
		return err
	}

	now := m.deps.Clock()
	actorID := m.driver.ID()
	change := order.DeliveryChange{
		From:       from,
		To:         to,
		DeliveryID: actorID,
		Log: []order.LogEntry{{
			Kind:    order.LogDelivery,
			From:    from.String(),
			To:      to.String(),
			Action:  action.String(),
			ActorID: &actorID,
			At:      now,
		}},
	}

	if err = m.resolveOrderStatus(ctx, eff, &change, now); err != nil {
		return err
	}
	if eff.settlesPayment && m.deps.PaymentPolicy.SettlesOnDelivery(m.order) {
		paid := order.PaymentPaid
		change.PaymentState = &paid
		change.Log = append(change.Log, order.LogEntry{
			Kind:    order.LogPayment,
			From:    string(m.order.PaymentState()),
			To:      string(paid),
			Action:  "collectOnDelivery",
			ActorID: &actorID,
			At:      now,
			Data:    collect.fields(),
		})
	}

	next, err := m.order.WithDeliveryChange(change)
	if err != nil {
		return err
	}
	if err = m.persist(ctx, change, next); err != nil {
		return err
	}
	*m.order = *next

	m.response = &Response{
		OrderID:      next.ID(),
		CompanyID:    next.CompanyID(),
		DeliveryID:   actorID,
		Action:       action,
		From:         from,
		To:           to,
		OrderStatus:  next.Status(),
		PaymentState: next.PaymentState(),
		At:           now,
	}
	m.response.Notifications = m.dispatch(ctx, action, eff, now)
	m.response.Tracking = m.syncCarrier(ctx, action, to, now)

	m.logger.InfoContext(ctx, "Delivery state changed",
		"order_id", next.ID(), "company_id", next.CompanyID(), "delivery_id", actorID,
		"from", from, "to", to)
	return nil
}

// SendResponse returns the outcome of the last successful ChangeState.
func (m *Machine) SendResponse() (Response, bool) {
	if m.response == nil {
		return Response{}, false
	}
	return *m.response, true
}

func (m *Machine) checkActor(action delivery.Action) error {
	if m.order.Status() == order.Canceled {
		return errs.NewActionInvalidErrorWithCause(action.String(), m.order.DeliveryState().String(),
			errors.New("order is canceled"))
	}
	if err := m.driver.CanServe(m.order.CompanyID()); err != nil {
		return err
	}
	if action == delivery.ActionAccept {
		if m.order.HasDelivery() {
			return errs.NewAlreadyAssignedError("orderId", m.order.ID())
		}
		return nil
	}
	if !m.order.IsAssignedTo(m.driver.ID()) {
		return errs.NewAlreadyAssignedError("orderId", m.order.ID())
	}
	return nil
}

// resolveOrderStatus applies the first order action legal for the current
// status. An order whose status admits none keeps its status.
func (m *Machine) resolveOrderStatus(ctx context.Context, eff effect, change *order.DeliveryChange, now time.Time) error {
	if len(eff.orderActions) == 0 {
		return nil
	}

	// the decision sees the order as it will be after the delivery change
	probe, err := m.order.WithDeliveryChange(order.DeliveryChange{
		From: change.From, To: change.To, DeliveryID: change.DeliveryID,
	})
	if err != nil {
		return err
	}
	sm := services.NewOrderStateMachine(probe, m.deps.OrderStates)

	for _, action := range eff.orderActions {
		res, err := sm.Change(ctx, action)
		if errors.Is(err, errs.ErrActionInvalid) {
			continue
		}
		if err != nil {
			return err
		}
		if !res.Supported {
			break
		}

		to := res.To
		change.Status = &to
		change.Log = append(change.Log, order.LogEntry{
			Kind:   order.LogOrder,
			From:   res.From.Code.String(),
			To:     res.To.Code.String(),
			Action: action.String(),
			At:     now,
		})
		return nil
	}

	m.logger.WarnContext(ctx, "Order status left unchanged by delivery transition",
		"order_id", m.order.ID(), "company_id", m.order.CompanyID(),
		"order_status", m.order.Status(), "delivery_state", change.To)
	return nil
}

func (m *Machine) persist(ctx context.Context, change order.DeliveryChange, next *order.Order) error {
	uow := m.deps.UnitOfWork.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	err := uow.OrderRepository().ApplyDeliveryPatch(ctx, ports.DeliveryPatch{
		Scope:                m.order.Scope(),
		ExpectedState:        change.From,
		ExpectedDeliveryID:   m.order.DeliveryID(),
		ExpectedStatusID:     m.order.StatusID(),
		ExpectedPaymentState: m.order.PaymentState(),
		WritesStatus:         change.Status != nil,
		SettlesPayment:       change.PaymentState != nil,
		Next:                 next,
		Log:                  change.Log,
	})
	if errors.Is(err, ports.ErrStaleWrite) {
		return errs.NewAssignmentRaceError("orderId", m.order.ID())
	}
	if err != nil {
		return fmt.Errorf("persist delivery transition of order %d: %w", m.order.ID(), err)
	}

	return uow.Commit(ctx)
}

// dispatch sends the transition's notifications and returns how many were
// accepted. Failures never undo the transition.
func (m *Machine) dispatch(ctx context.Context, action delivery.Action, eff effect, now time.Time) int {
	if m.deps.Notifier == nil {
		return 0
	}

	deliveryID := m.driver.ID()
	sent := 0
	for _, audience := range []notification.Audience{
		notification.AudienceCustomer, notification.AudienceEmployee, notification.AudienceDriver,
	} {
		event, ok := eff.events[audience]
		if !ok {
			continue
		}
		err := m.deps.Notifier.Dispatch(ctx, notification.Message{
			Event:      event,
			Audience:   audience,
			CompanyID:  m.order.CompanyID(),
			OrderID:    m.order.ID(),
			DeliveryID: &deliveryID,
			Data: map[string]string{
				"action":        action.String(),
				"deliveryState": m.order.DeliveryState().String(),
				"orderStatus":   m.order.Status().String(),
			},
			At: now,
		})
		if err != nil {
			m.logger.WarnContext(ctx, "Notification not dispatched",
				"order_id", m.order.ID(), "event", event, "audience", audience, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// syncCarrier mirrors the transition on the order's third-party carrier.
// Accepting registers the shipment and stores its tracking; later
// transitions push the new state.
func (m *Machine) syncCarrier(ctx context.Context, action delivery.Action, to delivery.State, now time.Time) *delivery.Tracking {
	if m.deps.Carriers == nil || m.order.Carrier() == delivery.CarrierNone || m.credentials == nil {
		return nil
	}

	logger := m.logger.With("order_id", m.order.ID(), "carrier", m.order.Carrier())
	client, err := m.deps.Carriers.For(m.order.Carrier())
	if err != nil {
		logger.WarnContext(ctx, "Carrier client unavailable", "error", err)
		return nil
	}

	if action == delivery.ActionAccept {
		tracking, err := client.Create(ctx, ports.ShipmentRequest{
			Scope:       m.order.Scope(),
			DriverName:  m.driver.Name(),
			DriverPhone: m.driver.Phone(),
			Origin:      m.order.Origin(),
			Destination: m.order.Destination(),
			Credentials: *m.credentials,
		})
		if err != nil {
			logger.WarnContext(ctx, "Carrier shipment not created", "error", err)
			return nil
		}
		raw, err := json.Marshal(tracking)
		if err != nil {
			logger.WarnContext(ctx, "Carrier tracking not encoded", "error", err)
			return nil
		}
		if err = m.deps.UnitOfWork.Create().OrderRepository().SetTrackingInformation(ctx, m.order.Scope(), raw); err != nil {
			logger.WarnContext(ctx, "Carrier tracking not stored", "error", err)
			return nil
		}
		*m.order = *m.order.WithTracking(raw)
		return &tracking
	}

	var tracking delivery.Tracking
	if err = json.Unmarshal(m.order.TrackingInformation(), &tracking); err != nil || tracking.Code == "" {
		logger.WarnContext(ctx, "Order has no carrier tracking", "error", err)
		return nil
	}
	err = client.UpdateStatus(ctx, ports.ShipmentStatus{
		Scope:       m.order.Scope(),
		Tracking:    tracking,
		State:       to,
		At:          now,
		Credentials: *m.credentials,
	})
	if err != nil {
		logger.WarnContext(ctx, "Carrier status not updated", "state", to, "error", err)
		return nil
	}
	return &tracking
}
