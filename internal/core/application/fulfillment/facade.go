// Package fulfillment exposes the order fulfillment flows to the inbound
// adapters: order status changes, delivery transitions, carrier quotes and
// the payment coordinator.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/deliveryfsm"
	"fulfillment/internal/core/application/payments"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// Deps are the collaborators of the facade. Carriers and Notifier may be nil.
type Deps struct {
	UnitOfWork    ports.UnitOfWorkFactory
	OrderStates   ports.OrderStateRepository
	Drivers       ports.DriverRepository
	Credentials   ports.CredentialStore
	Carriers      ports.DeliveryClientFactory
	Notifier      ports.Notifier
	Payments      *payments.Coordinator
	PaymentPolicy deliveryfsm.PaymentOnDeliveryPolicy
	Environment   string
	Clock         func() time.Time
	Logger        *slog.Logger
}

// StatusChange is the result of ChangeOrderState. Supported is false when the
// order's status has no transition table; nothing is written then.
type StatusChange struct {
	Supported bool
	From      order.StateRef
	To        order.StateRef
	Refund    *payments.Outcome
}

// Facade is the order fulfillment entry point.
type Facade struct {
	deps     Deps
	selector services.CarrierSelector
	logger   *slog.Logger
}

func New(deps Deps) (*Facade, error) {
	if deps.UnitOfWork == nil {
		return nil, errs.NewValueIsRequiredError("unitOfWork")
	}
	if deps.OrderStates == nil {
		return nil, errs.NewValueIsRequiredError("orderStates")
	}
	if deps.Payments == nil {
		return nil, errs.NewValueIsRequiredError("payments")
	}
	if deps.Clock == nil {
		deps.Clock = func() time.Time { return time.Now().UTC() }
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Facade{
		deps:     deps,
		selector: services.NewCarrierSelector(),
		logger:   deps.Logger.With("component", "fulfillment_facade"),
	}, nil
}

// Payments exposes the payment coordinator.
func (f *Facade) Payments() *payments.Coordinator {
	return f.deps.Payments
}

// Order loads an order of a tenant.
func (f *Facade) Order(ctx context.Context, scope kernel.Scope) (*order.Order, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return f.deps.UnitOfWork.Create().OrderRepository().Get(ctx, scope)
}

// Driver loads a driver of a tenant.
func (f *Facade) Driver(ctx context.Context, companyID, id int64) (*driver.Driver, error) {
	if f.deps.Drivers == nil {
		return nil, errs.NewValueIsRequiredError("drivers")
	}
	return f.deps.Drivers.Get(ctx, companyID, id)
}

// ChangeOrderState applies an order action. The write is guarded by the
// status id the order was read with; ports.ErrStaleWrite means someone else
// changed the status first. Canceling a paid order refunds it on a best
// effort basis.
func (f *Facade) ChangeOrderState(ctx context.Context, o *order.Order, action order.Action) (StatusChange, error) {
	if err := o.Validate(); err != nil {
		return StatusChange{}, err
	}

	res, err := services.NewOrderStateMachine(o, f.deps.OrderStates).Change(ctx, action)
	if err != nil {
		return StatusChange{}, err
	}
	if !res.Supported {
		f.logger.WarnContext(ctx, "Order status has no transitions", "order_id", o.ID(), "status", o.Status())
		return StatusChange{From: res.From}, nil
	}

	now := f.deps.Clock()
	entry := order.LogEntry{
		Kind:   order.LogOrder,
		From:   res.From.Code.String(),
		To:     res.To.Code.String(),
		Action: action.String(),
		At:     now,
	}
	next := o.WithStatus(res.To, entry)

	uow := f.deps.UnitOfWork.Create()
	if err = uow.Begin(ctx); err != nil {
		return StatusChange{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	err = uow.OrderRepository().ApplyStatusPatch(ctx, ports.StatusPatch{
		Scope:            o.Scope(),
		ExpectedStatusID: o.StatusID(),
		Next:             next,
		Log:              []order.LogEntry{entry},
	})
	if err != nil {
		return StatusChange{}, fmt.Errorf("change status of order %d: %w", o.ID(), err)
	}
	if err = uow.Commit(ctx); err != nil {
		return StatusChange{}, err
	}
	*o = *next

	change := StatusChange{Supported: true, From: res.From, To: res.To}
	f.logger.InfoContext(ctx, "Order status changed",
		"order_id", o.ID(), "company_id", o.CompanyID(), "from", res.From.Code, "to", res.To.Code)

	if action == order.ActionCancel && o.PaymentState() == order.PaymentPaid {
		out, err := f.deps.Payments.Refund(ctx, o, "order canceled")
		if err != nil {
			f.logger.WarnContext(ctx, "Refund of canceled order failed", "order_id", o.ID(), "error", err)
		} else {
			change.Refund = &out
		}
	}
	f.notifyStatus(ctx, o, change, now)
	return change, nil
}

// ChangeDeliveryState runs a delivery transition for d on o. The carrier
// credentials of the order are resolved here; without them carrier sync is
// skipped.
func (f *Facade) ChangeDeliveryState(
	ctx context.Context, o *order.Order, d *driver.Driver, action delivery.Action, collect *deliveryfsm.CollectData,
) (deliveryfsm.Response, error) {
	if err := o.Validate(); err != nil {
		return deliveryfsm.Response{}, err
	}

	var creds *ports.Credentials
	if o.Carrier() != delivery.CarrierNone {
		c, err := f.carrierCredentials(ctx, o, o.Carrier())
		if err != nil {
			f.logger.WarnContext(ctx, "Carrier credentials unavailable",
				"order_id", o.ID(), "carrier", o.Carrier(), "error", err)
		} else {
			creds = &c
		}
	}

	m := deliveryfsm.New(deliveryfsm.Deps{
		UnitOfWork:    f.deps.UnitOfWork,
		OrderStates:   f.deps.OrderStates,
		Notifier:      f.deps.Notifier,
		Carriers:      f.deps.Carriers,
		PaymentPolicy: f.deps.PaymentPolicy,
		Clock:         f.deps.Clock,
		Logger:        f.deps.Logger,
	}, o, d, creds)
	if err := m.ChangeState(ctx, action, collect); err != nil {
		return deliveryfsm.Response{}, err
	}

	resp, _ := m.SendResponse()
	return resp, nil
}

// QuoteDelivery asks every configured carrier for a price and returns the
// best quote. Carriers without credentials or failing to answer are skipped.
func (f *Facade) QuoteDelivery(ctx context.Context, o *order.Order) (delivery.Quote, error) {
	if err := o.Validate(); err != nil {
		return delivery.Quote{}, err
	}
	if f.deps.Carriers == nil {
		return delivery.Quote{}, services.ErrNoQuoteAvailable
	}

	var quotes []delivery.Quote
	for _, carrier := range delivery.Carriers() {
		logger := f.logger.With("order_id", o.ID(), "carrier", carrier)

		creds, err := f.carrierCredentials(ctx, o, carrier)
		if errors.Is(err, errs.ErrObjectNotFound) {
			continue
		}
		if err != nil {
			logger.WarnContext(ctx, "Carrier credentials unavailable", "error", err)
			continue
		}
		client, err := f.deps.Carriers.For(carrier)
		if err != nil {
			logger.WarnContext(ctx, "Carrier client unavailable", "error", err)
			continue
		}

		quote, err := client.GetPrice(ctx, ports.QuoteRequest{
			Scope:       o.Scope(),
			Origin:      o.Origin(),
			Destination: o.Destination(),
			Credentials: creds,
		})
		if err != nil {
			logger.WarnContext(ctx, "Carrier quote failed", "error", err)
			continue
		}
		quotes = append(quotes, quote)
	}

	return f.selector.Select(quotes)
}

func (f *Facade) carrierCredentials(ctx context.Context, o *order.Order, carrier delivery.CarrierCode) (ports.Credentials, error) {
	if f.deps.Credentials == nil {
		return ports.Credentials{}, errs.NewObjectNotFoundError("credentials", carrier.String())
	}
	return f.deps.Credentials.GetCredentials(ctx,
		ports.AuthContext{CompanyID: o.CompanyID(), AppCode: o.AppCode(), Environment: f.deps.Environment},
		ports.CredentialQuery{
			SubsidiaryCode:  o.AppCode(),
			CategoryCode:    ports.CategoryDelivery,
			IntegrationCode: carrier.String(),
		})
}

func (f *Facade) notifyStatus(ctx context.Context, o *order.Order, change StatusChange, now time.Time) {
	if f.deps.Notifier == nil {
		return
	}

	data := map[string]string{"from": change.From.Code.String(), "to": change.To.Code.String()}
	if change.Refund != nil {
		data["refund"] = change.Refund.TransactionID.String()
	}
	err := f.deps.Notifier.Dispatch(ctx, notification.Message{
		Event:     notification.EventOrderStatusChanged,
		Audience:  notification.AudienceCustomer,
		CompanyID: o.CompanyID(),
		OrderID:   o.ID(),
		Data:      data,
		At:        now,
	})
	if err != nil {
		f.logger.WarnContext(ctx, "Notification not dispatched", "order_id", o.ID(), "error", err)
	}
}
