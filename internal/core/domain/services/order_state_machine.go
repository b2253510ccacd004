package services

import (
	"context"
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// StateResolver looks up the id of an order status code.
type StateResolver interface {
	GetByCode(ctx context.Context, code order.Status) (order.StateRef, error)
}

// Resolution is the decision taken by the OrderStateMachine.
// Supported is false when the order's current status has no handler set; in
// that case From is the current status and To is empty.
type Resolution struct {
	Supported bool
	Action    order.Action
	From      order.StateRef
	To        order.StateRef
}

type transitionFunc func(o *order.Order) (order.Status, error)

type handlerSet map[order.Action]transitionFunc

// OrderStateMachine is a pure decision function over the order status table.
// It is rebuilt for every order: construction picks the handler set of the
// order's current status, and unknown statuses get a set that accepts nothing
// without failing.
//
// Example:
//
//	sm := services.NewOrderStateMachine(o, orderStates)
//	res, err := sm.Change(ctx, order.ActionConfirm)
//	if err != nil {
//	    return err // errs.ActionInvalidError or a lookup failure
//	}
//	if res.Supported {
//	    // persist res.To on the order
//	}
type OrderStateMachine struct {
	order    *order.Order
	resolver StateResolver
	handlers handlerSet
}

// NewOrderStateMachine selects the handler set for the order's status.
func NewOrderStateMachine(o *order.Order, resolver StateResolver) OrderStateMachine {
	return OrderStateMachine{
		order:    o,
		resolver: resolver,
		handlers: handlersFor(o.Status()),
	}
}

func handlersFor(code order.Status) handlerSet {
	if !code.IsKnown() {
		return nil
	}

	set := handlerSet{}
	for action, to := range code.Transitions() {
		set[action] = transitionTo(action, to)
	}
	return set
}

func transitionTo(action order.Action, to order.Status) transitionFunc {
	return func(o *order.Order) (order.Status, error) {
		if action.RequiresDelivery() && !o.HasDelivery() {
			return "", errs.NewActionInvalidErrorWithCause(
				action.String(), o.Status().String(),
				errors.New("order has no delivery leg"),
			)
		}
		return to, nil
	}
}

// Supported reports whether the order's status has a handler set.
func (m OrderStateMachine) Supported() bool {
	return m.handlers != nil
}

// Change decides the transition for action and resolves the target status id.
func (m OrderStateMachine) Change(ctx context.Context, action order.Action) (Resolution, error) {
	from := order.StateRef{ID: m.order.StatusID(), Code: m.order.Status()}

	if !m.Supported() {
		return Resolution{Supported: false, Action: action, From: from}, nil
	}

	handler, ok := m.handlers[action]
	if !ok {
		return Resolution{}, errs.NewActionInvalidError(action.String(), from.Code.String())
	}

	to, err := handler(m.order)
	if err != nil {
		return Resolution{}, err
	}

	ref, err := m.resolver.GetByCode(ctx, to)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve order state %s: %w", to, err)
	}

	return Resolution{Supported: true, Action: action, From: from, To: ref}, nil
}
