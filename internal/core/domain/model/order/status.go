package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status is the order state code. Its numeric id lives in the order states
// table and is resolved through StateRef lookups.
//
// Transitions:
//
//	REQUESTED ──confirm──> CONFIRMED ──pickUp──> DISPATCHED ──deliver──> DELIVERED
//	    │                      │  └─────────────direct──────────────────────^
//	    └───────cancel─────────┴──cancel──> CANCELED
//
// direct, pickUp and deliver only make sense once a delivery leg exists.
type Status string

const (
	Requested  Status = "REQUESTED"
	Confirmed  Status = "CONFIRMED"
	Dispatched Status = "DISPATCHED"
	Delivered  Status = "DELIVERED"
	Canceled   Status = "CANCELED"
)

// Action requests an order status change.
type Action string

const (
	ActionConfirm Action = "confirm"
	ActionCancel  Action = "cancel"
	ActionDirect  Action = "direct"
	ActionPickUp  Action = "pickUp"
	ActionDeliver Action = "deliver"
)

// StateRef pairs a status code with its id in the order states table.
type StateRef struct {
	ID   int64
	Code Status
}

var statusTransitions = map[Status]map[Action]Status{
	Requested: {
		ActionConfirm: Confirmed,
		ActionCancel:  Canceled,
	},
	Confirmed: {
		ActionCancel: Canceled,
		ActionPickUp: Dispatched,
		ActionDirect: Delivered,
	},
	Dispatched: {
		ActionDeliver: Delivered,
	},
	Delivered: {},
	Canceled:  {},
}

// Statuses lists the known status codes.
func Statuses() []Status {
	return []Status{Requested, Confirmed, Dispatched, Delivered, Canceled}
}

// Actions lists every order action.
func Actions() []Action {
	return []Action{ActionConfirm, ActionCancel, ActionDirect, ActionPickUp, ActionDeliver}
}

func (s Status) String() string { return string(s) }
func (a Action) String() string { return string(a) }

// IsKnown reports whether s has a transition table.
func (s Status) IsKnown() bool {
	_, ok := statusTransitions[s]
	return ok
}

// IsFinal reports a status without outgoing transitions.
func (s Status) IsFinal() bool {
	return s == Delivered || s == Canceled
}

// Next applies the transition table. Unknown statuses reject every action.
func (s Status) Next(action Action) (Status, error) {
	to, ok := statusTransitions[s][action]
	if !ok {
		return s, errs.NewActionInvalidError(action.String(), s.String())
	}
	return to, nil
}

// Transitions returns the actions accepted by s and their targets.
func (s Status) Transitions() map[Action]Status {
	out := make(map[Action]Status, len(statusTransitions[s]))
	for a, to := range statusTransitions[s] {
		out[a] = to
	}
	return out
}

// RequiresDelivery reports actions that need an assigned delivery leg.
func (a Action) RequiresDelivery() bool {
	return a == ActionDirect || a == ActionPickUp || a == ActionDeliver
}

func ParseAction(raw string) (Action, error) {
	for _, a := range Actions() {
		if Action(raw) == a {
			return a, nil
		}
	}
	return "", errs.NewValueIsInvalidErrorWithCause("action", fmt.Errorf("%q is not an order action", raw))
}
