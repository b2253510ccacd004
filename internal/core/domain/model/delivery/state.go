package delivery

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// State is the persisted code of a delivery leg.
type State string

const (
	NotAssigned    State = "NOT_ASSIGNED"
	Accepted       State = "ACCEPTED"
	InPlaceOrigin  State = "IN_PLACE_ORIGIN"
	InRoadDelivery State = "IN_ROAD_DELIVERY"
	InPlaceDestiny State = "IN_PLACE_DESTINY"
	BackToOrigin   State = "BACK_TO_ORIGIN"
	GivenDelivery  State = "GIVEN_DELIVERY"
)

// Action is what a driver reports about the leg.
type Action string

const (
	ActionAccept         Action = "accept"
	ActionInPlaceOrigin  Action = "inPlaceOrigin"
	ActionInRoadDelivery Action = "inRoadDelivery"
	ActionInPlaceDestiny Action = "inPlaceDestiny"
	ActionGivenDelivery  Action = "givenDelivery"
	ActionBackToOrigin   Action = "backToOrigin"
)

// States lists every delivery state in lifecycle order.
func States() []State {
	return []State{NotAssigned, Accepted, InPlaceOrigin, InRoadDelivery, InPlaceDestiny, BackToOrigin, GivenDelivery}
}

// Actions lists every delivery action.
func Actions() []Action {
	return []Action{
		ActionAccept, ActionInPlaceOrigin, ActionInRoadDelivery,
		ActionInPlaceDestiny, ActionGivenDelivery, ActionBackToOrigin,
	}
}

func (s State) String() string  { return string(s) }
func (a Action) String() string { return string(a) }

func (s State) Validate() error {
	for _, known := range States() {
		if s == known {
			return nil
		}
	}
	return errs.NewValueIsInvalidErrorWithCause("deliveryState", fmt.Errorf("%q is not a delivery state", string(s)))
}

func ParseAction(raw string) (Action, error) {
	for _, known := range Actions() {
		if Action(raw) == known {
			return known, nil
		}
	}
	return "", errs.NewValueIsInvalidErrorWithCause("action", fmt.Errorf("%q is not a delivery action", raw))
}

// IsFinal reports whether the leg accepts no more actions.
func (s State) IsFinal() bool {
	return s == GivenDelivery
}

// RequiresDriver reports whether an order in this state must have a delivery assigned.
func (s State) RequiresDriver() bool {
	return s != NotAssigned && s != ""
}
