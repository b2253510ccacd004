package delivery

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// whitelist is the only source of legal delivery transitions.
var whitelist = map[State]map[Action]State{
	NotAssigned: {
		ActionAccept: Accepted,
	},
	Accepted: {
		ActionInPlaceOrigin: InPlaceOrigin,
	},
	InPlaceOrigin: {
		ActionInRoadDelivery: InRoadDelivery,
	},
	InRoadDelivery: {
		ActionInPlaceDestiny: InPlaceDestiny,
	},
	InPlaceDestiny: {
		ActionGivenDelivery: GivenDelivery,
		ActionBackToOrigin:  BackToOrigin,
	},
	BackToOrigin: {
		ActionGivenDelivery: GivenDelivery,
	},
	GivenDelivery: {},
}

// Next returns the state reached by applying action to from. courier tells
// whether the order is a courier order, the only kind allowed to go back to origin.
func Next(from State, action Action, courier bool) (State, error) {
	to, ok := whitelist[from][action]
	if !ok {
		return from, errs.NewActionInvalidError(action.String(), from.String())
	}
	if action == ActionBackToOrigin && !courier {
		return from, errs.NewActionInvalidErrorWithCause(
			action.String(), from.String(), fmt.Errorf("only courier orders can go back to origin"),
		)
	}
	return to, nil
}

// Allowed lists the actions whitelisted for a state, regardless of order type.
func Allowed(from State) []Action {
	actions := make([]Action, 0, len(whitelist[from]))
	for _, a := range Actions() {
		if _, ok := whitelist[from][a]; ok {
			actions = append(actions, a)
		}
	}
	return actions
}
