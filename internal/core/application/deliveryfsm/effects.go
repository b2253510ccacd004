package deliveryfsm

import (
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/order"
)

// effect is everything a legal (state, action) pair triggers besides the
// delivery state change itself.
type effect struct {
	// orderActions are tried in order; the first one legal for the current
	// order status is applied.
	orderActions []order.Action
	// settlesPayment marks the hand-off where on-delivery payments are collected.
	settlesPayment bool
	events         map[notification.Audience]notification.Event
}

func notify(customer, employee, driver notification.Event) map[notification.Audience]notification.Event {
	events := map[notification.Audience]notification.Event{}
	if customer != "" {
		events[notification.AudienceCustomer] = customer
	}
	if employee != "" {
		events[notification.AudienceEmployee] = employee
	}
	if driver != "" {
		events[notification.AudienceDriver] = driver
	}
	return events
}

// effects is the dispatch table of the machine. Its keys mirror the delivery
// whitelist exactly.
var effects = map[delivery.State]map[delivery.Action]effect{
	delivery.NotAssigned: {
		delivery.ActionAccept: {
			events: notify(notification.EventDeliveryAccepted, notification.EventDeliveryAccepted, ""),
		},
	},
	delivery.Accepted: {
		delivery.ActionInPlaceOrigin: {
			events: notify("", notification.EventDriverAtOrigin, ""),
		},
	},
	delivery.InPlaceOrigin: {
		delivery.ActionInRoadDelivery: {
			orderActions: []order.Action{order.ActionPickUp},
			events:       notify(notification.EventOrderOnTheWay, notification.EventOrderOnTheWay, ""),
		},
	},
	delivery.InRoadDelivery: {
		delivery.ActionInPlaceDestiny: {
			events: notify(notification.EventDriverAtDestiny, "", ""),
		},
	},
	delivery.InPlaceDestiny: {
		delivery.ActionGivenDelivery: {
			orderActions:   []order.Action{order.ActionDeliver, order.ActionDirect},
			settlesPayment: true,
			events:         notify(notification.EventOrderDelivered, notification.EventOrderDelivered, notification.EventOrderDelivered),
		},
		delivery.ActionBackToOrigin: {
			events: notify(notification.EventOrderReturning, notification.EventOrderReturning, ""),
		},
	},
	delivery.BackToOrigin: {
		delivery.ActionGivenDelivery: {
			events: notify("", notification.EventOrderReturned, notification.EventOrderReturned),
		},
	},
	delivery.GivenDelivery: {},
}
