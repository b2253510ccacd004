// Package delivery models the delivery leg of an order: the states a driver
// moves the leg through, the actions that move it and the whitelist that ties
// both together.
//
//	NOT_ASSIGNED ─accept─> ACCEPTED ─inPlaceOrigin─> IN_PLACE_ORIGIN ─inRoadDelivery─> IN_ROAD_DELIVERY
//	                                                                                        │
//	                                                                                 inPlaceDestiny
//	                                                                                        v
//	GIVEN_DELIVERY <─givenDelivery─ BACK_TO_ORIGIN <─backToOrigin─ IN_PLACE_DESTINY ─givenDelivery─> GIVEN_DELIVERY
//
// backToOrigin is only legal for courier orders. Any (state, action) pair that
// is not listed fails with errs.ActionInvalidError.
package delivery
