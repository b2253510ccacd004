// Package services provides domain services of the fulfillment system that do
// not belong to a single aggregate.
//
//   - OrderStateMachine: decides order status transitions and resolves the
//     target status id; persisting the result is up to the caller
//   - CarrierSelector: picks the best quote among delivery carriers
package services
