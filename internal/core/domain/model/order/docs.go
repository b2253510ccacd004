// Package order contains the Order aggregate of the fulfillment domain.
//
// An order is owned by a tenant (company) and carries three independent state
// dimensions:
//   - Status: the commercial lifecycle (REQUESTED, CONFIRMED, DISPATCHED, DELIVERED, CANCELED)
//   - delivery.State: the delivery leg, mutated only by the delivery state machine
//   - PaymentState: the payment outcome, mutated only by the payment coordinator
//     (and by the delivery state machine when payment is collected on delivery)
//
// Every transition appends a LogEntry to the state log, which is never rewritten.
//
// Orders are immutable from the outside. The With* methods return an updated
// copy so that callers can persist the copy with a guarded write and only adopt
// it once the write succeeded:
//
//	next, err := current.WithDeliveryChange(change)
//	if err != nil {
//	    return err
//	}
//	if err := repo.ApplyDeliveryPatch(ctx, patchFrom(current, next)); err != nil {
//	    return err
//	}
//	*current = *next
package order
