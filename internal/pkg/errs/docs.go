// Package errs provides the error taxonomy of the fulfillment service.
//
// Every error type follows the same shape:
//   - a sentinel error variable (e.g. ErrValueIsRequired) used with errors.Is
//   - a struct carrying the details, usable with errors.As
//   - NewX and NewXWithCause constructors
//   - Error() for a single-line message and Unwrap() for classification
//
// Generic validation errors (ObjectNotFoundError, ValueIsInvalidError,
// ValueIsRequiredError, ValueIsOutOfRangeError) are shared by all packages.
// The remaining types describe fulfillment failures:
//   - ActionInvalidError: a state machine action that is not whitelisted
//   - ConflictError: an optimistic write that lost to a concurrent writer
//     (ErrAssignmentRace, ErrAlreadyAssigned)
//   - GatewayError: gateway misconfiguration, transient outages, rejections
//     and capabilities a gateway does not implement
//   - RefundError: refunds past the gateway window or on canceled transactions
//
// Declined payments are not errors. They are returned as typed outcomes by the
// payments package and only carry ErrGatewayRejected when converted explicitly.
package errs
