// Package kernel provides the shared value objects of the fulfillment domain.
//
//   - UUID: identifier of gateway transactions
//   - Money: a decimal amount with its ISO-4217 currency
//   - GeoPoint: a latitude/longitude pair used for carrier quotes
//   - Scope: the (order, company) pair every ledger operation is scoped by
//
// Values are immutable and safe for concurrent use. Zero values are invalid and
// report it through Validate.
package kernel
