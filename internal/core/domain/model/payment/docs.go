// Package payment holds the gateway transaction ledger model.
//
// A GatewayTransaction is created PENDING when a checkout starts and becomes
// terminal (APPROVED, REJECTED or CANCELED) exactly once, either through a
// webhook confirmation or a reconciliation poll. Refunds are separate
// transactions of type REFUND pointing at the original one.
//
// GatewayCode is a closed set: every code has a strategy, a refund window and
// an error catalog, and adding a gateway means extending each switch here.
package payment
