package errs

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrGatewayMisconfigured   = errors.New("gateway is misconfigured")
	ErrGatewayTransient       = errors.New("gateway is temporarily unavailable")
	ErrGatewayRejected        = errors.New("gateway rejected the payment")
	ErrFunctionNotImplemented = errors.New("function not implemented")

	ErrRefundWindowExceeded = errors.New("refund window exceeded")
	ErrAlreadyCanceled      = errors.New("transaction already canceled")
	ErrRefundInProgress     = errors.New("refund already in progress")
)

// GatewayError describes a failure while talking to a payment gateway.
// Kind is one of the gateway sentinels above.
type GatewayError struct {
	Kind      error
	Gateway   string
	Operation string
	Code      string
	Cause     error
}

func NewGatewayMisconfiguredError(gateway string, cause error) *GatewayError {
	return &GatewayError{Kind: ErrGatewayMisconfigured, Gateway: gateway, Operation: "credentials", Cause: cause}
}

func NewGatewayTransientError(gateway, operation string, cause error) *GatewayError {
	return &GatewayError{Kind: ErrGatewayTransient, Gateway: gateway, Operation: operation, Cause: cause}
}

func NewGatewayRejectedError(gateway, code string) *GatewayError {
	return &GatewayError{Kind: ErrGatewayRejected, Gateway: gateway, Operation: "classify", Code: code}
}

func NewFunctionNotImplementedError(gateway, operation string) *GatewayError {
	return &GatewayError{Kind: ErrFunctionNotImplemented, Gateway: gateway, Operation: operation}
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("%s: %s.%s", e.Kind, e.Gateway, e.Operation)
	if e.Code != "" {
		msg = fmt.Sprintf("%s code=%s", msg, sanitize(e.Code))
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is.
func (e *GatewayError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// RefundError is returned when a refund cannot be issued for a transaction.
type RefundError struct {
	Kind          error
	TransactionID string
	Deadline      time.Time
}

func NewRefundWindowExceededError(transactionID string, deadline time.Time) *RefundError {
	return &RefundError{Kind: ErrRefundWindowExceeded, TransactionID: transactionID, Deadline: deadline}
}

func NewAlreadyCanceledError(transactionID string) *RefundError {
	return &RefundError{Kind: ErrAlreadyCanceled, TransactionID: transactionID}
}

func NewRefundInProgressError(transactionID string) *RefundError {
	return &RefundError{Kind: ErrRefundInProgress, TransactionID: transactionID}
}

func (e *RefundError) Error() string {
	if !e.Deadline.IsZero() {
		return fmt.Sprintf("%s: transaction %s, deadline was %s",
			e.Kind, e.TransactionID, e.Deadline.UTC().Format(time.RFC3339))
	}
	return fmt.Sprintf("%s: transaction %s", e.Kind, e.TransactionID)
}

func (e *RefundError) Unwrap() error {
	return e.Kind
}
