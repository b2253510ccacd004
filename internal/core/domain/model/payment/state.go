package payment

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// TransactionStatus tells whether the transaction still expects a result.
type TransactionStatus int

const (
	StatusOpen   TransactionStatus = 1
	StatusClosed TransactionStatus = 2
)

// State is the payment state of a gateway transaction.
type State int

const (
	StatePending        State = 1
	StateApproved       State = 2
	StateRejected       State = 3
	StateCapturePending State = 4
	StateCanceled       State = 5
)

// TransactionType distinguishes payments from refunds.
type TransactionType int

const (
	TypePayment TransactionType = 1
	TypeRefund  TransactionType = 2
)

var stateNames = map[State]string{
	StatePending:        "PENDING",
	StateApproved:       "APPROVED",
	StateRejected:       "REJECTED",
	StateCapturePending: "CAPTURE_PENDING",
	StateCanceled:       "CANCELED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

func (s State) Validate() error {
	if _, ok := stateNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("paymentState", fmt.Errorf("%d is not a payment state", s))
	}
	return nil
}

// IsTerminal reports states after which no gateway result is applied.
func (s State) IsTerminal() bool {
	return s == StateApproved || s == StateRejected || s == StateCanceled
}

// Settleable lists the states a classification may still overwrite.
func Settleable() []State {
	return []State{StatePending, StateCapturePending}
}

func (s TransactionStatus) Validate() error {
	if s != StatusOpen && s != StatusClosed {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a transaction status", s))
	}
	return nil
}

func (t TransactionType) Validate() error {
	if t != TypePayment && t != TypeRefund {
		return errs.NewValueIsInvalidErrorWithCause("typeTransaction", fmt.Errorf("%d is not a transaction type", t))
	}
	return nil
}
