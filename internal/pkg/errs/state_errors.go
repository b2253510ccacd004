package errs

import (
	"errors"
	"fmt"
)

var (
	ErrActionInvalid   = errors.New("action is invalid")
	ErrAssignmentRace  = errors.New("assignment race lost")
	ErrAlreadyAssigned = errors.New("already assigned")
)

// ActionInvalidError is returned by the state machines when an action is not
// whitelisted for the current state. The state is left untouched.
type ActionInvalidError struct {
	Action string
	State  string
	Cause  error
}

func NewActionInvalidError(action, state string) *ActionInvalidError {
	return &ActionInvalidError{Action: action, State: state}
}

func NewActionInvalidErrorWithCause(action, state string, cause error) *ActionInvalidError {
	return &ActionInvalidError{Action: action, State: state, Cause: cause}
}

func (e *ActionInvalidError) Error() string {
	msg := fmt.Sprintf("%s: %s is not allowed in state %s", ErrActionInvalid, sanitize(e.Action), sanitize(e.State))
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *ActionInvalidError) Unwrap() error {
	return ErrActionInvalid
}

// ConflictError signals that a concurrent writer changed the row first.
// Kind is either ErrAssignmentRace or ErrAlreadyAssigned.
type ConflictError struct {
	Kind      error
	ParamName string
	ID        any
}

func NewAssignmentRaceError(paramName string, id any) *ConflictError {
	return &ConflictError{Kind: ErrAssignmentRace, ParamName: paramName, ID: id}
}

func NewAlreadyAssignedError(paramName string, id any) *ConflictError {
	return &ConflictError{Kind: ErrAlreadyAssigned, ParamName: paramName, ID: id}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Kind, e.ParamName, sanitize(e.ID))
}

func (e *ConflictError) Unwrap() error {
	return e.Kind
}
