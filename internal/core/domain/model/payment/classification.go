package payment

import (
	"encoding/json"
	"time"
)

// Classification is the uniform reading of a gateway response.
type Classification struct {
	State            State
	ReferenceID      string
	GatewayErrorCode string
	RawResponse      json.RawMessage
	PaidAt           time.Time
}

// IsFinal reports whether applying the classification closes the transaction.
func (c Classification) IsFinal() bool {
	return c.State.IsTerminal()
}
