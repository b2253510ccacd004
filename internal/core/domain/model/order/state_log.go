package order

import "time"

// LogKind tells which state dimension an entry belongs to.
type LogKind string

const (
	LogOrder    LogKind = "order"
	LogDelivery LogKind = "delivery"
	LogPayment  LogKind = "payment"
)

// LogEntry is one append-only record of the state log.
type LogEntry struct {
	Kind    LogKind           `json:"kind"`
	From    string            `json:"from"`
	To      string            `json:"to"`
	Action  string            `json:"action"`
	ActorID *int64            `json:"actorId,omitempty"`
	At      time.Time         `json:"at"`
	Data    map[string]string `json:"data,omitempty"`
}
