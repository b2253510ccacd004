package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetOrderStateLogQueryIsNotConstructed = errors.New(
		"GetOrderStateLogQuery must be created via NewGetOrderStateLogQuery constructor",
	)
)

// GetOrderStateLogQuery returns the state log of one order, in the order the
// entries were written.
type GetOrderStateLogQuery struct {
	scope kernel.Scope
	guard guard.ConstructorGuard
}

func NewGetOrderStateLogQuery(orderID, companyID int64) (GetOrderStateLogQuery, error) {
	scope, err := kernel.NewScope(orderID, companyID)
	if err != nil {
		return GetOrderStateLogQuery{}, err
	}
	return GetOrderStateLogQuery{scope: scope, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderStateLogQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderStateLogQueryIsNotConstructed)
}

func (q GetOrderStateLogQuery) Scope() kernel.Scope { return q.scope }

// GetOrderStateLogQueryResponse is one state log entry.
type GetOrderStateLogQueryResponse struct {
	Kind    string            `json:"kind"`
	From    string            `json:"from"`
	To      string            `json:"to"`
	Action  string            `json:"action"`
	ActorID *int64            `json:"actorId,omitempty"`
	At      time.Time         `json:"at"`
	Data    map[string]string `json:"data,omitempty"`
}
