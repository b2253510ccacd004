package queries

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetDeliveryQuoteQueryIsNotConstructed = errors.New(
		"GetDeliveryQuoteQuery must be created via NewGetDeliveryQuoteQuery constructor",
	)
)

// GetDeliveryQuoteQuery asks the configured carriers to price an order's
// delivery and keeps the best answer.
type GetDeliveryQuoteQuery struct {
	scope kernel.Scope
	guard guard.ConstructorGuard
}

func NewGetDeliveryQuoteQuery(orderID, companyID int64) (GetDeliveryQuoteQuery, error) {
	scope, err := kernel.NewScope(orderID, companyID)
	if err != nil {
		return GetDeliveryQuoteQuery{}, err
	}
	return GetDeliveryQuoteQuery{scope: scope, guard: guard.NewConstructorGuard()}, nil
}

func (q GetDeliveryQuoteQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryQuoteQueryIsNotConstructed)
}

func (q GetDeliveryQuoteQuery) Scope() kernel.Scope { return q.scope }

// GetDeliveryQuoteQueryResponse is the chosen carrier quote.
type GetDeliveryQuoteQueryResponse struct {
	Carrier    string  `json:"carrier"`
	Price      string  `json:"price"`
	Currency   string  `json:"currency"`
	ETASeconds int64   `json:"etaSeconds"`
	DistanceKm float64 `json:"distanceKm,omitempty"`
}
