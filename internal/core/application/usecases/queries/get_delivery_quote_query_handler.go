package queries

import (
	"context"
)

type GetDeliveryQuoteQueryHandler struct {
	quotes Quotes
}

func NewGetDeliveryQuoteQueryHandler(q Quotes) GetDeliveryQuoteQueryHandler {
	return GetDeliveryQuoteQueryHandler{quotes: q}
}

func (h GetDeliveryQuoteQueryHandler) Handle(
	ctx context.Context,
	query GetDeliveryQuoteQuery,
) (GetDeliveryQuoteQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDeliveryQuoteQueryResponse{}, err
	}

	o, err := h.quotes.Order(ctx, query.Scope())
	if err != nil {
		return GetDeliveryQuoteQueryResponse{}, err
	}

	quote, err := h.quotes.QuoteDelivery(ctx, o)
	if err != nil {
		return GetDeliveryQuoteQueryResponse{}, err
	}

	return GetDeliveryQuoteQueryResponse{
		Carrier:    string(quote.Carrier),
		Price:      quote.Price.Amount().StringFixed(2),
		Currency:   quote.Price.Currency(),
		ETASeconds: int64(quote.ETA.Seconds()),
		DistanceKm: quote.DistanceKm,
	}, nil
}
