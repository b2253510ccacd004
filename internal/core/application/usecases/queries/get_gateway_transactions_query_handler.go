package queries

import (
	"context"
)

type GetGatewayTransactionsQueryHandler struct {
	gateways Gateways
}

func NewGetGatewayTransactionsQueryHandler(g Gateways) GetGatewayTransactionsQueryHandler {
	return GetGatewayTransactionsQueryHandler{gateways: g}
}

func (h GetGatewayTransactionsQueryHandler) Handle(
	ctx context.Context,
	query GetGatewayTransactionsQuery,
) ([]GetGatewayTransactionsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	results, err := h.gateways.GatewayTransactions(ctx, query.Auth(), query.Gateway(), query.From(), query.To())
	if err != nil {
		return nil, err
	}

	rows := make([]GetGatewayTransactionsQueryResponse, 0, len(results))
	for _, r := range results {
		row := GetGatewayTransactionsQueryResponse{
			State:       r.State.String(),
			ReferenceID: r.ReferenceID,
			ErrorCode:   r.ErrorCode,
		}
		if !r.PaidAt.IsZero() {
			paidAt := r.PaidAt
			row.PaidAt = &paidAt
		}
		rows = append(rows, row)
	}
	return rows, nil
}
