package queries

import (
	"context"

	"fulfillment/internal/core/ports"
)

type GetGatewayInformationQueryHandler struct {
	gateways Gateways
}

func NewGetGatewayInformationQueryHandler(g Gateways) GetGatewayInformationQueryHandler {
	return GetGatewayInformationQueryHandler{gateways: g}
}

func (h GetGatewayInformationQueryHandler) Handle(
	_ context.Context,
	query GetGatewayInformationQuery,
) (ports.GatewayInformation, error) {
	if err := query.Validate(); err != nil {
		return ports.GatewayInformation{}, err
	}
	return h.gateways.GatewayInformation(query.Gateway())
}
