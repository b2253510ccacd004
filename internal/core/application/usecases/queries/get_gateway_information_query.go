package queries

import (
	"errors"

	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetGatewayInformationQueryIsNotConstructed = errors.New(
		"GetGatewayInformationQuery must be created via NewGetGatewayInformationQuery constructor",
	)
)

// GetGatewayInformationQuery describes one gateway integration.
type GetGatewayInformationQuery struct {
	gateway payment.GatewayCode
	guard   guard.ConstructorGuard
}

func NewGetGatewayInformationQuery(gateway string) (GetGatewayInformationQuery, error) {
	code, err := payment.ParseGatewayCode(gateway)
	if err != nil {
		return GetGatewayInformationQuery{}, err
	}
	return GetGatewayInformationQuery{gateway: code, guard: guard.NewConstructorGuard()}, nil
}

func (q GetGatewayInformationQuery) Validate() error {
	return q.guard.Validate(ErrGetGatewayInformationQueryIsNotConstructed)
}

func (q GetGatewayInformationQuery) Gateway() payment.GatewayCode { return q.gateway }
