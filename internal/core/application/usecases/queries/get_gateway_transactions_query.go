package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// MaxGatewayTransactionsWindow bounds how far back one listing reaches.
const MaxGatewayTransactionsWindow = 31 * 24 * time.Hour

var (
	ErrGetGatewayTransactionsQueryIsNotConstructed = errors.New(
		"GetGatewayTransactionsQuery must be created via NewGetGatewayTransactionsQuery constructor",
	)
)

// GetGatewayTransactionsQuery lists what a gateway recorded for a tenant in
// [from, to). Operators compare it against the ledger.
//
// Example:
//
//	query, err := NewGetGatewayTransactionsQuery("niubiz", 7, "shop", "production", from, to)
//	if err != nil {
//	    return err
//	}
//	rows, err := handler.Handle(ctx, query)
type GetGatewayTransactionsQuery struct {
	gateway payment.GatewayCode
	auth    ports.AuthContext
	from    time.Time
	to      time.Time
	guard   guard.ConstructorGuard
}

func NewGetGatewayTransactionsQuery(
	gateway string,
	companyID int64,
	appCode, environment string,
	from, to time.Time,
) (GetGatewayTransactionsQuery, error) {
	code, err := payment.ParseGatewayCode(gateway)
	if err != nil {
		return GetGatewayTransactionsQuery{}, err
	}
	if companyID <= 0 {
		return GetGatewayTransactionsQuery{}, errs.NewValueIsRequiredError("companyId")
	}
	if appCode == "" {
		return GetGatewayTransactionsQuery{}, errs.NewValueIsRequiredError("appCode")
	}
	if from.IsZero() || to.IsZero() {
		return GetGatewayTransactionsQuery{}, errs.NewValueIsRequiredError("from")
	}
	if !from.Before(to) {
		return GetGatewayTransactionsQuery{}, errs.NewValueIsInvalidErrorWithCause(
			"from", errors.New("must be before to"),
		)
	}
	if window := to.Sub(from); window > MaxGatewayTransactionsWindow {
		return GetGatewayTransactionsQuery{}, errs.NewValueIsOutOfRangeError(
			"window", window.String(), "0s", MaxGatewayTransactionsWindow.String(),
		)
	}

	return GetGatewayTransactionsQuery{
		gateway: code,
		auth:    ports.AuthContext{CompanyID: companyID, AppCode: appCode, Environment: environment},
		from:    from,
		to:      to,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q GetGatewayTransactionsQuery) Validate() error {
	return q.guard.Validate(ErrGetGatewayTransactionsQueryIsNotConstructed)
}

func (q GetGatewayTransactionsQuery) Gateway() payment.GatewayCode { return q.gateway }
func (q GetGatewayTransactionsQuery) Auth() ports.AuthContext       { return q.auth }
func (q GetGatewayTransactionsQuery) From() time.Time               { return q.from }
func (q GetGatewayTransactionsQuery) To() time.Time                 { return q.to }

// GetGatewayTransactionsQueryResponse is one gateway-side transaction.
type GetGatewayTransactionsQueryResponse struct {
	State       string     `json:"state"`
	ReferenceID string     `json:"referenceId,omitempty"`
	ErrorCode   string     `json:"errorCode,omitempty"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
}
