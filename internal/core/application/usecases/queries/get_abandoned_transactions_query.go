package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const MaxAbandonedTransactions = 500

var (
	ErrGetAbandonedTransactionsQueryIsNotConstructed = errors.New(
		"GetAbandonedTransactionsQuery must be created via NewGetAbandonedTransactionsQuery constructor",
	)
)

// GetAbandonedTransactionsQuery lists pending payments whose checkout expired
// without a gateway result. The reconciliation sweep never retries them, so
// this is where operators pick them up.
//
// Example:
//
//	query, err := NewGetAbandonedTransactionsQuery(payment.Niubiz, time.Now(), 100)
//	if err != nil {
//	    return err
//	}
//	rows, err := handler.Handle(ctx, query)
type GetAbandonedTransactionsQuery struct {
	gateway payment.GatewayCode
	now     time.Time
	limit   int
	guard   guard.ConstructorGuard
}

// NewGetAbandonedTransactionsQuery builds the query. An empty gateway selects
// every gateway.
func NewGetAbandonedTransactionsQuery(gateway payment.GatewayCode, now time.Time, limit int) (GetAbandonedTransactionsQuery, error) {
	if gateway != "" {
		if err := gateway.Validate(); err != nil {
			return GetAbandonedTransactionsQuery{}, err
		}
	}
	if now.IsZero() {
		return GetAbandonedTransactionsQuery{}, errs.NewValueIsRequiredError("now")
	}
	if limit < 1 || limit > MaxAbandonedTransactions {
		return GetAbandonedTransactionsQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxAbandonedTransactions)
	}

	return GetAbandonedTransactionsQuery{
		gateway: gateway,
		now:     now,
		limit:   limit,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q GetAbandonedTransactionsQuery) Validate() error {
	return q.guard.Validate(ErrGetAbandonedTransactionsQueryIsNotConstructed)
}

func (q GetAbandonedTransactionsQuery) Gateway() payment.GatewayCode { return q.gateway }
func (q GetAbandonedTransactionsQuery) Now() time.Time               { return q.now }
func (q GetAbandonedTransactionsQuery) Limit() int                   { return q.limit }

// GetAbandonedTransactionsQueryResponse is one abandoned payment.
type GetAbandonedTransactionsQueryResponse struct {
	TransactionID   kernel.UUID         `json:"transactionId"`
	OrderID         int64               `json:"orderId"`
	CompanyID       int64               `json:"companyId"`
	Gateway         payment.GatewayCode `json:"gateway"`
	Amount          string              `json:"amount"`
	Currency        string              `json:"currency"`
	ReferenceID     string              `json:"referenceId,omitempty"`
	DateTransaction time.Time           `json:"dateTransaction"`
	DateExpiration  time.Time           `json:"dateExpiration"`
}
