package queries

import (
	"context"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetAbandonedTransactionsQueryHandler reads abandoned payments straight from
// the ledger, oldest expiration first.
type GetAbandonedTransactionsQueryHandler struct {
	db *gorm.DB
}

func NewGetAbandonedTransactionsQueryHandler(db *gorm.DB) GetAbandonedTransactionsQueryHandler {
	return GetAbandonedTransactionsQueryHandler{db: db}
}

func (h GetAbandonedTransactionsQueryHandler) Handle(
	ctx context.Context,
	query GetAbandonedTransactionsQuery,
) ([]GetAbandonedTransactionsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var sql strings.Builder
	sql.WriteString(`
		SELECT
			id,
			order_id,
			company_id,
			gateway_code,
			amount,
			currency,
			reference_id,
			date_transaction,
			date_expiration
		FROM gateway_transactions
		WHERE type_transaction = ?
			AND payment_state IN ?
			AND date_expiration < ?`)
	states := make([]int, 0, 2)
	for _, state := range payment.Settleable() {
		states = append(states, int(state))
	}
	args := []any{int(payment.TypePayment), states, query.Now()}
	if query.Gateway() != "" {
		sql.WriteString(`
			AND gateway_code = ?`)
		args = append(args, query.Gateway().String())
	}
	sql.WriteString(`
		ORDER BY date_expiration, id
		LIMIT ?`)
	args = append(args, query.Limit())

	rows, err := h.db.WithContext(ctx).Raw(sql.String(), args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]GetAbandonedTransactionsQueryResponse, 0)
	for rows.Next() {
		var resp GetAbandonedTransactionsQueryResponse
		var id uuid.UUID
		var gateway string
		var amount decimal.Decimal
		var reference *string

		err = rows.Scan(
			&id,
			&resp.OrderID,
			&resp.CompanyID,
			&gateway,
			&amount,
			&resp.Currency,
			&reference,
			&resp.DateTransaction,
			&resp.DateExpiration,
		)
		if err != nil {
			return nil, err
		}

		txID, idErr := kernel.UUIDFromRaw(id)
		if idErr != nil {
			return nil, idErr
		}
		resp.TransactionID = txID
		resp.Gateway = payment.GatewayCode(gateway)
		resp.Amount = amount.StringFixed(2)
		if reference != nil {
			resp.ReferenceID = *reference
		}
		result = append(result, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
