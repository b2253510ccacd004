package queries

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"
)

type GetOrderStateLogQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderStateLogQueryHandler(db *gorm.DB) GetOrderStateLogQueryHandler {
	return GetOrderStateLogQueryHandler{db: db}
}

// Handle returns an empty list for unknown orders.
func (h GetOrderStateLogQueryHandler) Handle(
	ctx context.Context,
	query GetOrderStateLogQuery,
) ([]GetOrderStateLogQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			kind,
			from_state,
			to_state,
			action,
			actor_id,
			at,
			data
		FROM order_state_logs
		WHERE order_id = ? AND company_id = ?
		ORDER BY id
	`, query.Scope().OrderID, query.Scope().CompanyID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]GetOrderStateLogQueryResponse, 0)
	for rows.Next() {
		var entry GetOrderStateLogQueryResponse
		var from, action *string
		var data []byte

		err = rows.Scan(
			&entry.Kind,
			&from,
			&entry.To,
			&action,
			&entry.ActorID,
			&entry.At,
			&data,
		)
		if err != nil {
			return nil, err
		}
		if from != nil {
			entry.From = *from
		}
		if action != nil {
			entry.Action = *action
		}
		if len(data) > 0 {
			if err = json.Unmarshal(data, &entry.Data); err != nil {
				return nil, err
			}
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
