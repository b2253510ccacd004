package services

import (
	"errors"
	"slices"

	"fulfillment/internal/core/domain/model/delivery"
)

// ErrNoQuoteAvailable is returned when no carrier produced a usable quote.
var ErrNoQuoteAvailable = errors.New("no carrier quote available")

// CarrierSelector picks the quote a delivery leg should be booked with.
//
// Business rules:
//   - quotes that fail validation are skipped
//   - the cheapest quote wins
//   - on equal price the shortest ETA wins, then the carrier code order
type CarrierSelector struct{}

func NewCarrierSelector() CarrierSelector {
	return CarrierSelector{}
}

func (CarrierSelector) Select(quotes []delivery.Quote) (delivery.Quote, error) {
	valid := make([]delivery.Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.Validate() == nil {
			valid = append(valid, q)
		}
	}
	if len(valid) == 0 {
		return delivery.Quote{}, ErrNoQuoteAvailable
	}

	slices.SortStableFunc(valid, func(a, b delivery.Quote) int {
		if c := a.Price.Amount().Cmp(b.Price.Amount()); c != 0 {
			return c
		}
		if a.ETA != b.ETA {
			if a.ETA < b.ETA {
				return -1
			}
			return 1
		}
		if a.Carrier < b.Carrier {
			return -1
		}
		if a.Carrier > b.Carrier {
			return 1
		}
		return 0
	})

	return valid[0], nil
}
