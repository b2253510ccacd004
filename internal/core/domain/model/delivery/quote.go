package delivery

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Quote is a carrier's price for running a delivery leg.
type Quote struct {
	Carrier    CarrierCode
	Price      kernel.Money
	ETA        time.Duration
	DistanceKm float64
}

func (q Quote) Validate() error {
	if _, err := ParseCarrierCode(string(q.Carrier)); err != nil || q.Carrier == CarrierNone {
		return errs.NewValueIsRequiredError("carrier")
	}
	if err := q.Price.Validate(); err != nil {
		return err
	}
	if q.ETA < 0 {
		return errs.NewValueIsInvalidErrorWithCause("eta", errors.New("must not be negative"))
	}
	return nil
}
