package kernel

import (
	"errors"

	"fulfillment/internal/pkg/errs"
)

// Scope identifies an order inside its tenant. Ledger reads and writes are
// always filtered by both ids.
type Scope struct {
	OrderID   int64
	CompanyID int64
}

func NewScope(orderID, companyID int64) (Scope, error) {
	s := Scope{OrderID: orderID, CompanyID: companyID}
	if err := s.Validate(); err != nil {
		return Scope{}, err
	}
	return s, nil
}

func (s Scope) Validate() error {
	var err error
	if s.OrderID <= 0 {
		err = errors.Join(err, errs.NewValueIsRequiredError("orderId"))
	}
	if s.CompanyID <= 0 {
		err = errors.Join(err, errs.NewValueIsRequiredError("companyId"))
	}
	return err
}
