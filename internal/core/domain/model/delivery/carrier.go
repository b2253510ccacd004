package delivery

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// CarrierCode names a third-party carrier that runs the delivery leg next to
// the platform's own drivers. The zero value means the leg is run in-house.
type CarrierCode string

const (
	CarrierNone   CarrierCode = ""
	CarrierChazki CarrierCode = "chazki"
	CarrierOlva   CarrierCode = "olva"
)

func Carriers() []CarrierCode {
	return []CarrierCode{CarrierChazki, CarrierOlva}
}

func ParseCarrierCode(raw string) (CarrierCode, error) {
	if raw == "" {
		return CarrierNone, nil
	}
	for _, c := range Carriers() {
		if CarrierCode(raw) == c {
			return c, nil
		}
	}
	return CarrierNone, errs.NewValueIsInvalidErrorWithCause("carrier", fmt.Errorf("%q is not a known carrier", raw))
}

func (c CarrierCode) String() string { return string(c) }
