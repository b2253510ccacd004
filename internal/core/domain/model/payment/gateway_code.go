package payment

import (
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/pkg/errs"
)

// GatewayCode identifies a payment gateway integration.
type GatewayCode string

const (
	Mercadopago  GatewayCode = "mercadopago"
	Niubiz       GatewayCode = "niubiz"
	Culqi        GatewayCode = "culqi"
	Izipay       GatewayCode = "izipay"
	PayU         GatewayCode = "payu"
	Openpay      GatewayCode = "openpay"
	Kushki       GatewayCode = "kushki"
	Paypal       GatewayCode = "paypal"
	PagoEfectivo GatewayCode = "pagoefectivo"
	SafetyPay    GatewayCode = "safetypay"
	Stripe       GatewayCode = "stripe"
	Manual       GatewayCode = "manual"
)

// AllGatewayCodes returns the closed set of supported gateways.
func AllGatewayCodes() []GatewayCode {
	return []GatewayCode{
		Mercadopago, Niubiz, Culqi, Izipay, PayU, Openpay,
		Kushki, Paypal, PagoEfectivo, SafetyPay, Stripe, Manual,
	}
}

// ParseGatewayCode accepts codes case-insensitively.
func ParseGatewayCode(raw string) (GatewayCode, error) {
	code := GatewayCode(strings.ToLower(strings.TrimSpace(raw)))
	if err := code.Validate(); err != nil {
		return "", err
	}
	return code, nil
}

func (c GatewayCode) Validate() error {
	switch c {
	case Mercadopago, Niubiz, Culqi, Izipay, PayU, Openpay,
		Kushki, Paypal, PagoEfectivo, SafetyPay, Stripe, Manual:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("gatewayCode", fmt.Errorf("%q is not a supported gateway", string(c)))
	}
}

func (c GatewayCode) String() string { return string(c) }

// RefundWindow is how long after approval the gateway still accepts refunds.
// Zero means the gateway does not refund through the API.
func (c GatewayCode) RefundWindow() time.Duration {
	const day = 24 * time.Hour

	switch c {
	case Mercadopago:
		return 180 * day
	case Niubiz, Izipay:
		return 90 * day
	case Culqi, Openpay, Kushki:
		return 60 * day
	case PayU:
		return 30 * day
	case Paypal:
		return 180 * day
	case Stripe:
		return 120 * day
	case PagoEfectivo, SafetyPay:
		return 0
	case Manual:
		return 0
	}
	return 0
}

// IsOffline reports gateways whose payment happens outside of the platform.
func (c GatewayCode) IsOffline() bool {
	return c == Manual || c == PagoEfectivo
}
