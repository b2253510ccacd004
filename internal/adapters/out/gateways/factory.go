package gateways

import (
	"net/http"

	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
)

var _ ports.GatewayFactory = (*Factory)(nil)

// Factory hands out the strategy of each supported gateway. Strategies are
// stateless and shared between calls.
type Factory struct {
	rest   map[payment.GatewayCode]*RESTGateway
	stripe *StripeGateway
	manual *ManualGateway
}

func NewFactory(httpClient *http.Client) *Factory {
	rest := make(map[payment.GatewayCode]*RESTGateway)
	for code, profile := range Profiles() {
		rest[code] = NewRESTGateway(profile, httpClient)
	}
	return &Factory{
		rest:   rest,
		stripe: NewStripeGateway(httpClient),
		manual: NewManualGateway(),
	}
}

func (f *Factory) For(code payment.GatewayCode) (ports.PaymentGateway, error) {
	switch code {
	case payment.Mercadopago, payment.Niubiz, payment.Culqi, payment.Izipay, payment.PayU,
		payment.Openpay, payment.Kushki, payment.Paypal, payment.PagoEfectivo, payment.SafetyPay:
		return f.rest[code], nil
	case payment.Stripe:
		return f.stripe, nil
	case payment.Manual:
		return f.manual, nil
	}
	return nil, code.Validate()
}
