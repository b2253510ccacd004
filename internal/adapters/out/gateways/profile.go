package gateways

import (
	"strings"

	"fulfillment/internal/core/domain/model/payment"
)

// Profile describes how one hosted-checkout gateway is reached. Every REST
// gateway speaks the same JSON contract; profiles only carry what differs
// between them. An empty path means the gateway does not offer that
// capability.
type Profile struct {
	Code        payment.GatewayCode
	Name        string
	Description string

	// BaseURL per environment ("sandbox", "production"). The credential
	// value "base_url" overrides it.
	BaseURL map[string]string

	CheckoutPath string
	LinkPath     string
	StatusPath   string
	CapturePath  string
	RefundPath   string
	ListPath     string
	RegisterPath string

	// SignatureHeader carries the hex HMAC-SHA256 of a webhook body.
	SignatureHeader string

	// FetchOnWebhook re-reads the transaction after a verified webhook
	// instead of trusting the state in its body.
	FetchOnWebhook bool

	// MinorUnits sends amounts as integer cents.
	MinorUnits bool

	// Statuses maps the gateway's lower-cased status words onto payment
	// states. Unknown words read as pending.
	Statuses map[string]payment.State
}

func (p Profile) state(status string) payment.State {
	if s, ok := p.Statuses[strings.ToLower(strings.TrimSpace(status))]; ok {
		return s
	}
	return payment.StatePending
}

func (p Profile) baseURL(environment string) string {
	if u, ok := p.BaseURL[environment]; ok {
		return u
	}
	return p.BaseURL["sandbox"]
}

func sandboxAndProduction(sandbox, production string) map[string]string {
	return map[string]string{"sandbox": sandbox, "production": production}
}

// Profiles returns the REST gateway profiles keyed by code.
func Profiles() map[payment.GatewayCode]Profile {
	return map[payment.GatewayCode]Profile{
		payment.Mercadopago: {
			Code:            payment.Mercadopago,
			Name:            "Mercado Pago",
			Description:     "Checkout Pro preferences and payment links",
			BaseURL:         sandboxAndProduction("https://api.mercadopago.com", "https://api.mercadopago.com"),
			CheckoutPath:    "/checkout/preferences",
			LinkPath:        "/checkout/preferences",
			StatusPath:      "/v1/payments/{reference}",
			CapturePath:     "/v1/payments",
			RefundPath:      "/v1/payments/{reference}/refunds",
			ListPath:        "/v1/payments/search",
			SignatureHeader: "X-Signature",
			FetchOnWebhook:  true,
			Statuses: map[string]payment.State{
				"approved":     payment.StateApproved,
				"authorized":   payment.StateCapturePending,
				"pending":      payment.StatePending,
				"in_process":   payment.StatePending,
				"in_mediation": payment.StatePending,
				"rejected":     payment.StateRejected,
				"cancelled":    payment.StateCanceled,
				"refunded":     payment.StateCanceled,
				"charged_back": payment.StateCanceled,
			},
		},
		payment.Niubiz: {
			Code:            payment.Niubiz,
			Name:            "Niubiz",
			Description:     "Visanet hosted checkout",
			BaseURL:         sandboxAndProduction("https://apisandbox.vnforappstest.com", "https://apiprod.vnforapps.com"),
			CheckoutPath:    "/api.ecommerce/v2/ecommerce/token/session",
			StatusPath:      "/api.authorization/v3/retrieve/purchase/{reference}",
			CapturePath:     "/api.authorization/v3/authorization/ecommerce",
			RefundPath:      "/api.authorization/v3/void/ecommerce/{reference}",
			SignatureHeader: "X-Niubiz-Signature",
			Statuses: map[string]payment.State{
				"authorized":     payment.StateApproved,
				"not authorized": payment.StateRejected,
				"reject":         payment.StateRejected,
				"voided":         payment.StateCanceled,
				"pending":        payment.StatePending,
			},
		},
		payment.Culqi: {
			Code:            payment.Culqi,
			Name:            "Culqi",
			Description:     "Culqi orders and charges",
			BaseURL:         sandboxAndProduction("https://api.culqi.com", "https://api.culqi.com"),
			CheckoutPath:    "/v2/orders",
			StatusPath:      "/v2/charges/{reference}",
			CapturePath:     "/v2/charges",
			RefundPath:      "/v2/refunds",
			ListPath:        "/v2/charges",
			SignatureHeader: "X-Culqi-Signature",
			MinorUnits:      true,
			Statuses: map[string]payment.State{
				"paid":      payment.StateApproved,
				"captured":  payment.StateApproved,
				"pending":   payment.StatePending,
				"expired":   payment.StateCanceled,
				"deleted":   payment.StateCanceled,
				"failed":    payment.StateRejected,
				"rejected":  payment.StateRejected,
				"authorize": payment.StateCapturePending,
			},
		},
		payment.Izipay: {
			Code:            payment.Izipay,
			Name:            "Izipay",
			Description:     "Izipay hosted payment form",
			BaseURL:         sandboxAndProduction("https://sandbox-api-pw.izipay.pe", "https://api-pw.izipay.pe"),
			CheckoutPath:    "/gateway/api/v1/Charge/CreatePayment",
			StatusPath:      "/gateway/api/v1/Transaction/Get/{reference}",
			RefundPath:      "/gateway/api/v1/Transaction/CancelOrRefund/{reference}",
			SignatureHeader: "X-Izipay-Signature",
			MinorUnits:      true,
			Statuses: map[string]payment.State{
				"paid":       payment.StateApproved,
				"authorised": payment.StateApproved,
				"running":    payment.StatePending,
				"unpaid":     payment.StateRejected,
				"refused":    payment.StateRejected,
				"abandoned":  payment.StateCanceled,
				"cancelled":  payment.StateCanceled,
			},
		},
		payment.PayU: {
			Code:            payment.PayU,
			Name:            "PayU",
			Description:     "PayU Latam web checkout",
			BaseURL:         sandboxAndProduction("https://sandbox.api.payulatam.com", "https://api.payulatam.com"),
			CheckoutPath:    "/payments-api/4.0/checkout",
			StatusPath:      "/reports-api/4.0/orders/{reference}",
			CapturePath:     "/payments-api/4.0/transactions",
			RefundPath:      "/payments-api/4.0/refunds/{reference}",
			SignatureHeader: "X-PayU-Signature",
			Statuses: map[string]payment.State{
				"approved":           payment.StateApproved,
				"pending":            payment.StatePending,
				"declined":           payment.StateRejected,
				"error":              payment.StateRejected,
				"expired":            payment.StateCanceled,
				"authorization_only": payment.StateCapturePending,
			},
		},
		payment.Openpay: {
			Code:            payment.Openpay,
			Name:            "Openpay",
			Description:     "Openpay charges with redirect",
			BaseURL:         sandboxAndProduction("https://sandbox-api.openpay.pe", "https://api.openpay.pe"),
			CheckoutPath:    "/v1/checkouts",
			StatusPath:      "/v1/charges/{reference}",
			CapturePath:     "/v1/charges",
			RefundPath:      "/v1/charges/{reference}/refund",
			ListPath:        "/v1/charges",
			SignatureHeader: "X-Openpay-Signature",
			Statuses: map[string]payment.State{
				"completed":       payment.StateApproved,
				"in_progress":     payment.StatePending,
				"charge_pending":  payment.StatePending,
				"failed":          payment.StateRejected,
				"cancelled":       payment.StateCanceled,
				"refunded":        payment.StateCanceled,
				"pending_capture": payment.StateCapturePending,
			},
		},
		payment.Kushki: {
			Code:            payment.Kushki,
			Name:            "Kushki",
			Description:     "Kushki smartlinks and card charges",
			BaseURL:         sandboxAndProduction("https://api-uat.kushkipagos.com", "https://api.kushkipagos.com"),
			LinkPath:        "/smartlink/v2/smart-link",
			StatusPath:      "/analytics/v1/transactions/{reference}",
			CapturePath:     "/card/v1/charges",
			RefundPath:      "/v1/charges/{reference}",
			SignatureHeader: "X-Kushki-Signature",
			Statuses: map[string]payment.State{
				"approvedtransaction": payment.StateApproved,
				"approval":            payment.StateApproved,
				"initialized":         payment.StatePending,
				"declinedtransaction": payment.StateRejected,
				"declined":            payment.StateRejected,
				"voided":              payment.StateCanceled,
			},
		},
		payment.Paypal: {
			Code:            payment.Paypal,
			Name:            "PayPal",
			Description:     "PayPal orders v2",
			BaseURL:         sandboxAndProduction("https://api-m.sandbox.paypal.com", "https://api-m.paypal.com"),
			CheckoutPath:    "/v2/checkout/orders",
			StatusPath:      "/v2/checkout/orders/{reference}",
			CapturePath:     "/v2/checkout/orders/{reference}/capture",
			RefundPath:      "/v2/payments/captures/{reference}/refund",
			ListPath:        "/v1/reporting/transactions",
			SignatureHeader: "Paypal-Transmission-Sig",
			FetchOnWebhook:  true,
			Statuses: map[string]payment.State{
				"completed":             payment.StateApproved,
				"approved":              payment.StateCapturePending,
				"created":               payment.StatePending,
				"saved":                 payment.StatePending,
				"payer_action_required": payment.StatePending,
				"voided":                payment.StateCanceled,
				"declined":              payment.StateRejected,
			},
		},
		payment.PagoEfectivo: {
			Code:            payment.PagoEfectivo,
			Name:            "PagoEfectivo",
			Description:     "CIP payment codes paid at agents",
			BaseURL:         sandboxAndProduction("https://pre1a.services.pagoefectivo.pe", "https://services.pagoefectivo.pe"),
			LinkPath:        "/v1/cips",
			StatusPath:      "/v1/cips/{reference}",
			RegisterPath:    "/v1/cips/{reference}/confirm",
			SignatureHeader: "PE-Signature",
			Statuses: map[string]payment.State{
				"cip.paid":    payment.StateApproved,
				"paid":        payment.StateApproved,
				"cip.created": payment.StatePending,
				"pending":     payment.StatePending,
				"cip.expired": payment.StateCanceled,
				"expired":     payment.StateCanceled,
			},
		},
		payment.SafetyPay: {
			Code:            payment.SafetyPay,
			Name:            "SafetyPay",
			Description:     "Bank transfer express tokens",
			BaseURL:         sandboxAndProduction("https://sandbox-mws2.safetypay.com", "https://mws2.safetypay.com"),
			LinkPath:        "/express/ws/v.3.0/Post/CreateExpressToken",
			StatusPath:      "/express/ws/v.3.0/Post/GetOperation/{reference}",
			SignatureHeader: "X-SafetyPay-Signature",
			Statuses: map[string]payment.State{
				"102":       payment.StateApproved,
				"paid":      payment.StateApproved,
				"101":       payment.StatePending,
				"pending":   payment.StatePending,
				"cancelled": payment.StateCanceled,
				"expired":   payment.StateCanceled,
			},
		},
	}
}
