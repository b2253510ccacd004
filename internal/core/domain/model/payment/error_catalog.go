package payment

import "strings"

// Uniform error codes stored on orders and transactions.
const (
	ErrorCardDeclined      = "card_declined"
	ErrorInsufficientFunds = "insufficient_funds"
	ErrorExpiredCard       = "expired_card"
	ErrorInvalidCard       = "invalid_card"
	ErrorFraudSuspected    = "fraud_suspected"
	ErrorProcessing        = "processing_error"
	ErrorExpired           = "payment_expired"
	ErrorUnknown           = "unknown"
)

// errorCatalog maps raw gateway codes to uniform codes. Keys are lower case.
var errorCatalog = map[GatewayCode]map[string]string{
	Mercadopago: {
		"cc_rejected_insufficient_amount":      ErrorInsufficientFunds,
		"cc_rejected_bad_filled_card_number":   ErrorInvalidCard,
		"cc_rejected_bad_filled_date":          ErrorExpiredCard,
		"cc_rejected_bad_filled_security_code": ErrorInvalidCard,
		"cc_rejected_high_risk":                ErrorFraudSuspected,
		"cc_rejected_blacklist":                ErrorFraudSuspected,
		"cc_rejected_call_for_authorize":       ErrorCardDeclined,
		"cc_rejected_card_disabled":            ErrorCardDeclined,
		"cc_rejected_other_reason":             ErrorCardDeclined,
		"expired":                              ErrorExpired,
	},
	Niubiz: {
		"101": ErrorExpiredCard,
		"102": ErrorCardDeclined,
		"116": ErrorInsufficientFunds,
		"129": ErrorInvalidCard,
		"180": ErrorInvalidCard,
		"190": ErrorCardDeclined,
		"191": ErrorCardDeclined,
		"207": ErrorFraudSuspected,
		"290": ErrorProcessing,
	},
	Culqi: {
		"insufficient_funds":   ErrorInsufficientFunds,
		"expired_card":         ErrorExpiredCard,
		"stolen_card":          ErrorFraudSuspected,
		"lost_card":            ErrorFraudSuspected,
		"fraudulent":           ErrorFraudSuspected,
		"invalid_cvv":          ErrorInvalidCard,
		"incorrect_cvv":        ErrorInvalidCard,
		"card_declined":        ErrorCardDeclined,
		"processing_error":     ErrorProcessing,
		"issuer_not_available": ErrorProcessing,
	},
	Izipay: {
		"insufficient_funds": ErrorInsufficientFunds,
		"expired_card":       ErrorExpiredCard,
		"refused":            ErrorCardDeclined,
		"fraud":              ErrorFraudSuspected,
		"error":              ErrorProcessing,
	},
	PayU: {
		"insufficient_funds":              ErrorInsufficientFunds,
		"expired_card":                    ErrorExpiredCard,
		"invalid_card":                    ErrorInvalidCard,
		"antifraud_rejected":              ErrorFraudSuspected,
		"payment_network_rejected":        ErrorCardDeclined,
		"entity_declined":                 ErrorCardDeclined,
		"internal_payment_provider_error": ErrorProcessing,
		"expired_transaction":             ErrorExpired,
	},
	Openpay: {
		"3001": ErrorCardDeclined,
		"3002": ErrorExpiredCard,
		"3003": ErrorInsufficientFunds,
		"3004": ErrorFraudSuspected,
		"3005": ErrorFraudSuspected,
		"3006": ErrorProcessing,
	},
	Kushki: {
		"k006": ErrorCardDeclined,
		"k017": ErrorInvalidCard,
		"k018": ErrorInsufficientFunds,
		"k021": ErrorFraudSuspected,
		"k322": ErrorProcessing,
	},
	Paypal: {
		"instrument_declined":    ErrorCardDeclined,
		"payer_cannot_pay":       ErrorInsufficientFunds,
		"transaction_refused":    ErrorCardDeclined,
		"payer_action_required":  ErrorProcessing,
		"internal_service_error": ErrorProcessing,
	},
	PagoEfectivo: {
		"cip_expired": ErrorExpired,
		"cip_deleted": ErrorCardDeclined,
	},
	SafetyPay: {
		"expired":  ErrorExpired,
		"rejected": ErrorCardDeclined,
	},
	Stripe: {
		"card_declined":      ErrorCardDeclined,
		"insufficient_funds": ErrorInsufficientFunds,
		"expired_card":       ErrorExpiredCard,
		"incorrect_cvc":      ErrorInvalidCard,
		"incorrect_number":   ErrorInvalidCard,
		"fraudulent":         ErrorFraudSuspected,
		"processing_error":   ErrorProcessing,
		"expired":            ErrorExpired,
	},
	Manual: {},
}

// NormalizeErrorCode maps a raw gateway error to a uniform code. Empty input
// stays empty; unmapped codes become ErrorUnknown.
func NormalizeErrorCode(code GatewayCode, raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}
	if uniform, ok := errorCatalog[code][raw]; ok {
		return uniform
	}
	return ErrorUnknown
}
