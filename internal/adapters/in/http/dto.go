package http

import (
	"time"

	"fulfillment/internal/core/application/deliveryfsm"
	"fulfillment/internal/core/application/fulfillment"
	"fulfillment/internal/core/application/payments"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/order"
)

type orderPath struct {
	CompanyID int64 `param:"company" validate:"gt=0"`
	OrderID   int64 `param:"order"   validate:"gt=0"`
}

type webhookPath struct {
	Gateway string    `param:"gateway" validate:"required"`
	Path    orderPath `json:"-"`
}

type changeOrderStateRequest struct {
	Path   orderPath `json:"-"`
	Action string    `json:"action" validate:"required"`
}

type collectRequest struct {
	Method      string `json:"method"      validate:"required"`
	Amount      string `json:"amount"      validate:"omitempty,numeric"`
	VoucherCode string `json:"voucherCode"`
	Note        string `json:"note"        validate:"max=500"`
}

type changeDeliveryStateRequest struct {
	Path     orderPath       `json:"-"`
	DriverID int64           `json:"driverId" validate:"gt=0"`
	Action   string          `json:"action"   validate:"required"`
	Collect  *collectRequest `json:"collect"`
}

func (r changeDeliveryStateRequest) collect() *deliveryfsm.CollectData {
	if r.Collect == nil {
		return nil
	}
	return &deliveryfsm.CollectData{
		Method:      r.Collect.Method,
		Amount:      r.Collect.Amount,
		VoucherCode: r.Collect.VoucherCode,
		Note:        r.Collect.Note,
	}
}

type initiateCheckoutRequest struct {
	Path            orderPath `json:"-"`
	Gateway         string    `json:"gateway"         validate:"required"`
	AppCode         string    `json:"appCode"         validate:"required"`
	Environment     string    `json:"environment"     validate:"omitempty,oneof=sandbox production"`
	RelatedOrderIDs []int64   `json:"relatedOrderIds" validate:"omitempty,dive,gt=0"`
}

type refundRequest struct {
	Path   orderPath `json:"-"`
	Reason string    `json:"reason" validate:"max=255"`
}

type abandonedTransactionsRequest struct {
	Gateway string `query:"gateway"`
	Limit   int    `query:"limit"   validate:"omitempty,min=1,max=500"`
}

type gatewayPath struct {
	Gateway string `param:"gateway" validate:"required"`
}

type gatewayTransactionsRequest struct {
	Path        gatewayPath `json:"-"`
	CompanyID   int64       `query:"company"     validate:"gt=0"`
	AppCode     string      `query:"appCode"     validate:"required"`
	Environment string      `query:"environment" validate:"omitempty,oneof=sandbox production"`
	From        string      `query:"from"        validate:"required"`
	To          string      `query:"to"          validate:"required"`
}

type stateRefResponse struct {
	ID   int64        `json:"id"`
	Code order.Status `json:"code"`
}

type outcomeResponse struct {
	TransactionID string             `json:"transactionId"`
	Gateway       string             `json:"gateway"`
	State         string             `json:"state"`
	PaymentState  order.PaymentState `json:"paymentState"`
	ErrorCode     string             `json:"errorCode,omitempty"`
	Applied       bool               `json:"applied"`
	RefundID      string             `json:"refundId,omitempty"`
}

func newOutcomeResponse(o payments.Outcome) outcomeResponse {
	resp := outcomeResponse{
		TransactionID: o.TransactionID.String(),
		Gateway:       string(o.Gateway),
		State:         o.State.String(),
		PaymentState:  o.PaymentState,
		ErrorCode:     o.ErrorCode,
		Applied:       o.Applied,
	}
	if o.RefundID != nil {
		resp.RefundID = o.RefundID.String()
	}
	return resp
}

type statusChangeResponse struct {
	Supported bool             `json:"supported"`
	From      stateRefResponse `json:"from"`
	To        stateRefResponse `json:"to"`
	Refund    *outcomeResponse `json:"refund,omitempty"`
}

func newStatusChangeResponse(c fulfillment.StatusChange) statusChangeResponse {
	resp := statusChangeResponse{
		Supported: c.Supported,
		From:      stateRefResponse{ID: c.From.ID, Code: c.From.Code},
		To:        stateRefResponse{ID: c.To.ID, Code: c.To.Code},
	}
	if c.Refund != nil {
		refund := newOutcomeResponse(*c.Refund)
		resp.Refund = &refund
	}
	return resp
}

type deliveryResponse struct {
	OrderID       int64              `json:"orderId"`
	CompanyID     int64              `json:"companyId"`
	DeliveryID    int64              `json:"deliveryId"`
	Action        delivery.Action    `json:"action"`
	From          delivery.State     `json:"from"`
	To            delivery.State     `json:"to"`
	OrderStatus   order.Status       `json:"orderStatus"`
	PaymentState  order.PaymentState `json:"paymentState"`
	Notifications int                `json:"notifications"`
	Tracking      *delivery.Tracking `json:"tracking,omitempty"`
	At            time.Time          `json:"at"`
}

func newDeliveryResponse(r deliveryfsm.Response) deliveryResponse {
	return deliveryResponse{
		OrderID:       r.OrderID,
		CompanyID:     r.CompanyID,
		DeliveryID:    r.DeliveryID,
		Action:        r.Action,
		From:          r.From,
		To:            r.To,
		OrderStatus:   r.OrderStatus,
		PaymentState:  r.PaymentState,
		Notifications: r.Notifications,
		Tracking:      r.Tracking,
		At:            r.At,
	}
}

type checkoutResponse struct {
	TransactionID string    `json:"transactionId"`
	Code          string    `json:"code"`
	Gateway       string    `json:"gateway"`
	URL           string    `json:"url,omitempty"`
	ReferenceID   string    `json:"referenceId,omitempty"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	ExpiresAt     time.Time `json:"expiresAt"`
	Reused        bool      `json:"reused"`
}

func newCheckoutResponse(c payments.Checkout) checkoutResponse {
	return checkoutResponse{
		TransactionID: c.TransactionID.String(),
		Code:          c.Code,
		Gateway:       string(c.Gateway),
		URL:           c.URL,
		ReferenceID:   c.ReferenceID,
		Amount:        c.Amount.Amount().StringFixed(2),
		Currency:      c.Amount.Currency(),
		ExpiresAt:     c.ExpiresAt,
		Reused:        c.Reused,
	}
}
