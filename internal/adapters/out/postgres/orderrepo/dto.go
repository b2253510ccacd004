// Package orderrepo maps the order aggregate onto the orders table and its
// append-only order_state_logs table.
package orderrepo

import (
	"encoding/json"
	"time"

	"fulfillment/internal/adapters/out/postgres/orderstaterepo"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var jsonNull = datatypes.JSON("null")

// OrderDTO is the orders row. JSON columns are never SQL NULL: an absent
// document is stored as the JSON literal null.
type OrderDTO struct {
	ID                   int64                        `gorm:"primaryKey;autoIncrement:false"`
	CompanyID            int64                        `gorm:"not null;index"`
	AppCode              string                       `gorm:"type:varchar(64)"`
	OrderStateID         int64                        `gorm:"not null;index"`
	State                orderstaterepo.OrderStateDTO `gorm:"foreignKey:OrderStateID"`
	DeliveryState        string                       `gorm:"type:varchar(32);not null"`
	DeliveryID           *int64                       `gorm:"index"`
	Carrier              string                       `gorm:"type:varchar(32)"`
	TypeOrder            string                       `gorm:"type:varchar(32);not null"`
	Origin               GeoPointDTO                  `gorm:"embedded;embeddedPrefix:origin_"`
	Destination          GeoPointDTO                  `gorm:"embedded;embeddedPrefix:destination_"`
	PaymentState         string                       `gorm:"type:varchar(32);not null"`
	PaymentMethod        string                       `gorm:"type:varchar(32);not null"`
	Total                decimal.Decimal              `gorm:"type:numeric(12,2);not null"`
	Currency             string                       `gorm:"type:char(3);not null"`
	GatewayTransactionID *uuid.UUID                   `gorm:"type:uuid"`
	GatewayCode          string                       `gorm:"type:varchar(32)"`
	CheckoutSession      datatypes.JSON               `gorm:"type:jsonb;not null"`
	FlagStatusOrder      bool                         `gorm:"not null;default:false"`
	GatewayErrorCode     string                       `gorm:"type:varchar(64)"`
	TrackingInformation  datatypes.JSON               `gorm:"type:jsonb;not null"`
	UpdatedAt            time.Time
}

func (OrderDTO) TableName() string {
	return "orders"
}

// GeoPointDTO keeps optional coordinates.
type GeoPointDTO struct {
	Lat *float64
	Lng *float64
}

// StateLogDTO is one entry of an order's state log. Rows are only inserted.
type StateLogDTO struct {
	ID        int64                                 `gorm:"primaryKey"`
	OrderID   int64                                 `gorm:"not null;index:idx_state_log_order,priority:1"`
	CompanyID int64                                 `gorm:"not null;index:idx_state_log_order,priority:2"`
	Kind      string                                `gorm:"type:varchar(16);not null"`
	FromState string                                `gorm:"type:varchar(32)"`
	ToState   string                                `gorm:"type:varchar(32);not null"`
	Action    string                                `gorm:"type:varchar(32)"`
	ActorID   *int64
	At        time.Time                             `gorm:"not null"`
	Data      datatypes.JSONType[map[string]string] `gorm:"type:jsonb;not null"`
}

func (StateLogDTO) TableName() string {
	return "order_state_logs"
}

func fromDomain(o *order.Order) OrderDTO {
	s := o.Snapshot()

	var txID *uuid.UUID
	if s.GatewayTransactionID != nil {
		raw := s.GatewayTransactionID.Raw()
		txID = &raw
	}

	return OrderDTO{
		ID:                   s.ID,
		CompanyID:            s.CompanyID,
		AppCode:              s.AppCode,
		OrderStateID:         s.StatusID,
		DeliveryState:        string(s.DeliveryState),
		DeliveryID:           s.DeliveryID,
		Carrier:              string(s.Carrier),
		TypeOrder:            string(s.Type),
		Origin:               fromGeoPoint(s.Origin),
		Destination:          fromGeoPoint(s.Destination),
		PaymentState:         string(s.PaymentState),
		PaymentMethod:        string(s.PaymentMethod),
		Total:                s.Total.Amount(),
		Currency:             s.Total.Currency(),
		GatewayTransactionID: txID,
		GatewayCode:          string(s.GatewayCode),
		CheckoutSession:      toJSON(s.CheckoutSession),
		FlagStatusOrder:      s.FlagStatusOrder,
		GatewayErrorCode:     s.GatewayErrorCode,
		TrackingInformation:  toJSON(s.TrackingInformation),
	}
}

func toDomain(dto OrderDTO, logs []StateLogDTO) (*order.Order, error) {
	total, err := kernel.NewMoney(dto.Total, dto.Currency)
	if err != nil {
		return nil, err
	}
	origin, err := dto.Origin.toDomain()
	if err != nil {
		return nil, err
	}
	destination, err := dto.Destination.toDomain()
	if err != nil {
		return nil, err
	}

	var txID *kernel.UUID
	if dto.GatewayTransactionID != nil {
		id, idErr := kernel.UUIDFromRaw(*dto.GatewayTransactionID)
		if idErr != nil {
			return nil, idErr
		}
		txID = &id
	}

	entries := make([]order.LogEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, l.toDomain())
	}

	return order.Restore(order.Snapshot{
		ID:                   dto.ID,
		CompanyID:            dto.CompanyID,
		AppCode:              dto.AppCode,
		StatusID:             dto.OrderStateID,
		Status:               order.Status(dto.State.Code),
		DeliveryState:        delivery.State(dto.DeliveryState),
		DeliveryID:           dto.DeliveryID,
		Carrier:              delivery.CarrierCode(dto.Carrier),
		Type:                 order.Type(dto.TypeOrder),
		Origin:               origin,
		Destination:          destination,
		PaymentState:         order.PaymentState(dto.PaymentState),
		PaymentMethod:        order.PaymentMethod(dto.PaymentMethod),
		Total:                total,
		GatewayTransactionID: txID,
		GatewayCode:          payment.GatewayCode(dto.GatewayCode),
		CheckoutSession:      fromJSON(dto.CheckoutSession),
		FlagStatusOrder:      dto.FlagStatusOrder,
		GatewayErrorCode:     dto.GatewayErrorCode,
		StateLog:             entries,
		TrackingInformation:  fromJSON(dto.TrackingInformation),
	})
}

func fromLogEntries(scope kernel.Scope, entries []order.LogEntry) []StateLogDTO {
	dtos := make([]StateLogDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, StateLogDTO{
			OrderID:   scope.OrderID,
			CompanyID: scope.CompanyID,
			Kind:      string(e.Kind),
			FromState: e.From,
			ToState:   e.To,
			Action:    e.Action,
			ActorID:   e.ActorID,
			At:        e.At,
			Data:      datatypes.NewJSONType(e.Data),
		})
	}
	return dtos
}

func (l StateLogDTO) toDomain() order.LogEntry {
	return order.LogEntry{
		Kind:    order.LogKind(l.Kind),
		From:    l.FromState,
		To:      l.ToState,
		Action:  l.Action,
		ActorID: l.ActorID,
		At:      l.At,
		Data:    l.Data.Data(),
	}
}

func fromGeoPoint(p kernel.GeoPoint) GeoPointDTO {
	if p.IsZero() {
		return GeoPointDTO{}
	}
	lat, lng := p.Lat(), p.Lng()
	return GeoPointDTO{Lat: &lat, Lng: &lng}
}

func (g GeoPointDTO) toDomain() (kernel.GeoPoint, error) {
	if g.Lat == nil || g.Lng == nil {
		return kernel.GeoPoint{}, nil
	}
	return kernel.NewGeoPoint(*g.Lat, *g.Lng)
}

func toJSON(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 {
		return jsonNull
	}
	return datatypes.JSON(raw)
}

func fromJSON(doc datatypes.JSON) json.RawMessage {
	if len(doc) == 0 || string(doc) == "null" {
		return nil
	}
	return json.RawMessage(doc)
}
