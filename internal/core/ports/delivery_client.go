package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
)

// ShipmentRequest registers a delivery leg with a carrier.
type ShipmentRequest struct {
	Scope       kernel.Scope
	DriverName  string
	DriverPhone string
	Origin      kernel.GeoPoint
	Destination kernel.GeoPoint
	Credentials Credentials
}

// QuoteRequest asks a carrier to price a route.
type QuoteRequest struct {
	Scope       kernel.Scope
	Origin      kernel.GeoPoint
	Destination kernel.GeoPoint
	Credentials Credentials
}

// ShipmentStatus reports a delivery transition to the carrier.
type ShipmentStatus struct {
	Scope       kernel.Scope
	Tracking    delivery.Tracking
	State       delivery.State
	At          time.Time
	Credentials Credentials
}

// DeliveryClient is a carrier integration.
type DeliveryClient interface {
	Create(ctx context.Context, req ShipmentRequest) (delivery.Tracking, error)
	GetPrice(ctx context.Context, req QuoteRequest) (delivery.Quote, error)
	UpdateStatus(ctx context.Context, status ShipmentStatus) error
}

// DeliveryClientFactory returns the client for a carrier.
type DeliveryClientFactory interface {
	For(code delivery.CarrierCode) (DeliveryClient, error)
}
