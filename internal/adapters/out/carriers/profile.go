package carriers

import "fulfillment/internal/core/domain/model/delivery"

// Profile describes a carrier's JSON API.
type Profile struct {
	Code         delivery.CarrierCode
	BaseURL      map[string]string
	ShipmentPath string
	QuotePath    string
	// StatusPath addresses one shipment through {code}.
	StatusPath string
	// Statuses translates delivery states into the carrier's vocabulary.
	// States missing here are not reported to the carrier.
	Statuses map[delivery.State]string
}

func (p Profile) baseURL(environment string) string {
	if u, ok := p.BaseURL[environment]; ok {
		return u
	}
	return p.BaseURL["sandbox"]
}

// Profiles returns the carrier profiles keyed by code.
func Profiles() map[delivery.CarrierCode]Profile {
	return map[delivery.CarrierCode]Profile{
		delivery.CarrierChazki: {
			Code: delivery.CarrierChazki,
			BaseURL: map[string]string{
				"sandbox":    "https://sandbox-api.chazki.com",
				"production": "https://api.chazki.com",
			},
			ShipmentPath: "/v1/shipments",
			QuotePath:    "/v1/quotes",
			StatusPath:   "/v1/shipments/{code}/events",
			Statuses: map[delivery.State]string{
				delivery.InPlaceOrigin:  "AT_PICKUP",
				delivery.InRoadDelivery: "IN_TRANSIT",
				delivery.InPlaceDestiny: "AT_DROPOFF",
				delivery.GivenDelivery:  "DELIVERED",
				delivery.BackToOrigin:   "RETURNING",
			},
		},
		delivery.CarrierOlva: {
			Code: delivery.CarrierOlva,
			BaseURL: map[string]string{
				"sandbox":    "https://qa-api.olvacourier.com",
				"production": "https://api.olvacourier.com",
			},
			ShipmentPath: "/api/envios",
			QuotePath:    "/api/tarifas",
			StatusPath:   "/api/envios/{code}/estado",
			Statuses: map[delivery.State]string{
				delivery.InRoadDelivery: "EN_RUTA",
				delivery.GivenDelivery:  "ENTREGADO",
				delivery.BackToOrigin:   "DEVUELTO",
			},
		},
	}
}
