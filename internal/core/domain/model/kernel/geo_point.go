package kernel

import (
	"math"

	"fulfillment/internal/pkg/errs"
)

const earthRadiusKm = 6371.0

var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError("GeoPoint must be created via NewGeoPoint")

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	lat   float64
	lng   float64
	valid bool
}

func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	if lat < -90 || lat > 90 {
		return GeoPoint{}, errs.NewValueIsOutOfRangeError("lat", lat, -90, 90)
	}
	if lng < -180 || lng > 180 {
		return GeoPoint{}, errs.NewValueIsOutOfRangeError("lng", lng, -180, 180)
	}
	return GeoPoint{lat: lat, lng: lng, valid: true}, nil
}

func (p GeoPoint) Lat() float64 { return p.lat }
func (p GeoPoint) Lng() float64 { return p.lng }

func (p GeoPoint) IsZero() bool { return !p.valid }

func (p GeoPoint) Validate() error {
	if !p.valid {
		return ErrGeoPointIsNotConstructed
	}
	return nil
}

// DistanceKm returns the great-circle distance between two points.
func (p GeoPoint) DistanceKm(other GeoPoint) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(other.lat - p.lat)
	dLng := toRad(other.lng - p.lng)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(p.lat))*math.Cos(toRad(other.lat))*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
