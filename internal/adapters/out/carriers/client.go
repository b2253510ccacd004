package carriers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Credential keys read by carrier clients.
const (
	KeyAPIKey  = "api_key"
	KeyBaseURL = "base_url"
)

// ErrCarrierUnavailable wraps transport failures and 5xx answers.
var ErrCarrierUnavailable = errors.New("carrier is unavailable")

var _ ports.DeliveryClient = (*Client)(nil)

// Client registers and prices delivery legs with one carrier.
type Client struct {
	profile Profile
	http    *http.Client
}

func NewClient(profile Profile, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{profile: profile, http: httpClient}
}

type point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func pointOf(p kernel.GeoPoint) *point {
	if p.IsZero() {
		return nil
	}
	return &point{Lat: p.Lat(), Lng: p.Lng()}
}

type shipmentBody struct {
	OrderID     int64  `json:"order_id"`
	CompanyID   int64  `json:"company_id"`
	DriverName  string `json:"driver_name,omitempty"`
	DriverPhone string `json:"driver_phone,omitempty"`
	Origin      *point `json:"origin,omitempty"`
	Destination *point `json:"destination,omitempty"`
}

func (c *Client) Create(ctx context.Context, req ports.ShipmentRequest) (delivery.Tracking, error) {
	body := shipmentBody{
		OrderID:     req.Scope.OrderID,
		CompanyID:   req.Scope.CompanyID,
		DriverName:  req.DriverName,
		DriverPhone: req.DriverPhone,
		Origin:      pointOf(req.Origin),
		Destination: pointOf(req.Destination),
	}

	var out struct {
		TrackingCode string `json:"tracking_code"`
		TrackingURL  string `json:"tracking_url"`
	}
	if err := c.do(ctx, "create", req.Credentials, c.profile.ShipmentPath, "", body, &out); err != nil {
		return delivery.Tracking{}, err
	}
	if out.TrackingCode == "" {
		return delivery.Tracking{}, errs.NewValueIsRequiredError("trackingCode")
	}
	return delivery.Tracking{Carrier: c.profile.Code, Code: out.TrackingCode, URL: out.TrackingURL}, nil
}

func (c *Client) GetPrice(ctx context.Context, req ports.QuoteRequest) (delivery.Quote, error) {
	body := map[string]any{
		"order_id":    req.Scope.OrderID,
		"origin":      pointOf(req.Origin),
		"destination": pointOf(req.Destination),
	}

	var out struct {
		Price      decimal.Decimal `json:"price"`
		Currency   string          `json:"currency"`
		ETAMinutes int             `json:"eta_minutes"`
		DistanceKm float64         `json:"distance_km"`
	}
	if err := c.do(ctx, "quote", req.Credentials, c.profile.QuotePath, "", body, &out); err != nil {
		return delivery.Quote{}, err
	}

	price, err := kernel.NewMoney(out.Price, out.Currency)
	if err != nil {
		return delivery.Quote{}, err
	}
	distance := out.DistanceKm
	if distance == 0 && !req.Origin.IsZero() && !req.Destination.IsZero() {
		distance = req.Origin.DistanceKm(req.Destination)
	}
	return delivery.Quote{
		Carrier:    c.profile.Code,
		Price:      price,
		ETA:        time.Duration(out.ETAMinutes) * time.Minute,
		DistanceKm: distance,
	}, nil
}

// UpdateStatus reports a delivery transition. Transitions the carrier does
// not track are skipped.
func (c *Client) UpdateStatus(ctx context.Context, status ports.ShipmentStatus) error {
	name, ok := c.profile.Statuses[status.State]
	if !ok {
		return nil
	}
	if status.Tracking.Code == "" {
		return errs.NewValueIsRequiredError("trackingCode")
	}

	body := map[string]any{
		"status":   name,
		"order_id": status.Scope.OrderID,
		"at":       status.At.UTC().Format(time.RFC3339),
	}
	return c.do(ctx, "status", status.Credentials, c.profile.StatusPath, status.Tracking.Code, body, nil)
}

func (c *Client) do(ctx context.Context, op string, creds ports.Credentials, path, code string, in, out any) error {
	apiKey := creds.Get(KeyAPIKey)
	if apiKey == "" {
		return errs.NewValueIsRequiredErrorWithCause("credentials", fmt.Errorf("%s: api_key", c.profile.Code))
	}
	base := creds.Get(KeyBaseURL)
	if base == "" {
		base = c.profile.baseURL(creds.Environment)
	}
	target := strings.TrimRight(base, "/") + strings.ReplaceAll(path, "{code}", url.PathEscape(code))

	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrCarrierUnavailable, c.profile.Code, op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrCarrierUnavailable, c.profile.Code, op, err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %s %s: status %d", ErrCarrierUnavailable, c.profile.Code, op, resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return errs.NewValueIsInvalidErrorWithCause(op, fmt.Errorf("%s: status %d: %s", c.profile.Code, resp.StatusCode, raw))
	}

	if out != nil {
		if err = json.Unmarshal(raw, out); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("carrierResponse", err)
		}
	}
	return nil
}
