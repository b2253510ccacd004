package gateways

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

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Credential keys read by the REST strategy.
const (
	KeyAPIKey        = "api_key"
	KeyWebhookSecret = "webhook_secret"
	KeyBaseURL       = "base_url"
	KeyCurrency      = "currency"
	KeyFeePercent    = "fee_percent"
)

const maxResponseBytes = 1 << 20

var _ ports.PaymentGateway = (*RESTGateway)(nil)

// RESTGateway talks to a hosted-checkout gateway described by a Profile.
type RESTGateway struct {
	profile Profile
	client  *http.Client
}

func NewRESTGateway(profile Profile, client *http.Client) *RESTGateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &RESTGateway{profile: profile, client: client}
}

type checkoutBody struct {
	Reference   string `json:"reference"`
	OrderID     int64  `json:"order_id"`
	CompanyID   int64  `json:"company_id"`
	Amount      any    `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
	ExpiresAt   string `json:"expires_at,omitempty"`
}

type sessionBody struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	URL   string `json:"url"`
}

type resultBody struct {
	ID        string     `json:"id"`
	Reference string     `json:"reference"`
	Status    string     `json:"status"`
	ErrorCode string     `json:"error_code"`
	PaidAt    *time.Time `json:"paid_at"`
}

func (g *RESTGateway) GetPaymentGatewayInformation() ports.GatewayInformation {
	return ports.GatewayInformation{Code: g.profile.Code, Name: g.profile.Name, Description: g.profile.Description}
}

func (g *RESTGateway) GetCheckoutInformation(ctx context.Context, req ports.CheckoutRequest) (ports.CheckoutSession, error) {
	return g.openSession(ctx, "checkout", g.profile.CheckoutPath, req)
}

func (g *RESTGateway) GetPaymentLink(ctx context.Context, req ports.CheckoutRequest) (ports.CheckoutSession, error) {
	return g.openSession(ctx, "paymentLink", g.profile.LinkPath, req)
}

func (g *RESTGateway) openSession(ctx context.Context, op, path string, req ports.CheckoutRequest) (ports.CheckoutSession, error) {
	if path == "" {
		return ports.CheckoutSession{}, errs.NewFunctionNotImplementedError(g.code(), op)
	}

	body := checkoutBody{
		Reference:   req.TransactionCode,
		OrderID:     req.Scope.OrderID,
		CompanyID:   req.Scope.CompanyID,
		Amount:      g.amount(req.Amount),
		Currency:    req.Amount.Currency(),
		Description: req.Description,
	}
	if !req.ExpiresAt.IsZero() {
		body.ExpiresAt = req.ExpiresAt.UTC().Format(time.RFC3339)
	}

	var out sessionBody
	raw, err := g.do(ctx, op, req.Credentials, http.MethodPost, path, "", body, &out)
	if err != nil {
		return ports.CheckoutSession{}, err
	}
	return ports.CheckoutSession{ReferenceID: out.ID, Token: out.Token, URL: out.URL, Session: raw}, nil
}

// ValidateTransaction checks the webhook signature and reads the result the
// webhook carries, or fetches it when the profile says so.
func (g *RESTGateway) ValidateTransaction(ctx context.Context, req ports.TransactionRequest) (ports.GatewayResult, error) {
	if req.Transaction == nil {
		return ports.GatewayResult{}, errs.NewValueIsRequiredError("transaction")
	}
	if err := g.verify(req.Payload, req.Credentials); err != nil {
		return ports.GatewayResult{}, err
	}

	var body resultBody
	if err := json.Unmarshal(req.Payload.Body, &body); err != nil {
		return ports.GatewayResult{}, errs.NewValueIsInvalidErrorWithCause("webhookBody", err)
	}
	if !g.addresses(body, req.Transaction) {
		return ports.GatewayResult{}, errs.NewValueIsInvalidErrorWithCause("webhookBody",
			fmt.Errorf("webhook does not reference transaction %s", req.Transaction.Code()))
	}

	if g.profile.FetchOnWebhook {
		ref := body.ID
		if ref == "" {
			ref = reference(req.Transaction)
		}
		return g.status(ctx, req.Credentials, ref)
	}
	return g.result(body, req.Payload.Body), nil
}

func (g *RESTGateway) AuthorizeTransaction(ctx context.Context, req ports.TransactionRequest) (ports.GatewayResult, error) {
	if g.profile.CapturePath == "" {
		return ports.GatewayResult{}, errs.NewFunctionNotImplementedError(g.code(), "authorize")
	}
	if req.Transaction == nil {
		return ports.GatewayResult{}, errs.NewValueIsRequiredError("transaction")
	}

	token := req.Payload.AuthorizationToken
	if token == "" {
		token = req.Transaction.TokenGateway()
	}
	if token == "" {
		return ports.GatewayResult{}, errs.NewValueIsRequiredError("authorizationToken")
	}

	body := map[string]any{
		"reference": req.Transaction.Code(),
		"token":     token,
		"amount":    g.amount(req.Transaction.Amount()),
		"currency":  req.Transaction.Amount().Currency(),
	}
	var out resultBody
	raw, err := g.do(ctx, "authorize", req.Credentials, http.MethodPost, g.profile.CapturePath, req.Transaction.ReferenceID(), body, &out)
	if err != nil {
		return ports.GatewayResult{}, err
	}
	return g.result(out, raw), nil
}

func (g *RESTGateway) GetStatusTransaction(ctx context.Context, req ports.TransactionRequest) (ports.GatewayResult, error) {
	if req.Transaction == nil {
		return ports.GatewayResult{}, errs.NewValueIsRequiredError("transaction")
	}

	return g.status(ctx, req.Credentials, reference(req.Transaction))
}

func (g *RESTGateway) status(ctx context.Context, creds ports.Credentials, ref string) (ports.GatewayResult, error) {
	if g.profile.StatusPath == "" {
		return ports.GatewayResult{}, errs.NewFunctionNotImplementedError(g.code(), "status")
	}

	var out resultBody
	raw, err := g.do(ctx, "status", creds, http.MethodGet, g.profile.StatusPath, ref, nil, &out)
	if err != nil {
		return ports.GatewayResult{}, err
	}
	return g.result(out, raw), nil
}

func (g *RESTGateway) GetRefundTransaction(ctx context.Context, req ports.RefundRequest) (ports.RefundResult, error) {
	if g.profile.RefundPath == "" {
		return ports.RefundResult{}, errs.NewFunctionNotImplementedError(g.code(), "refund")
	}
	if req.Transaction == nil {
		return ports.RefundResult{}, errs.NewValueIsRequiredError("transaction")
	}

	body := map[string]any{
		"reference": req.Transaction.Code(),
		"amount":    g.amount(req.Transaction.Amount()),
		"reason":    req.Reason,
	}
	var out sessionBody
	raw, err := g.do(ctx, "refund", req.Credentials, http.MethodPost, g.profile.RefundPath, req.Transaction.ReferenceID(), body, &out)
	if err != nil {
		return ports.RefundResult{}, err
	}
	return ports.RefundResult{ReferenceID: out.ID, Raw: raw}, nil
}

func (g *RESTGateway) GetAllTransaction(ctx context.Context, req ports.ListRequest) ([]ports.GatewayResult, error) {
	if g.profile.ListPath == "" {
		return nil, errs.NewFunctionNotImplementedError(g.code(), "list")
	}

	q := url.Values{}
	q.Set("from", req.From.UTC().Format(time.RFC3339))
	q.Set("to", req.To.UTC().Format(time.RFC3339))

	var out struct {
		Results []json.RawMessage `json:"results"`
	}
	if _, err := g.do(ctx, "list", req.Credentials, http.MethodGet, g.profile.ListPath+"?"+q.Encode(), "", nil, &out); err != nil {
		return nil, err
	}

	results := make([]ports.GatewayResult, 0, len(out.Results))
	for _, raw := range out.Results {
		var body resultBody
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, errs.NewValueIsInvalidErrorWithCause("gatewayResponse", err)
		}
		results = append(results, g.result(body, raw))
	}
	return results, nil
}

func (g *RESTGateway) SaveTransaction(ctx context.Context, req ports.TransactionRequest) error {
	if g.profile.RegisterPath == "" {
		return errs.NewFunctionNotImplementedError(g.code(), "save")
	}
	if req.Transaction == nil {
		return errs.NewValueIsRequiredError("transaction")
	}

	body := map[string]any{"reference": req.Transaction.Code(), "order_id": req.Transaction.OrderID()}
	_, err := g.do(ctx, "save", req.Credentials, http.MethodPost, g.profile.RegisterPath, req.Transaction.ReferenceID(), body, nil)
	return err
}

func (g *RESTGateway) GetCurrency(_ context.Context, creds ports.Credentials) (string, error) {
	if c := creds.Get(KeyCurrency); c != "" {
		return strings.ToUpper(c), nil
	}
	return "PEN", nil
}

// GetTotalPayment adds the gateway commission configured for the tenant.
func (g *RESTGateway) GetTotalPayment(_ context.Context, req ports.TotalRequest) (kernel.Money, error) {
	raw := req.Credentials.Get(KeyFeePercent)
	if raw == "" {
		return kernel.Money{}, errs.NewFunctionNotImplementedError(g.code(), "total")
	}
	pct, err := decimal.NewFromString(raw)
	if err != nil || pct.IsNegative() {
		return kernel.Money{}, errs.NewGatewayMisconfiguredError(g.code(), fmt.Errorf("fee_percent %q", raw))
	}

	fee := req.Amount.Amount().Mul(pct).Div(decimal.NewFromInt(100))
	return kernel.NewMoney(req.Amount.Amount().Add(fee).Round(2), req.Amount.Currency())
}

func (g *RESTGateway) code() string { return g.profile.Code.String() }

func (g *RESTGateway) amount(m kernel.Money) any {
	if g.profile.MinorUnits {
		return m.MinorUnits()
	}
	return m.Amount().StringFixed(2)
}

func (g *RESTGateway) addresses(body resultBody, tx *payment.GatewayTransaction) bool {
	if body.Reference != "" && body.Reference == tx.Code() {
		return true
	}
	return body.ID != "" && body.ID == tx.ReferenceID()
}

func (g *RESTGateway) result(body resultBody, raw []byte) ports.GatewayResult {
	res := ports.GatewayResult{
		State:       g.profile.state(body.Status),
		ReferenceID: body.ID,
		ErrorCode:   body.ErrorCode,
		Raw:         json.RawMessage(raw),
	}
	if body.PaidAt != nil {
		res.PaidAt = body.PaidAt.UTC()
	}
	return res
}

func (g *RESTGateway) verify(payload ports.WebhookPayload, creds ports.Credentials) error {
	if g.profile.SignatureHeader == "" {
		return nil
	}
	secret := creds.Get(KeyWebhookSecret)
	if secret == "" {
		return errs.NewGatewayMisconfiguredError(g.code(), errors.New("webhook_secret is not configured"))
	}
	return VerifySignature(secret, payload.Body, header(payload.Headers, g.profile.SignatureHeader))
}

// do sends one JSON request. Transport failures and 5xx answers are
// transient, 401 and 403 mean the credentials are wrong.
func (g *RESTGateway) do(
	ctx context.Context,
	op string,
	creds ports.Credentials,
	method, path, ref string,
	in, out any,
) ([]byte, error) {
	apiKey := creds.Get(KeyAPIKey)
	if apiKey == "" {
		return nil, errs.NewGatewayMisconfiguredError(g.code(), errors.New("api_key is not configured"))
	}

	base := creds.Get(KeyBaseURL)
	if base == "" {
		base = g.profile.baseURL(creds.Environment)
	}
	target := strings.TrimRight(base, "/") + strings.ReplaceAll(path, "{reference}", url.PathEscape(ref))

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errs.NewGatewayMisconfiguredError(g.code(), err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Accept", "application/json")
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, errs.NewGatewayTransientError(g.code(), op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errs.NewGatewayTransientError(g.code(), op, err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests:
		return nil, errs.NewGatewayTransientError(g.code(), op, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errs.NewGatewayMisconfiguredError(g.code(), fmt.Errorf("%s: status %d", op, resp.StatusCode))
	case resp.StatusCode == http.StatusNotFound:
		return nil, errs.NewObjectNotFoundError("gatewayTransaction", ref)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, errs.NewValueIsInvalidErrorWithCause(op, fmt.Errorf("status %d: %s", resp.StatusCode, raw))
	}

	if out != nil && len(raw) > 0 {
		if err = json.Unmarshal(raw, out); err != nil {
			return nil, errs.NewValueIsInvalidErrorWithCause("gatewayResponse", err)
		}
	}
	return raw, nil
}

// reference is the id the gateway knows a transaction by.
func reference(tx *payment.GatewayTransaction) string {
	if tx.ReferenceID() != "" {
		return tx.ReferenceID()
	}
	return tx.Code()
}

func header(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
