package gateways_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/gateways"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var openedAt = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTransaction(t *testing.T, gateway payment.GatewayCode, referenceID string) *payment.GatewayTransaction {
	t.Helper()

	tx, err := payment.NewPaymentTransaction(payment.CheckoutParams{
		OrderID:     42,
		CompanyID:   7,
		Gateway:     gateway,
		Amount:      kernel.MustMoney("59.90", "PEN"),
		ReferenceID: referenceID,
		Now:         openedAt,
		ExpiresAt:   openedAt.Add(30 * time.Minute),
	})
	require.NoError(t, err)
	return tx
}

func credentialsFor(url string) ports.Credentials {
	return ports.Credentials{
		Environment: "sandbox",
		Values: map[string]string{
			gateways.KeyAPIKey:        "key-1",
			gateways.KeyWebhookSecret: "whsec",
			gateways.KeyBaseURL:       url,
		},
	}
}

func restGateway(t *testing.T, code payment.GatewayCode) *gateways.RESTGateway {
	t.Helper()

	profile, ok := gateways.Profiles()[code]
	require.True(t, ok)
	return gateways.NewRESTGateway(profile, http.DefaultClient)
}

func TestRESTGateway_Checkout(t *testing.T) {
	t.Run("should open a checkout with a decimal amount", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/checkout/preferences", r.URL.Path)
			assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &got))
			_, _ = w.Write([]byte(`{"id":"pref-1","url":"https://pay.example/pref-1"}`))
		}))
		defer srv.Close()

		session, err := restGateway(t, payment.Mercadopago).GetCheckoutInformation(t.Context(), ports.CheckoutRequest{
			Scope:           kernel.Scope{OrderID: 42, CompanyID: 7},
			TransactionCode: "TX-1",
			Amount:          kernel.MustMoney("59.90", "PEN"),
			ExpiresAt:       openedAt.Add(30 * time.Minute),
			Credentials:     credentialsFor(srv.URL),
		})

		require.NoError(t, err)
		assert.Equal(t, "pref-1", session.ReferenceID)
		assert.Equal(t, "https://pay.example/pref-1", session.URL)
		assert.JSONEq(t, `{"id":"pref-1","url":"https://pay.example/pref-1"}`, string(session.Session))
		assert.Equal(t, "TX-1", got["reference"])
		assert.Equal(t, "59.90", got["amount"])
		assert.Equal(t, "PEN", got["currency"])
		assert.Equal(t, "2026-03-14T12:30:00Z", got["expires_at"])
	})

	t.Run("should send minor units when the profile asks for them", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &got))
			_, _ = w.Write([]byte(`{"id":"ord-1"}`))
		}))
		defer srv.Close()

		_, err := restGateway(t, payment.Culqi).GetCheckoutInformation(t.Context(), ports.CheckoutRequest{
			Scope:           kernel.Scope{OrderID: 42, CompanyID: 7},
			TransactionCode: "TX-1",
			Amount:          kernel.MustMoney("59.90", "PEN"),
			Credentials:     credentialsFor(srv.URL),
		})

		require.NoError(t, err)
		assert.InDelta(t, 5990, got["amount"], 0)
	})

	t.Run("should report missing capabilities", func(t *testing.T) {
		_, err := restGateway(t, payment.Niubiz).GetPaymentLink(t.Context(), ports.CheckoutRequest{})
		assert.ErrorIs(t, err, errs.ErrFunctionNotImplemented)
	})

	t.Run("should require an api key", func(t *testing.T) {
		_, err := restGateway(t, payment.Mercadopago).GetCheckoutInformation(t.Context(), ports.CheckoutRequest{
			Amount:      kernel.MustMoney("59.90", "PEN"),
			Credentials: ports.Credentials{Environment: "sandbox"},
		})
		assert.ErrorIs(t, err, errs.ErrGatewayMisconfigured)
	})
}

func TestRESTGateway_Status(t *testing.T) {
	t.Run("should map the gateway status and error code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/payments/pay-9", r.URL.Path)
			_, _ = w.Write([]byte(`{"id":"pay-9","status":"rejected","error_code":"cc_rejected_insufficient_amount"}`))
		}))
		defer srv.Close()

		res, err := restGateway(t, payment.Mercadopago).GetStatusTransaction(t.Context(), ports.TransactionRequest{
			Transaction: newTransaction(t, payment.Mercadopago, "pay-9"),
			Credentials: credentialsFor(srv.URL),
		})

		require.NoError(t, err)
		assert.Equal(t, payment.StateRejected, res.State)
		assert.Equal(t, "cc_rejected_insufficient_amount", res.ErrorCode)
		assert.Equal(t, "pay-9", res.ReferenceID)
	})

	t.Run("should read unknown statuses as pending", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"pay-9","status":"whatever"}`))
		}))
		defer srv.Close()

		res, err := restGateway(t, payment.Mercadopago).GetStatusTransaction(t.Context(), ports.TransactionRequest{
			Transaction: newTransaction(t, payment.Mercadopago, "pay-9"),
			Credentials: credentialsFor(srv.URL),
		})

		require.NoError(t, err)
		assert.Equal(t, payment.StatePending, res.State)
	})

	t.Run("should classify http failures", func(t *testing.T) {
		cases := []struct {
			status int
			want   error
		}{
			{http.StatusServiceUnavailable, errs.ErrGatewayTransient},
			{http.StatusTooManyRequests, errs.ErrGatewayTransient},
			{http.StatusUnauthorized, errs.ErrGatewayMisconfigured},
			{http.StatusNotFound, errs.ErrObjectNotFound},
			{http.StatusBadRequest, errs.ErrValueIsInvalid},
		}
		for _, tc := range cases {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))

			_, err := restGateway(t, payment.Mercadopago).GetStatusTransaction(t.Context(), ports.TransactionRequest{
				Transaction: newTransaction(t, payment.Mercadopago, "pay-9"),
				Credentials: credentialsFor(srv.URL),
			})
			srv.Close()

			assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
		}
	})

	t.Run("should treat a deadline as transient", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()
		_, err := restGateway(t, payment.Mercadopago).GetStatusTransaction(ctx, ports.TransactionRequest{
			Transaction: newTransaction(t, payment.Mercadopago, "pay-9"),
			Credentials: credentialsFor(srv.URL),
		})

		assert.ErrorIs(t, err, errs.ErrGatewayTransient)
	})
}

func TestRESTGateway_ValidateTransaction(t *testing.T) {
	t.Run("should read a signed webhook", func(t *testing.T) {
		tx := newTransaction(t, payment.Niubiz, "")
		body := []byte(`{"id":"auth-1","reference":"` + tx.Code() + `","status":"Authorized","paid_at":"2026-03-14T12:05:00Z"}`)

		res, err := restGateway(t, payment.Niubiz).ValidateTransaction(t.Context(), ports.TransactionRequest{
			Transaction: tx,
			Payload: ports.WebhookPayload{
				Body:    body,
				Headers: map[string]string{"x-niubiz-signature": gateways.Sign("whsec", body)},
			},
			Credentials: credentialsFor("http://unused"),
		})

		require.NoError(t, err)
		assert.Equal(t, payment.StateApproved, res.State)
		assert.Equal(t, "auth-1", res.ReferenceID)
		assert.Equal(t, openedAt.Add(5*time.Minute), res.PaidAt)
	})

	t.Run("should reject a bad signature", func(t *testing.T) {
		tx := newTransaction(t, payment.Niubiz, "")
		body := []byte(`{"reference":"` + tx.Code() + `","status":"Authorized"}`)

		_, err := restGateway(t, payment.Niubiz).ValidateTransaction(t.Context(), ports.TransactionRequest{
			Transaction: tx,
			Payload: ports.WebhookPayload{
				Body:    body,
				Headers: map[string]string{"X-Niubiz-Signature": gateways.Sign("other", body)},
			},
			Credentials: credentialsFor("http://unused"),
		})

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject a webhook for another transaction", func(t *testing.T) {
		tx := newTransaction(t, payment.Niubiz, "")
		body := []byte(`{"reference":"someone-else","status":"Authorized"}`)

		_, err := restGateway(t, payment.Niubiz).ValidateTransaction(t.Context(), ports.TransactionRequest{
			Transaction: tx,
			Payload: ports.WebhookPayload{
				Body:    body,
				Headers: map[string]string{"X-Niubiz-Signature": gateways.Sign("whsec", body)},
			},
			Credentials: credentialsFor("http://unused"),
		})

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should fetch the payment when the profile distrusts webhook bodies", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/payments/pay-77", r.URL.Path)
			_, _ = w.Write([]byte(`{"id":"pay-77","status":"approved"}`))
		}))
		defer srv.Close()

		tx := newTransaction(t, payment.Mercadopago, "")
		body := []byte(`{"id":"pay-77","reference":"` + tx.Code() + `","status":"rejected"}`)

		res, err := restGateway(t, payment.Mercadopago).ValidateTransaction(t.Context(), ports.TransactionRequest{
			Transaction: tx,
			Payload: ports.WebhookPayload{
				Body:    body,
				Headers: map[string]string{"X-Signature": "sha256=" + gateways.Sign("whsec", body)},
			},
			Credentials: credentialsFor(srv.URL),
		})

		require.NoError(t, err)
		assert.Equal(t, payment.StateApproved, res.State)
	})
}

func TestRESTGateway_Refund(t *testing.T) {
	t.Run("should post the refund against the gateway reference", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/payments/pay-9/refunds", r.URL.Path)
			_, _ = w.Write([]byte(`{"id":"ref-1"}`))
		}))
		defer srv.Close()

		res, err := restGateway(t, payment.Mercadopago).GetRefundTransaction(t.Context(), ports.RefundRequest{
			Transaction: newTransaction(t, payment.Mercadopago, "pay-9"),
			Reason:      "customer",
			Credentials: credentialsFor(srv.URL),
		})

		require.NoError(t, err)
		assert.Equal(t, "ref-1", res.ReferenceID)
	})
}

func TestRESTGateway_GetTotalPayment(t *testing.T) {
	t.Run("should add the configured fee", func(t *testing.T) {
		creds := credentialsFor("http://unused")
		creds.Values[gateways.KeyFeePercent] = "3.5"

		total, err := restGateway(t, payment.Izipay).GetTotalPayment(t.Context(), ports.TotalRequest{
			Amount:      kernel.MustMoney("59.90", "PEN"),
			Credentials: creds,
		})

		require.NoError(t, err)
		assert.Equal(t, "62.00", total.Amount().StringFixed(2))
	})

	t.Run("should fall back to not implemented without a fee", func(t *testing.T) {
		_, err := restGateway(t, payment.Izipay).GetTotalPayment(t.Context(), ports.TotalRequest{
			Amount:      kernel.MustMoney("59.90", "PEN"),
			Credentials: credentialsFor("http://unused"),
		})

		assert.ErrorIs(t, err, errs.ErrFunctionNotImplemented)
	})
}
