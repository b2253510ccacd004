package gateways_test

import (
	"testing"

	"fulfillment/internal/adapters/out/gateways"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualGateway(t *testing.T) {
	gw := gateways.NewManualGateway()
	creds := ports.Credentials{Values: map[string]string{gateways.KeyWebhookSecret: "staff"}}

	t.Run("should settle a signed staff confirmation", func(t *testing.T) {
		tx := newTransaction(t, payment.Manual, "")
		body := []byte(`{"reference":"` + tx.Code() + `","status":"paid"}`)

		res, err := gw.ValidateTransaction(t.Context(), ports.TransactionRequest{
			Transaction: tx,
			Payload: ports.WebhookPayload{
				Body:    body,
				Headers: map[string]string{gateways.ManualSignatureHeader: gateways.Sign("staff", body)},
			},
			Credentials: creds,
		})

		require.NoError(t, err)
		assert.Equal(t, payment.StateApproved, res.State)
	})

	t.Run("should refuse unsigned confirmations", func(t *testing.T) {
		tx := newTransaction(t, payment.Manual, "")
		body := []byte(`{"reference":"` + tx.Code() + `","status":"paid"}`)

		_, err := gw.ValidateTransaction(t.Context(), ports.TransactionRequest{
			Transaction: tx,
			Payload:     ports.WebhookPayload{Body: body},
			Credentials: creds,
		})

		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should report the stored state when polled", func(t *testing.T) {
		tx := newTransaction(t, payment.Manual, "")

		res, err := gw.GetStatusTransaction(t.Context(), ports.TransactionRequest{Transaction: tx})

		require.NoError(t, err)
		assert.Equal(t, payment.StatePending, res.State)
	})

	t.Run("should open a checkout without a remote call", func(t *testing.T) {
		session, err := gw.GetCheckoutInformation(t.Context(), ports.CheckoutRequest{TransactionCode: "TX-1"})

		require.NoError(t, err)
		assert.Equal(t, "TX-1", session.ReferenceID)
		assert.Empty(t, session.URL)
	})

	t.Run("should not refund", func(t *testing.T) {
		_, err := gw.GetRefundTransaction(t.Context(), ports.RefundRequest{})
		assert.ErrorIs(t, err, errs.ErrFunctionNotImplemented)
	})
}
