package gateways_test

import (
	"testing"

	"fulfillment/internal/adapters/out/gateways"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_For(t *testing.T) {
	factory := gateways.NewFactory(nil)

	t.Run("should serve every supported gateway", func(t *testing.T) {
		for _, code := range payment.AllGatewayCodes() {
			gw, err := factory.For(code)
			require.NoError(t, err, code)
			require.NotNil(t, gw, code)
			assert.Equal(t, code, gw.GetPaymentGatewayInformation().Code)
		}
	})

	t.Run("should reject an unknown gateway", func(t *testing.T) {
		_, err := factory.For("visa")
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"status":"paid"}`)

	t.Run("should accept prefixed and bare digests", func(t *testing.T) {
		assert.NoError(t, gateways.VerifySignature("s", body, gateways.Sign("s", body)))
		assert.NoError(t, gateways.VerifySignature("s", body, "sha256="+gateways.Sign("s", body)))
	})

	t.Run("should reject missing and malformed digests", func(t *testing.T) {
		assert.ErrorIs(t, gateways.VerifySignature("s", body, ""), errs.ErrValueIsRequired)
		assert.ErrorIs(t, gateways.VerifySignature("s", body, "zz"), errs.ErrValueIsInvalid)
		assert.ErrorIs(t, gateways.VerifySignature("s", []byte("{}"), gateways.Sign("s", body)), errs.ErrValueIsInvalid)
	})
}
