package cmd_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fulfillment/cmd"
	"fulfillment/internal/core/domain/model/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), ".env")

	t.Run("should apply defaults without an env file", func(t *testing.T) {
		cfg, err := cmd.LoadConfig(missing)

		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.HTTPPort)
		assert.Equal(t, "sandbox", cfg.Environment)
		assert.Equal(t, 30*time.Minute, cfg.CheckoutTTL)
		assert.Equal(t, 48*time.Hour, cfg.OfflineCheckoutTTL)
		assert.Equal(t, 100, cfg.ReconcileBatchSize)
		assert.Contains(t, cfg.ReconcileGateways, payment.Mercadopago)
		assert.NotContains(t, cfg.ReconcileGateways, payment.Manual)
	})

	t.Run("should read the environment", func(t *testing.T) {
		t.Setenv("APP_ENVIRONMENT", "Production")
		t.Setenv("RECONCILE_GATEWAYS", " culqi , paypal,")
		t.Setenv("PAYMENT_ON_DELIVERY_EXEMPT_APPS", "marketplace,kiosk")
		t.Setenv("GATEWAY_TIMEOUT", "3s")

		cfg, err := cmd.LoadConfig(missing)

		require.NoError(t, err)
		assert.Equal(t, "production", cfg.Environment)
		assert.Equal(t, []payment.GatewayCode{payment.Culqi, payment.Paypal}, cfg.ReconcileGateways)
		assert.Equal(t, []string{"marketplace", "kiosk"}, cfg.PaymentOnDeliveryExemptApps)
		assert.Equal(t, 3*time.Second, cfg.GatewayTimeout)
	})

	t.Run("should load the env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("FULFILLMENT_TEST_PORT=9090\n"), 0o600))
		t.Setenv("FULFILLMENT_TEST_PORT", "")
		require.NoError(t, os.Unsetenv("FULFILLMENT_TEST_PORT"))
		t.Setenv("DB_NAME", "ledger")

		cfg, err := cmd.LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, "9090", os.Getenv("FULFILLMENT_TEST_PORT"))
		assert.Contains(t, cfg.DSN(), "dbname=ledger")
	})

	t.Run("should reject unknown gateways", func(t *testing.T) {
		t.Setenv("RECONCILE_GATEWAYS", "culqi,barter")

		_, err := cmd.LoadConfig(missing)

		assert.ErrorContains(t, err, "RECONCILE_GATEWAYS")
	})

	t.Run("should reject an unknown environment", func(t *testing.T) {
		t.Setenv("APP_ENVIRONMENT", "staging")

		_, err := cmd.LoadConfig(missing)

		assert.Error(t, err)
	})
}
