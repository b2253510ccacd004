package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/payment"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Environment string
	LogLevel    string

	ReconcileSchedule  string
	NotifySchedule     string
	ReconcileBatchSize int
	ReconcileGateways  []payment.GatewayCode

	CheckoutTTL        time.Duration
	OfflineCheckoutTTL time.Duration
	GatewayTimeout     time.Duration
	SweepLockTTL       time.Duration
	NotificationBuffer int

	CredentialsFile string
	// PaymentOnDeliveryExemptApps lists apps whose cash and card on delivery
	// orders are settled outside this service.
	PaymentOnDeliveryExemptApps []string
}

// LoadConfig reads the optional .env file, then the process environment.
func LoadConfig(envFile string) (Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	gateways, err := parseGateways(v.GetString("RECONCILE_GATEWAYS"))
	if err != nil {
		return Config{}, err
	}

	env := strings.ToLower(v.GetString("APP_ENVIRONMENT"))
	if env != "sandbox" && env != "production" {
		return Config{}, fmt.Errorf("APP_ENVIRONMENT must be sandbox or production, got %q", env)
	}

	return Config{
		HTTPPort: v.GetString("HTTP_PORT"),

		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSslMode:  v.GetString("DB_SSLMODE"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		Environment: env,
		LogLevel:    v.GetString("LOG_LEVEL"),

		ReconcileSchedule:  v.GetString("RECONCILE_SCHEDULE"),
		NotifySchedule:     v.GetString("NOTIFY_SCHEDULE"),
		ReconcileBatchSize: v.GetInt("RECONCILE_BATCH_SIZE"),
		ReconcileGateways:  gateways,

		CheckoutTTL:        v.GetDuration("CHECKOUT_TTL"),
		OfflineCheckoutTTL: v.GetDuration("OFFLINE_CHECKOUT_TTL"),
		GatewayTimeout:     v.GetDuration("GATEWAY_TIMEOUT"),
		SweepLockTTL:       v.GetDuration("SWEEP_LOCK_TTL"),
		NotificationBuffer: v.GetInt("NOTIFICATION_BUFFER"),

		CredentialsFile:             v.GetString("CREDENTIALS_FILE"),
		PaymentOnDeliveryExemptApps: splitList(v.GetString("PAYMENT_ON_DELIVERY_EXEMPT_APPS")),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("APP_ENVIRONMENT", "sandbox")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RECONCILE_SCHEDULE", "0 */5 * * * *")
	v.SetDefault("NOTIFY_SCHEDULE", "30 * * * * *")
	v.SetDefault("RECONCILE_BATCH_SIZE", 100)
	v.SetDefault("RECONCILE_GATEWAYS", "mercadopago,niubiz,culqi,izipay,payu,openpay,kushki,paypal,stripe")
	v.SetDefault("CHECKOUT_TTL", "30m")
	v.SetDefault("OFFLINE_CHECKOUT_TTL", "48h")
	v.SetDefault("GATEWAY_TIMEOUT", "15s")
	v.SetDefault("SWEEP_LOCK_TTL", "4m")
	v.SetDefault("NOTIFICATION_BUFFER", 256)
	v.SetDefault("CREDENTIALS_FILE", "credentials.yaml")
}

// DSN is the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func parseGateways(raw string) ([]payment.GatewayCode, error) {
	var (
		out    []payment.GatewayCode
		errAll error
	)
	for _, item := range splitList(raw) {
		code, err := payment.ParseGatewayCode(item)
		if err != nil {
			errAll = errors.Join(errAll, err)
			continue
		}
		out = append(out, code)
	}
	if errAll != nil {
		return nil, fmt.Errorf("RECONCILE_GATEWAYS: %w", errAll)
	}
	return out, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
