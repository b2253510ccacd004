// Package payments orchestrates gateway checkouts, confirmations, polls and
// refunds on top of the transaction ledger.
//
// Every gateway result goes through settle, which writes it with a guarded
// update: of all the webhooks and polls that race on one transaction, exactly
// one terminal write wins and the others read back the stored outcome.
package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const (
	DefaultCheckoutTTL        = 30 * time.Minute
	DefaultOfflineCheckoutTTL = 48 * time.Hour
	DefaultGatewayTimeout     = 15 * time.Second
)

// Config holds the coordinator settings.
type Config struct {
	CheckoutTTL time.Duration
	// OfflineCheckoutTTL applies to gateways paid outside the platform
	// (cash codes, staff confirmation), which stay open for days.
	OfflineCheckoutTTL time.Duration
	GatewayTimeout     time.Duration
	// Environment selects sandbox or production credentials when the caller
	// does not name one.
	Environment string
}

// Deps are the collaborators of the coordinator. Notifier may be nil.
// Locker serializes refunds across replicas; without it they are only
// serialized within the process.
type Deps struct {
	UnitOfWork  ports.UnitOfWorkFactory
	Gateways    ports.GatewayFactory
	Credentials ports.CredentialStore
	Notifier    ports.Notifier
	Locker      ports.Locker
	Logger      *slog.Logger
}

type Option func(*Coordinator)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(c *Coordinator) {
		c.clock = clock
	}
}

// Coordinator is the payment gateway coordinator.
type Coordinator struct {
	cfg         Config
	uowFactory  ports.UnitOfWorkFactory
	gateways    ports.GatewayFactory
	credentials ports.CredentialStore
	notifier    ports.Notifier
	locker      ports.Locker
	clock       func() time.Time
	logger      *slog.Logger
}

func New(cfg Config, deps Deps, opts ...Option) (*Coordinator, error) {
	if deps.UnitOfWork == nil {
		return nil, errs.NewValueIsRequiredError("unitOfWork")
	}
	if deps.Gateways == nil {
		return nil, errs.NewValueIsRequiredError("gateways")
	}
	if deps.Credentials == nil {
		return nil, errs.NewValueIsRequiredError("credentials")
	}
	if cfg.CheckoutTTL <= 0 {
		cfg.CheckoutTTL = DefaultCheckoutTTL
	}
	if cfg.OfflineCheckoutTTL <= 0 {
		cfg.OfflineCheckoutTTL = DefaultOfflineCheckoutTTL
	}
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = DefaultGatewayTimeout
	}
	if cfg.Environment == "" {
		cfg.Environment = "sandbox"
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var locker ports.Locker = newLocalLocker()
	if deps.Locker != nil {
		locker = deps.Locker
	}

	c := &Coordinator{
		cfg:         cfg,
		uowFactory:  deps.UnitOfWork,
		gateways:    deps.Gateways,
		credentials: deps.Credentials,
		notifier:    deps.Notifier,
		locker:      locker,
		clock:       func() time.Time { return time.Now().UTC() },
		logger:      logger.With("component", "payment_coordinator"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GatewayInformation describes the integration registered for code.
func (c *Coordinator) GatewayInformation(code payment.GatewayCode) (ports.GatewayInformation, error) {
	if err := code.Validate(); err != nil {
		return ports.GatewayInformation{}, err
	}
	gw, err := c.gateways.For(code)
	if err != nil {
		return ports.GatewayInformation{}, err
	}
	return gw.GetPaymentGatewayInformation(), nil
}

// GatewayTransactions lists what the gateway itself recorded between from and to.
func (c *Coordinator) GatewayTransactions(
	ctx context.Context, auth ports.AuthContext, code payment.GatewayCode, from, to time.Time,
) ([]ports.GatewayResult, error) {
	gw, creds, err := c.gateway(ctx, auth, code)
	if err != nil {
		return nil, err
	}

	var results []ports.GatewayResult
	err = c.call(ctx, code, "getAllTransaction", func(ctx context.Context) error {
		results, err = gw.GetAllTransaction(ctx, ports.ListRequest{From: from, To: to, Credentials: creds})
		return err
	})
	return results, err
}

// gateway resolves the strategy of code together with the tenant's credentials.
func (c *Coordinator) gateway(ctx context.Context, auth ports.AuthContext, code payment.GatewayCode) (ports.PaymentGateway, ports.Credentials, error) {
	if err := code.Validate(); err != nil {
		return nil, ports.Credentials{}, err
	}
	gw, err := c.gateways.For(code)
	if err != nil {
		return nil, ports.Credentials{}, err
	}

	if auth.Environment == "" {
		auth.Environment = c.cfg.Environment
	}
	creds, err := c.credentials.GetCredentials(ctx, auth, ports.CredentialQuery{
		SubsidiaryCode:  auth.AppCode,
		CategoryCode:    ports.CategoryPayment,
		IntegrationCode: code.String(),
	})
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, ports.Credentials{}, errs.NewGatewayMisconfiguredError(code.String(), err)
	}
	if err != nil {
		return nil, ports.Credentials{}, err
	}
	return gw, creds, nil
}

// call runs fn under the gateway timeout. An expired deadline is reported as
// a transient gateway failure.
func (c *Coordinator) call(ctx context.Context, code payment.GatewayCode, operation string, fn func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.GatewayTimeout)
	defer cancel()

	err := fn(callCtx)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, errs.ErrGatewayTransient) {
		return errs.NewGatewayTransientError(code.String(), operation, err)
	}
	return err
}

// current loads the transaction the order points at.
func (c *Coordinator) current(ctx context.Context, o *order.Order) (*payment.GatewayTransaction, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	id := o.GatewayTransactionID()
	if id == nil {
		return nil, errs.NewObjectNotFoundError("gatewayTransactionId", o.ID())
	}
	tx, err := c.uowFactory.Create().TransactionRepository().Get(ctx, o.CompanyID(), *id)
	if err != nil {
		return nil, fmt.Errorf("load transaction of order %d: %w", o.ID(), err)
	}
	return tx, nil
}

func (c *Coordinator) loadOrder(ctx context.Context, tx *payment.GatewayTransaction) (*order.Order, error) {
	scope := kernel.Scope{OrderID: tx.OrderID(), CompanyID: tx.CompanyID()}
	o, err := c.uowFactory.Create().OrderRepository().Get(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("load order %d of transaction %s: %w", tx.OrderID(), tx.ID(), err)
	}
	return o, nil
}

// authFor rebuilds the credential context recorded on a transaction.
func authFor(tx *payment.GatewayTransaction) ports.AuthContext {
	return ports.AuthContext{
		CompanyID:   tx.CompanyID(),
		AppCode:     tx.Additional().CredentialRef,
		Environment: tx.Additional().Environment,
	}
}
