package cmd

import (
	"fmt"
	"log/slog"
	"net/http"

	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/carriers"
	"fulfillment/internal/adapters/out/credentials"
	"fulfillment/internal/adapters/out/gateways"
	"fulfillment/internal/adapters/out/notify"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/driverrepo"
	"fulfillment/internal/adapters/out/postgres/orderstaterepo"
	"fulfillment/internal/adapters/out/redis"
	"fulfillment/internal/core/application/deliveryfsm"
	"fulfillment/internal/core/application/fulfillment"
	"fulfillment/internal/core/application/payments"
	"fulfillment/internal/core/application/reconciliation"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/jobs"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger
	gormDB *gorm.DB

	dispatcher  *notify.Dispatcher
	coordinator *payments.Coordinator
	facade      *fulfillment.Facade
	scheduler   *reconciliation.Scheduler
}

func NewCompositionRoot(
	cfg Config,
	gormDB *gorm.DB,
	redisClient goredis.UniversalClient,
	logger *slog.Logger,
) (*CompositionRoot, error) {
	credentialFile, err := credentials.LoadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	credentialStore, err := credentials.NewViperStore(credentialFile, cfg.Environment)
	if err != nil {
		return nil, err
	}

	sink, err := redis.NewPubSubSink(redisClient, "")
	if err != nil {
		return nil, err
	}
	dispatcher, err := notify.NewDispatcher(sink, cfg.NotificationBuffer, logger)
	if err != nil {
		return nil, err
	}
	locker, err := redis.NewLocker(redisClient, "")
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.GatewayTimeout}
	uowFactory := postgres.NewGormUnitOfWorkFactory(gormDB, postgres.WithLogger(logger))

	coordinator, err := payments.New(payments.Config{
		CheckoutTTL:        cfg.CheckoutTTL,
		OfflineCheckoutTTL: cfg.OfflineCheckoutTTL,
		GatewayTimeout:     cfg.GatewayTimeout,
		Environment:        cfg.Environment,
	}, payments.Deps{
		UnitOfWork:  uowFactory,
		Gateways:    gateways.NewFactory(httpClient),
		Credentials: credentialStore,
		Notifier:    dispatcher,
		Locker:      locker,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("payment coordinator: %w", err)
	}

	facade, err := fulfillment.New(fulfillment.Deps{
		UnitOfWork:    uowFactory,
		OrderStates:   orderstaterepo.NewGormOrderStateRepository(gormDB),
		Drivers:       driverrepo.NewGormDriverRepository(gormDB),
		Credentials:   credentialStore,
		Carriers:      carriers.NewFactory(httpClient),
		Notifier:      dispatcher,
		Payments:      coordinator,
		PaymentPolicy: deliveryfsm.DefaultPaymentPolicy{ExemptApps: cfg.PaymentOnDeliveryExemptApps},
		Environment:   cfg.Environment,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("fulfillment facade: %w", err)
	}

	scheduler, err := reconciliation.New(reconciliation.Config{
		BatchSize: cfg.ReconcileBatchSize,
		LockTTL:   cfg.SweepLockTTL,
	}, uowFactory, coordinator, logger, reconciliation.WithLocker(locker))
	if err != nil {
		return nil, fmt.Errorf("reconciliation scheduler: %w", err)
	}

	return &CompositionRoot{
		cfg:         cfg,
		logger:      logger,
		gormDB:      gormDB,
		dispatcher:  dispatcher,
		coordinator: coordinator,
		facade:      facade,
		scheduler:   scheduler,
	}, nil
}

// Dispatcher is started and drained by the process around the server.
func (c *CompositionRoot) Dispatcher() *notify.Dispatcher {
	return c.dispatcher
}

func (c *CompositionRoot) CreateChangeOrderStateCommandHandler() commands.ChangeOrderStateCommandHandler {
	return commands.NewChangeOrderStateCommandHandler(c.facade)
}

func (c *CompositionRoot) CreateChangeDeliveryStateCommandHandler() commands.ChangeDeliveryStateCommandHandler {
	return commands.NewChangeDeliveryStateCommandHandler(c.facade)
}

func (c *CompositionRoot) CreateInitiateCheckoutCommandHandler() commands.InitiateCheckoutCommandHandler {
	return commands.NewInitiateCheckoutCommandHandler(c.facade, c.coordinator)
}

func (c *CompositionRoot) CreateConfirmPaymentCommandHandler() commands.ConfirmPaymentCommandHandler {
	return commands.NewConfirmPaymentCommandHandler(c.facade, c.coordinator)
}

func (c *CompositionRoot) CreateRefundPaymentCommandHandler() commands.RefundPaymentCommandHandler {
	return commands.NewRefundPaymentCommandHandler(c.facade, c.coordinator)
}

func (c *CompositionRoot) CreateGetAbandonedTransactionsQueryHandler() queries.GetAbandonedTransactionsQueryHandler {
	return queries.NewGetAbandonedTransactionsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderStateLogQueryHandler() queries.GetOrderStateLogQueryHandler {
	return queries.NewGetOrderStateLogQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetDeliveryQuoteQueryHandler() queries.GetDeliveryQuoteQueryHandler {
	return queries.NewGetDeliveryQuoteQueryHandler(c.facade)
}

func (c *CompositionRoot) CreateGetGatewayInformationQueryHandler() queries.GetGatewayInformationQueryHandler {
	return queries.NewGetGatewayInformationQueryHandler(c.coordinator)
}

func (c *CompositionRoot) CreateGetGatewayTransactionsQueryHandler() queries.GetGatewayTransactionsQueryHandler {
	return queries.NewGetGatewayTransactionsQueryHandler(c.coordinator)
}

func (c *CompositionRoot) CreateServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		ChangeOrderState:      c.CreateChangeOrderStateCommandHandler(),
		ChangeDeliveryState:   c.CreateChangeDeliveryStateCommandHandler(),
		InitiateCheckout:      c.CreateInitiateCheckoutCommandHandler(),
		ConfirmPayment:        c.CreateConfirmPaymentCommandHandler(),
		RefundPayment:         c.CreateRefundPaymentCommandHandler(),
		AbandonedTransactions: c.CreateGetAbandonedTransactionsQueryHandler(),
		OrderStateLog:         c.CreateGetOrderStateLogQueryHandler(),
		DeliveryQuote:         c.CreateGetDeliveryQuoteQueryHandler(),
		GatewayInformation:    c.CreateGetGatewayInformationQueryHandler(),
		GatewayTransactions:   c.CreateGetGatewayTransactionsQueryHandler(),
	}, c.cfg.Environment, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(jobs.Config{
		ReconcileSchedule: c.cfg.ReconcileSchedule,
		NotifySchedule:    c.cfg.NotifySchedule,
		Gateways:          c.cfg.ReconcileGateways,
	}, c.scheduler, c.logger)
}
