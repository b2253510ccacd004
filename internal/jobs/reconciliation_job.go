package jobs

import (
	"context"
	"log/slog"
	"slices"

	"fulfillment/internal/core/application/reconciliation"
	"fulfillment/internal/core/domain/model/payment"

	"github.com/robfig/cron/v3"
)

// ReconciliationJob polls gateways for payments whose webhook never arrived.
// A run still in progress when the next one is due makes that one skip.
type ReconciliationJob struct {
	sweeper  Sweeper
	gateways []payment.GatewayCode
	spec     string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewReconciliationJob creates the job. spec is a six field cron
// expression (seconds first).
func NewReconciliationJob(
	sweeper Sweeper,
	gateways []payment.GatewayCode,
	spec string,
	logger *slog.Logger,
) *ReconciliationJob {
	return &ReconciliationJob{
		sweeper:  sweeper,
		gateways: slices.Clone(gateways),
		spec:     spec,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "reconciliation_job"),
	}
}

// Run performs one pass over every configured gateway.
func (j *ReconciliationJob) Run(ctx context.Context) []reconciliation.Report {
	return sweep(ctx, j.logger, j.gateways, j.sweeper.Tick)
}

func (j *ReconciliationJob) Start() error {
	_, err := j.cron.AddFunc(j.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		j.Run(ctx)
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Reconciliation job started",
		"schedule", j.spec, "gateways", len(j.gateways))
	return nil
}

// Stop stops scheduling and waits for a running pass to finish.
func (j *ReconciliationJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Reconciliation job stopped")
}
