package jobs

import (
	"context"
	"log/slog"
	"slices"

	"fulfillment/internal/core/application/reconciliation"
	"fulfillment/internal/core/domain/model/payment"

	"github.com/robfig/cron/v3"
)

// NotificationJob announces approved payments whose notifications have not
// been sent yet.
type NotificationJob struct {
	sweeper  Sweeper
	gateways []payment.GatewayCode
	spec     string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewNotificationJob(
	sweeper Sweeper,
	gateways []payment.GatewayCode,
	spec string,
	logger *slog.Logger,
) *NotificationJob {
	return &NotificationJob{
		sweeper:  sweeper,
		gateways: slices.Clone(gateways),
		spec:     spec,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "notification_job"),
	}
}

func (j *NotificationJob) Run(ctx context.Context) []reconciliation.Report {
	return sweep(ctx, j.logger, j.gateways, j.sweeper.TickNotifications)
}

func (j *NotificationJob) Start() error {
	_, err := j.cron.AddFunc(j.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		j.Run(ctx)
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Notification job started",
		"schedule", j.spec, "gateways", len(j.gateways))
	return nil
}

func (j *NotificationJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Notification job stopped")
}
