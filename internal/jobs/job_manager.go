package jobs

import (
	"fmt"
	"log/slog"

	"fulfillment/internal/core/domain/model/payment"
)

// Config selects the schedules and the gateways swept.
type Config struct {
	ReconcileSchedule string
	NotifySchedule    string
	Gateways          []payment.GatewayCode
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	reconciliationJob *ReconciliationJob
	notificationJob   *NotificationJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(cfg Config, sweeper Sweeper, logger *slog.Logger) *JobManager {
	return &JobManager{
		reconciliationJob: NewReconciliationJob(sweeper, cfg.Gateways, cfg.ReconcileSchedule, logger),
		notificationJob:   NewNotificationJob(sweeper, cfg.Gateways, cfg.NotifySchedule, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.reconciliationJob.Start(); err != nil {
		return fmt.Errorf("failed to start reconciliation job: %w", err)
	}

	if err := jm.notificationJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.reconciliationJob.Stop()
		return fmt.Errorf("failed to start notification job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.notificationJob.Stop()
	jm.reconciliationJob.Stop()
}
