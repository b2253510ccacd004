// Package jobs provides scheduled background tasks for payment reconciliation.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
// Both jobs iterate the configured gateways and delegate each pass to the
// reconciliation scheduler.
//
// # Available Jobs
//
// 1. ReconciliationJob - polls gateways for pending payments past their webhook window
// 2. NotificationJob - sends the notifications of approved payments that were not announced yet
//
// # Usage
//
//	jobManager := jobs.NewJobManager(jobs.Config{
//		ReconcileSchedule: "0 */5 * * * *",
//		NotifySchedule:    "30 * * * * *",
//		Gateways:          []payment.GatewayCode{payment.Mercadopago, payment.Niubiz},
//	}, scheduler, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A gateway whose pass fails is logged and the next gateway still runs.
// Overlapping runs are skipped. Failed job starts stop any already running jobs.
package jobs
