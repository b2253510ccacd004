package jobs

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/reconciliation"
	"fulfillment/internal/core/domain/model/payment"
)

// runTimeout bounds one pass over every configured gateway.
const runTimeout = 2 * time.Minute

// Sweeper runs the per-gateway reconciliation passes.
// *reconciliation.Scheduler implements it.
type Sweeper interface {
	Tick(ctx context.Context, code payment.GatewayCode) (reconciliation.Report, error)
	TickNotifications(ctx context.Context, code payment.GatewayCode) (reconciliation.Report, error)
}

type tickFunc func(ctx context.Context, code payment.GatewayCode) (reconciliation.Report, error)

// sweep runs tick once per gateway. A failing gateway is logged and the
// remaining ones still run.
func sweep(
	ctx context.Context,
	logger *slog.Logger,
	gateways []payment.GatewayCode,
	tick tickFunc,
) []reconciliation.Report {
	reports := make([]reconciliation.Report, 0, len(gateways))
	for _, code := range gateways {
		if ctx.Err() != nil {
			logger.WarnContext(ctx, "Sweep interrupted", "gateway", code, "error", ctx.Err())
			break
		}

		report, err := tick(ctx, code)
		if err != nil {
			logger.ErrorContext(ctx, "Sweep failed", "gateway", code, "error", err)
			continue
		}
		if report.Selected > 0 || report.Failed > 0 {
			logger.InfoContext(ctx, "Sweep finished",
				"gateway", code,
				"selected", report.Selected,
				"settled", report.Settled,
				"pending", report.Pending,
				"notified", report.Notified,
				"failed", report.Failed)
		}
		reports = append(reports, report)
	}
	return reports
}
