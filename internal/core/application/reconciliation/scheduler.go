// Package reconciliation repairs missed gateway webhooks by polling.
//
// Each tick picks the oldest pending payments of one gateway whose checkout
// is still open and polls them through the payment coordinator. Payments past
// their expiration are left alone: they are abandoned and surface in the
// abandoned transactions query for manual follow-up.
package reconciliation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/payments"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const (
	DefaultBatchSize = 50
	DefaultLockTTL   = 2 * time.Minute
)

// Poller settles and announces transactions. *payments.Coordinator implements it.
type Poller interface {
	PollTransaction(ctx context.Context, tx *payment.GatewayTransaction) (payments.Outcome, error)
	NotifyApproved(ctx context.Context, tx *payment.GatewayTransaction) (int, error)
}

type Config struct {
	BatchSize int
	LockTTL   time.Duration
}

// Report summarizes one tick. Skipped is set when another replica held the
// gateway's lock.
type Report struct {
	Gateway  payment.GatewayCode
	Selected int
	Settled  int
	Pending  int
	Notified int
	Failed   int
	Skipped  bool
}

type Option func(*Scheduler)

func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// WithLocker makes ticks exclusive across replicas.
func WithLocker(locker ports.Locker) Option {
	return func(s *Scheduler) {
		s.locker = locker
	}
}

type Scheduler struct {
	cfg        Config
	uowFactory ports.UnitOfWorkFactory
	poller     Poller
	locker     ports.Locker
	clock      func() time.Time
	logger     *slog.Logger
}

func New(cfg Config, uowFactory ports.UnitOfWorkFactory, poller Poller, logger *slog.Logger, opts ...Option) (*Scheduler, error) {
	if uowFactory == nil {
		return nil, errs.NewValueIsRequiredError("unitOfWork")
	}
	if poller == nil {
		return nil, errs.NewValueIsRequiredError("poller")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		cfg:        cfg,
		uowFactory: uowFactory,
		poller:     poller,
		clock:      func() time.Time { return time.Now().UTC() },
		logger:     logger.With("component", "reconciliation_scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Tick polls up to BatchSize reconcilable payments of code. A failing row is
// logged and counted; it never stops the sweep.
func (s *Scheduler) Tick(ctx context.Context, code payment.GatewayCode) (Report, error) {
	report := Report{Gateway: code}
	if err := code.Validate(); err != nil {
		return report, err
	}

	unlock, ok, err := s.lock(ctx, "reconcile:"+code.String())
	if err != nil || !ok {
		report.Skipped = err == nil
		return report, err
	}
	defer unlock()

	txs, err := s.uowFactory.Create().TransactionRepository().ListReconcilable(ctx, code, s.clock(), s.cfg.BatchSize)
	if err != nil {
		return report, err
	}
	report.Selected = len(txs)

	for _, tx := range txs {
		if err = ctx.Err(); err != nil {
			return report, err
		}

		out, err := s.poller.PollTransaction(ctx, tx)
		switch {
		case err != nil:
			report.Failed++
			s.logger.ErrorContext(ctx, "Transaction poll failed",
				"transaction_id", tx.ID(), "order_id", tx.OrderID(), "company_id", tx.CompanyID(),
				"gateway", code, "error", err)
		case out.Applied:
			report.Settled++
		case !out.State.IsTerminal():
			report.Pending++
		}
	}

	if report.Selected > 0 {
		s.logger.InfoContext(ctx, "Reconciliation tick finished",
			"gateway", code, "selected", report.Selected, "settled", report.Settled,
			"pending", report.Pending, "failed", report.Failed)
	}
	return report, nil
}

// TickNotifications re-runs the approval fan-out for approved payments whose
// notification was never recorded.
func (s *Scheduler) TickNotifications(ctx context.Context, code payment.GatewayCode) (Report, error) {
	report := Report{Gateway: code}
	if err := code.Validate(); err != nil {
		return report, err
	}

	unlock, ok, err := s.lock(ctx, "notify:"+code.String())
	if err != nil || !ok {
		report.Skipped = err == nil
		return report, err
	}
	defer unlock()

	txs, err := s.uowFactory.Create().TransactionRepository().ListUnnotifiedApproved(ctx, code, s.cfg.BatchSize)
	if err != nil {
		return report, err
	}
	report.Selected = len(txs)

	for _, tx := range txs {
		if err = ctx.Err(); err != nil {
			return report, err
		}

		sent, err := s.poller.NotifyApproved(ctx, tx)
		if err != nil {
			report.Failed++
			s.logger.ErrorContext(ctx, "Approval fan-out failed",
				"transaction_id", tx.ID(), "gateway", code, "error", err)
			continue
		}
		report.Notified += sent
	}
	return report, nil
}

// lock returns a release func that never fails the tick.
func (s *Scheduler) lock(ctx context.Context, key string) (func(), bool, error) {
	if s.locker == nil {
		return func() {}, true, nil
	}

	unlock, ok, err := s.locker.TryLock(ctx, key, s.cfg.LockTTL)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		s.logger.InfoContext(ctx, "Sweep lock busy", "key", key)
		return nil, false, nil
	}
	return func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.WarnContext(ctx, "Sweep lock not released", "key", key, "error", err)
		}
	}, true, nil
}
