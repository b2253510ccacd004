package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/payment"
)

// TransactionRepository is the gateway transaction side of the ledger.
type TransactionRepository interface {
	Create(ctx context.Context, tx *payment.GatewayTransaction) error

	Get(ctx context.Context, companyID int64, id kernel.UUID) (*payment.GatewayTransaction, error)

	// FindLatestByCode returns the most recent payment with the idempotency code.
	FindLatestByCode(ctx context.Context, companyID int64, code string) (*payment.GatewayTransaction, error)

	// ApplyOutcome writes a classification, guarded so that only a row still
	// PENDING or CAPTURE_PENDING is updated. Returns ErrStaleWrite otherwise.
	ApplyOutcome(ctx context.Context, tx *payment.GatewayTransaction) error

	// Cancel marks the original of a refund CANCELED, guarded on APPROVED.
	// Returns ErrStaleWrite otherwise.
	Cancel(ctx context.Context, tx *payment.GatewayTransaction) error

	// ListReconcilable returns up to limit PENDING payments of a gateway with
	// dateTransaction <= now <= dateExpiration, oldest first.
	ListReconcilable(ctx context.Context, gateway payment.GatewayCode, now time.Time, limit int) ([]*payment.GatewayTransaction, error)

	// ListUnnotifiedApproved returns up to limit APPROVED payments whose
	// approval fan-out has not been recorded.
	ListUnnotifiedApproved(ctx context.Context, gateway payment.GatewayCode, limit int) ([]*payment.GatewayTransaction, error)

	// ClaimNotification sets the notification sentinel. It reports false when
	// another caller claimed it first.
	ClaimNotification(ctx context.Context, companyID int64, id kernel.UUID, at time.Time) (bool, error)
}
