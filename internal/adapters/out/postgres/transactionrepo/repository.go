package transactionrepo

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormTransactionRepository implements ports.TransactionRepository using GORM.
type GormTransactionRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id string, aggregate any)
}

func NewGormTransactionRepository(db *gorm.DB, tracker aggregateTracker) *GormTransactionRepository {
	return &GormTransactionRepository{
		db:      db,
		tracker: tracker,
	}
}

// Create appends a payment or refund row.
func (r *GormTransactionRepository) Create(ctx context.Context, tx *payment.GatewayTransaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	dto := fromDomain(tx)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.track(tx)
	return nil
}

func (r *GormTransactionRepository) Get(ctx context.Context, companyID int64, id kernel.UUID) (*payment.GatewayTransaction, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto TransactionDTO
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id.Raw(), companyID).
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("gatewayTransaction", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// FindLatestByCode returns the newest payment carrying the idempotency code.
func (r *GormTransactionRepository) FindLatestByCode(ctx context.Context, companyID int64, code string) (*payment.GatewayTransaction, error) {
	var dto TransactionDTO
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND code = ? AND type_transaction = ?", companyID, code, int(payment.TypePayment)).
		Order("date_transaction DESC").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("gatewayTransaction", code)
		}
		return nil, err
	}

	return toDomain(dto)
}

// ApplyOutcome writes the classified fields of tx. Only a row still waiting
// for a result is touched, so at most one terminal write ever lands.
func (r *GormTransactionRepository) ApplyOutcome(ctx context.Context, tx *payment.GatewayTransaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	dto := fromDomain(tx)
	result := r.db.WithContext(ctx).
		Model(&TransactionDTO{}).
		Where("id = ? AND company_id = ?", dto.ID, dto.CompanyID).
		Where("payment_state IN ?", settleable()).
		Updates(map[string]any{
			"status":                         dto.Status,
			"payment_state":                  dto.PaymentState,
			"reference_id":                   dto.ReferenceID,
			"date_payment":                   dto.DatePayment,
			"gateway_authorization_response": dto.GatewayAuthorizationResponse,
			"gateway_error_code":             dto.GatewayErrorCode,
		})
	if err := guarded(result); err != nil {
		return err
	}

	r.track(tx)
	return nil
}

// Cancel flips an approved payment to CANCELED after a refund.
func (r *GormTransactionRepository) Cancel(ctx context.Context, tx *payment.GatewayTransaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&TransactionDTO{}).
		Where("id = ? AND company_id = ? AND payment_state = ?", tx.ID().Raw(), tx.CompanyID(), int(payment.StateApproved)).
		Updates(map[string]any{
			"status":        int(payment.StatusClosed),
			"payment_state": int(payment.StateCanceled),
		})
	if err := guarded(result); err != nil {
		return err
	}

	r.track(tx)
	return nil
}

// ListReconcilable selects unsettled payments (PENDING or CAPTURE_PENDING)
// whose checkout window is open at now.
func (r *GormTransactionRepository) ListReconcilable(
	ctx context.Context,
	gateway payment.GatewayCode,
	now time.Time,
	limit int,
) ([]*payment.GatewayTransaction, error) {
	var dtos []TransactionDTO
	err := r.db.WithContext(ctx).
		Where("gateway_code = ? AND type_transaction = ? AND payment_state IN ?",
			string(gateway), int(payment.TypePayment), settleable()).
		Where("date_transaction <= ? AND date_expiration >= ?", now, now).
		Order("date_transaction").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

// ListUnnotifiedApproved selects approved payments whose fan-out never ran.
func (r *GormTransactionRepository) ListUnnotifiedApproved(
	ctx context.Context,
	gateway payment.GatewayCode,
	limit int,
) ([]*payment.GatewayTransaction, error) {
	var dtos []TransactionDTO
	err := r.db.WithContext(ctx).
		Where("gateway_code = ? AND type_transaction = ? AND payment_state = ?",
			string(gateway), int(payment.TypePayment), int(payment.StateApproved)).
		Where("notified_at IS NULL").
		Order("date_payment").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

// ClaimNotification sets notified_at unless another caller already did.
func (r *GormTransactionRepository) ClaimNotification(
	ctx context.Context,
	companyID int64,
	id kernel.UUID,
	at time.Time,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&TransactionDTO{}).
		Where("id = ? AND company_id = ? AND notified_at IS NULL", id.Raw(), companyID).
		Update("notified_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *GormTransactionRepository) track(tx *payment.GatewayTransaction) {
	if r.tracker != nil {
		r.tracker.TrackAggregate("transaction:"+tx.ID().String(), tx)
	}
}

func settleable() []int {
	states := payment.Settleable()
	out := make([]int, 0, len(states))
	for _, s := range states {
		out = append(out, int(s))
	}
	return out
}

func guarded(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrStaleWrite
	}
	return nil
}

func toDomainList(dtos []TransactionDTO) ([]*payment.GatewayTransaction, error) {
	out := make([]*payment.GatewayTransaction, 0, len(dtos))
	for _, dto := range dtos {
		tx, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}
