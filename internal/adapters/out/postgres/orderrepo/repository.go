package orderrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id string, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order together with its state log.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Omit("State").Create(&dto).Error; err != nil {
		return err
	}
	if err := r.appendLog(ctx, aggregate.Scope(), aggregate.StateLog()); err != nil {
		return err
	}

	r.track(aggregate)
	return nil
}

// Get retrieves an order by id and company.
func (r *GormOrderRepository) Get(ctx context.Context, scope kernel.Scope) (*order.Order, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := r.db.WithContext(ctx).
		Preload("State").
		Where("id = ? AND company_id = ?", scope.OrderID, scope.CompanyID).
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", scope.OrderID)
		}
		return nil, err
	}

	var logs []StateLogDTO
	err = r.db.WithContext(ctx).
		Where("order_id = ? AND company_id = ?", scope.OrderID, scope.CompanyID).
		Order("id").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	return toDomain(dto, logs)
}

// ApplyDeliveryPatch writes the delivery dimension guarded by the delivery
// state, the delivery id and the order status the caller observed. Status and
// payment columns are only touched when the patch says the transition changed them.
func (r *GormOrderRepository) ApplyDeliveryPatch(ctx context.Context, patch ports.DeliveryPatch) error {
	if err := patch.Next.Validate(); err != nil {
		return err
	}

	next := fromDomain(patch.Next)
	q := r.scoped(ctx, patch.Scope).Where("delivery_state = ?", string(patch.ExpectedState))
	if patch.ExpectedDeliveryID == nil {
		q = q.Where("delivery_id IS NULL")
	} else {
		q = q.Where("delivery_id = ?", *patch.ExpectedDeliveryID)
	}
	q = q.Where("order_state_id = ?", patch.ExpectedStatusID)

	values := map[string]any{
		"delivery_state": next.DeliveryState,
		"delivery_id":    next.DeliveryID,
	}
	if patch.WritesStatus {
		values["order_state_id"] = next.OrderStateID
	}
	if patch.SettlesPayment {
		q = q.Where("payment_state = ?", string(patch.ExpectedPaymentState))
		values["payment_state"] = next.PaymentState
		values["flag_status_order"] = next.FlagStatusOrder
	}

	if err := guarded(q.Updates(values)); err != nil {
		return err
	}
	if err := r.appendLog(ctx, patch.Scope, patch.Log); err != nil {
		return err
	}

	r.track(patch.Next)
	return nil
}

// ApplyStatusPatch writes the order status guarded by the status id the caller observed.
func (r *GormOrderRepository) ApplyStatusPatch(ctx context.Context, patch ports.StatusPatch) error {
	if err := patch.Next.Validate(); err != nil {
		return err
	}

	result := r.scoped(ctx, patch.Scope).
		Where("order_state_id = ?", patch.ExpectedStatusID).
		Update("order_state_id", patch.Next.StatusID())
	if err := guarded(result); err != nil {
		return err
	}
	if err := r.appendLog(ctx, patch.Scope, patch.Log); err != nil {
		return err
	}

	r.track(patch.Next)
	return nil
}

// ApplyPaymentPatch writes the payment outcome of the order's current
// transaction. Exclusivity between writers of the same transaction comes from
// the guarded transaction write made in the same unit of work.
func (r *GormOrderRepository) ApplyPaymentPatch(ctx context.Context, patch ports.PaymentPatch) error {
	if err := patch.Next.Validate(); err != nil {
		return err
	}
	if err := patch.TransactionID.Validate(); err != nil {
		return err
	}

	next := fromDomain(patch.Next)
	result := r.scoped(ctx, patch.Scope).
		Where("gateway_transaction_id = ?", patch.TransactionID.Raw()).
		Updates(map[string]any{
			"payment_state":      next.PaymentState,
			"flag_status_order":  next.FlagStatusOrder,
			"gateway_error_code": next.GatewayErrorCode,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.staleOrMissing(ctx, patch.Scope)
	}
	if err := r.appendLog(ctx, patch.Scope, patch.Log); err != nil {
		return err
	}

	r.track(patch.Next)
	return nil
}

// ApplyCheckoutPatch links the order to its gateway transaction.
func (r *GormOrderRepository) ApplyCheckoutPatch(ctx context.Context, patch ports.CheckoutPatch) error {
	if err := patch.Next.Validate(); err != nil {
		return err
	}

	next := fromDomain(patch.Next)
	result := r.scoped(ctx, patch.Scope).Updates(map[string]any{
		"gateway_transaction_id": next.GatewayTransactionID,
		"gateway_code":           next.GatewayCode,
		"checkout_session":       next.CheckoutSession,
		"payment_state":          next.PaymentState,
		"flag_status_order":      next.FlagStatusOrder,
		"gateway_error_code":     next.GatewayErrorCode,
	})
	if err := found(result, patch.Scope); err != nil {
		return err
	}
	if err := r.appendLog(ctx, patch.Scope, patch.Log); err != nil {
		return err
	}

	r.track(patch.Next)
	return nil
}

// SetTrackingInformation stores the carrier tracking document.
func (r *GormOrderRepository) SetTrackingInformation(ctx context.Context, scope kernel.Scope, raw json.RawMessage) error {
	result := r.scoped(ctx, scope).Update("tracking_information", toJSON(raw))
	return found(result, scope)
}

func (r *GormOrderRepository) scoped(ctx context.Context, scope kernel.Scope) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND company_id = ?", scope.OrderID, scope.CompanyID)
}

func (r *GormOrderRepository) staleOrMissing(ctx context.Context, scope kernel.Scope) error {
	var count int64
	if err := r.scoped(ctx, scope).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("order", scope.OrderID)
	}
	return ports.ErrStaleWrite
}

func (r *GormOrderRepository) appendLog(ctx context.Context, scope kernel.Scope, entries []order.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	dtos := fromLogEntries(scope, entries)
	if err := r.db.WithContext(ctx).Create(&dtos).Error; err != nil {
		return fmt.Errorf("append state log of order %d: %w", scope.OrderID, err)
	}
	return nil
}

func (r *GormOrderRepository) track(o *order.Order) {
	if r.tracker != nil {
		r.tracker.TrackAggregate(fmt.Sprintf("order:%d", o.ID()), o)
	}
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

func found(result *gorm.DB, scope kernel.Scope) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", scope.OrderID)
	}
	return nil
}
