package orderstaterepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderStateRepository resolves status codes against the order states table.
type GormOrderStateRepository struct {
	db *gorm.DB
}

func NewGormOrderStateRepository(db *gorm.DB) *GormOrderStateRepository {
	return &GormOrderStateRepository{db: db}
}

// GetByCode returns the id of a status code.
func (r *GormOrderStateRepository) GetByCode(ctx context.Context, code order.Status) (order.StateRef, error) {
	if code == "" {
		return order.StateRef{}, errs.NewValueIsRequiredError("code")
	}

	var dto OrderStateDTO
	if err := r.db.WithContext(ctx).First(&dto, "code = ?", string(code)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return order.StateRef{}, errs.NewObjectNotFoundError("orderState", string(code))
		}
		return order.StateRef{}, err
	}

	return toDomain(dto), nil
}

// Seed inserts the catalog rows that are missing.
func Seed(ctx context.Context, db *gorm.DB) error {
	rows := Catalog()
	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
