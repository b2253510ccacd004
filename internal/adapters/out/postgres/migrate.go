package postgres

import (
	"context"
	"fmt"

	"fulfillment/internal/adapters/out/postgres/driverrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/orderstaterepo"
	"fulfillment/internal/adapters/out/postgres/transactionrepo"

	"gorm.io/gorm"
)

// Models lists every table of the ledger in creation order.
func Models() []any {
	return []any{
		&orderstaterepo.OrderStateDTO{},
		&driverrepo.DriverDTO{},
		&orderrepo.OrderDTO{},
		&orderrepo.StateLogDTO{},
		&transactionrepo.TransactionDTO{},
	}
}

// Migrate creates or updates the schema and seeds the order states catalog.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := orderstaterepo.Seed(ctx, db); err != nil {
		return fmt.Errorf("seed order states: %w", err)
	}
	return nil
}
