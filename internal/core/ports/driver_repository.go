package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/driver"
)

// DriverRepository stores the people running delivery legs.
type DriverRepository interface {
	Add(ctx context.Context, d *driver.Driver) error
	Get(ctx context.Context, companyID, id int64) (*driver.Driver, error)
}
