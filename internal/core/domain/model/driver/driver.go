// Package driver models the person who runs a delivery leg. The commerce
// platform calls this person "the delivery"; orders reference it by id.
package driver

import (
	"errors"
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrDriverIsNotConstructed = errors.New("Driver must be created via NewDriver or RestoreDriver")

// Driver is the delivery person assigned to an order.
type Driver struct {
	id        int64
	companyID int64
	name      string
	phone     string
	active    bool
	guard     guard.ConstructorGuard
}

// NewDriver creates an active driver for a tenant.
func NewDriver(id, companyID int64, name, phone string) (*Driver, error) {
	return RestoreDriver(id, companyID, name, phone, true)
}

// RestoreDriver rebuilds a driver read from persistence.
func RestoreDriver(id, companyID int64, name, phone string, active bool) (*Driver, error) {
	d := &Driver{active: active, guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		d.setID(id),
		d.setCompanyID(companyID),
		d.setName(name),
	); err != nil {
		return nil, err
	}
	d.phone = strings.TrimSpace(phone)

	return d, nil
}

func (d *Driver) setID(id int64) error {
	if id <= 0 {
		return errs.NewValueIsRequiredError("deliveryId")
	}
	d.id = id
	return nil
}

func (d *Driver) setCompanyID(companyID int64) error {
	if companyID <= 0 {
		return errs.NewValueIsRequiredError("companyId")
	}
	d.companyID = companyID
	return nil
}

func (d *Driver) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	d.name = name
	return nil
}

func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

func (d *Driver) ID() int64        { return d.id }
func (d *Driver) CompanyID() int64 { return d.companyID }
func (d *Driver) Name() string     { return d.name }
func (d *Driver) Phone() string    { return d.phone }
func (d *Driver) IsActive() bool   { return d.active }

// CanServe reports whether the driver may work on orders of companyID.
func (d *Driver) CanServe(companyID int64) error {
	if !d.active {
		return errs.NewValueIsInvalidErrorWithCause("delivery", errors.New("driver is inactive"))
	}
	if d.companyID != companyID {
		return errs.NewValueIsInvalidErrorWithCause("delivery", errors.New("driver belongs to another company"))
	}
	return nil
}
