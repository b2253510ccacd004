// Package driverrepo persists the drivers that run delivery legs.
package driverrepo

import (
	"fulfillment/internal/core/domain/model/driver"
)

// DriverDTO is one drivers row.
type DriverDTO struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false"`
	CompanyID int64  `gorm:"not null;index"`
	Name      string `gorm:"type:varchar(255);not null"`
	Phone     string `gorm:"type:varchar(32)"`
	Active    bool   `gorm:"not null"`
}

func (DriverDTO) TableName() string {
	return "drivers"
}

func fromDomain(d *driver.Driver) DriverDTO {
	return DriverDTO{
		ID:        d.ID(),
		CompanyID: d.CompanyID(),
		Name:      d.Name(),
		Phone:     d.Phone(),
		Active:    d.IsActive(),
	}
}

func toDomain(dto DriverDTO) (*driver.Driver, error) {
	return driver.RestoreDriver(dto.ID, dto.CompanyID, dto.Name, dto.Phone, dto.Active)
}
