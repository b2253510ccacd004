// Package orderstaterepo persists the order states catalog: the numeric ids
// the platform stores on orders and the status codes they stand for.
package orderstaterepo

import (
	"fulfillment/internal/core/domain/model/order"
)

// OrderStateDTO is one row of the order states catalog.
type OrderStateDTO struct {
	ID   int64  `gorm:"primaryKey"`
	Code string `gorm:"type:varchar(32);not null;uniqueIndex"`
	Name string `gorm:"type:varchar(64);not null"`
}

func (OrderStateDTO) TableName() string {
	return "order_states"
}

func toDomain(dto OrderStateDTO) order.StateRef {
	return order.StateRef{ID: dto.ID, Code: order.Status(dto.Code)}
}

// Catalog is the seed content of the order states table.
func Catalog() []OrderStateDTO {
	return []OrderStateDTO{
		{ID: 1, Code: string(order.Requested), Name: "Requested"},
		{ID: 2, Code: string(order.Confirmed), Name: "Confirmed"},
		{ID: 3, Code: string(order.Dispatched), Name: "Dispatched"},
		{ID: 4, Code: string(order.Delivered), Name: "Delivered"},
		{ID: 5, Code: string(order.Canceled), Name: "Canceled"},
	}
}
