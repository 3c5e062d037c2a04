package models

import (
	"time"

	"github.com/google/uuid"
)

// StockItem tracks declared/reserved counts per product. Remaining stock is
// always declared minus reserved and is never stored.
type StockItem struct {
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	DeclaredQty int       `gorm:"column:declared_qty;not null;default:0"`
	ReservedQty int       `gorm:"column:reserved_qty;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// RemainingQty reports the stock still open to new reservations.
func (s StockItem) RemainingQty() int {
	return s.DeclaredQty - s.ReservedQty
}
