package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// Order is a committed purchase, either direct or converted from an inquiry.
// InquiryID is set only on converted orders; the unique index keeps one order
// per inquiry.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber   string            `gorm:"column:order_number;not null;uniqueIndex"`
	BuyerID       uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null;index"`
	SellerID      uuid.UUID         `gorm:"column:seller_id;type:uuid;not null;index"`
	ProductID     uuid.UUID         `gorm:"column:product_id;type:uuid;not null"`
	InquiryID     *uuid.UUID        `gorm:"column:inquiry_id;type:uuid;uniqueIndex"`
	FinalQuantity int               `gorm:"column:final_quantity;not null"`
	FinalPrice    decimal.Decimal   `gorm:"column:final_price;type:numeric(12,2);not null"`
	Currency      string            `gorm:"column:currency;not null;default:'USD'"`
	ShippingTerms string            `gorm:"column:shipping_terms;not null;default:''"`
	ShippingCost  decimal.Decimal   `gorm:"column:shipping_cost;type:numeric(12,2);not null;default:0"`
	TotalAmount   decimal.Decimal   `gorm:"column:total_amount;type:numeric(14,2);not null"`
	Status        enums.OrderStatus `gorm:"column:status;not null;default:'created'"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
