package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// Invoice is the billing document for an order or an inquiry being converted.
// Confirming an invoice is the one action that permanently deducts stock.
type Invoice struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	InvoiceNumber     string              `gorm:"column:invoice_number;not null;uniqueIndex"`
	OrderID           *uuid.UUID          `gorm:"column:order_id;type:uuid;uniqueIndex"`
	InquiryID         *uuid.UUID          `gorm:"column:inquiry_id;type:uuid"`
	BuyerID           uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null;index"`
	SellerID          uuid.UUID           `gorm:"column:seller_id;type:uuid;not null;index"`
	ProductID         uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	Quantity          int                 `gorm:"column:quantity;not null"`
	UnitPrice         decimal.Decimal     `gorm:"column:unit_price;type:numeric(12,2);not null"`
	ShippingCost      decimal.Decimal     `gorm:"column:shipping_cost;type:numeric(12,2);not null;default:0"`
	ShippingMethod    string              `gorm:"column:shipping_method;not null;default:''"`
	Tax               decimal.Decimal     `gorm:"column:tax;type:numeric(12,2);not null;default:0"`
	TotalAmount       decimal.Decimal     `gorm:"column:total_amount;type:numeric(14,2);not null"`
	Currency          string              `gorm:"column:currency;not null;default:'USD'"`
	ConvertedAmount   decimal.NullDecimal `gorm:"column:converted_amount;type:numeric(14,2)"`
	ConvertedCurrency *string             `gorm:"column:converted_currency"`
	Notes             string              `gorm:"column:notes;not null;default:''"`
	Status            enums.InvoiceStatus `gorm:"column:status;not null;default:'draft'"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
