package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// Inquiry is a buyer-initiated negotiation against a product. An open inquiry
// holds a stock reservation of RequestedQty units until it is closed or
// converted into an order.
type Inquiry struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	ProductID      uuid.UUID            `gorm:"column:product_id;type:uuid;not null;index"`
	BuyerID        uuid.UUID            `gorm:"column:buyer_id;type:uuid;not null;index"`
	SellerID       uuid.UUID            `gorm:"column:seller_id;type:uuid;not null;index"`
	RequestedQty   int                  `gorm:"column:requested_qty;not null"`
	ShippingOption enums.ShippingOption `gorm:"column:shipping_option;not null;default:''"`
	Message        string               `gorm:"column:message;not null;default:''"`
	ReplyMessage   string               `gorm:"column:reply_message;not null;default:''"`
	Status         enums.InquiryStatus  `gorm:"column:status;not null;default:'new'"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
