package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RFQResponse is one seller's quotation on an RFQ. A seller may quote each
// RFQ at most once; the composite unique index backs that invariant.
type RFQResponse struct {
	ID                    uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	RFQID                 uuid.UUID       `gorm:"column:rfq_id;type:uuid;not null;uniqueIndex:idx_rfq_responses_rfq_seller"`
	SellerID              uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;uniqueIndex:idx_rfq_responses_rfq_seller"`
	OfferedPrice          decimal.Decimal `gorm:"column:offered_price;type:numeric(12,2);not null"`
	Currency              string          `gorm:"column:currency;not null;default:'USD'"`
	EstimatedDeliveryDays int             `gorm:"column:estimated_delivery_days;not null;default:0"`
	Message               string          `gorm:"column:message;not null;default:''"`
	CreatedAt             time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
