package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// RFQ is a buyer-posted sourcing request open to seller quotations. Expiry is
// evaluated lazily from ExpiresAt; the stored status only records explicit
// closes.
type RFQ struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	BuyerID            uuid.UUID       `gorm:"column:buyer_id;type:uuid;not null;index"`
	ProductRequirement string          `gorm:"column:product_requirement;not null"`
	Description        string          `gorm:"column:description;not null;default:''"`
	Quantity           int             `gorm:"column:quantity;not null"`
	DeliveryCountry    string          `gorm:"column:delivery_country;not null"`
	ExpiresAt          time.Time       `gorm:"column:expires_at;not null"`
	Status             enums.RFQStatus `gorm:"column:status;not null;default:'open'"`
	Responses          []RFQResponse   `gorm:"foreignKey:RFQID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
