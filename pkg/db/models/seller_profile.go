package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	"github.com/tradelinkhq/tradelink-backend/pkg/types"
)

// SellerProfile carries the business attributes of a seller account.
type SellerProfile struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID       uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	BusinessName string           `gorm:"column:business_name;not null"`
	GSTNumber    string           `gorm:"column:gst_number;not null;default:''"`
	BusinessType string           `gorm:"column:business_type;not null;default:''"`
	SellerMode   enums.SellerMode `gorm:"column:seller_mode;not null;default:'basic'"`
	IsVerified   bool             `gorm:"column:is_verified;not null;default:false"`
	Address      types.Address    `gorm:"embedded"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
