package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product represents the canonical seller listing.
//
// SellingCountries is a Postgres text[] in production; the gorm type is left
// as text so sqlite-backed tests can migrate the same model (pq.StringArray
// round-trips through its "{a,b}" literal either way).
type Product struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SellerID         uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;index"`
	Name             string          `gorm:"column:name;not null"`
	Description      string          `gorm:"column:description;not null;default:''"`
	Category         string          `gorm:"column:category;not null;default:''"`
	Price            decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Currency         string          `gorm:"column:currency;not null;default:'USD'"`
	MinQuantity      int             `gorm:"column:min_quantity;not null;default:1"`
	SellingCountries pq.StringArray  `gorm:"column:selling_countries;type:text;not null"`
	IsActive         bool            `gorm:"column:is_active;not null;default:true"`
	Stock            *StockItem      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
