package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// ProductDTO is the full product shape returned to owners and detail reads.
type ProductDTO struct {
	ID               uuid.UUID         `json:"id"`
	SellerID         uuid.UUID         `json:"seller_id"`
	Name             string            `json:"name"`
	Description      string            `json:"description,omitempty"`
	Category         string            `json:"category"`
	Price            decimal.Decimal   `json:"price"`
	Currency         string            `json:"currency"`
	MinQuantity      int               `json:"min_quantity"`
	DeclaredStock    int               `json:"declared_stock"`
	ReservedStock    int               `json:"reserved_stock"`
	RemainingStock   int               `json:"remaining_stock"`
	StockStatus      enums.StockStatus `json:"stock_status"`
	Active           bool              `json:"active"`
	SellingCountries []string          `json:"selling_countries"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// ProductSummary is the listing row shape for catalog browsing.
type ProductSummary struct {
	ID               uuid.UUID         `json:"id"`
	SellerID         uuid.UUID         `json:"seller_id"`
	Name             string            `json:"name"`
	Category         string            `json:"category"`
	Price            decimal.Decimal   `json:"price"`
	Currency         string            `json:"currency"`
	MinQuantity      int               `json:"min_quantity"`
	StockStatus      enums.StockStatus `json:"stock_status"`
	Active           bool              `json:"active"`
	SellingCountries []string          `json:"selling_countries"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// NewProductDTO maps the model plus its stock row into the API shape.
func NewProductDTO(product *models.Product, threshold int) *ProductDTO {
	if product == nil {
		return nil
	}

	declared, reserved := 0, 0
	if product.Stock != nil {
		declared = product.Stock.DeclaredQty
		reserved = product.Stock.ReservedQty
	}
	remaining := declared - reserved

	return &ProductDTO{
		ID:               product.ID,
		SellerID:         product.SellerID,
		Name:             product.Name,
		Description:      product.Description,
		Category:         product.Category,
		Price:            product.Price,
		Currency:         product.Currency,
		MinQuantity:      product.MinQuantity,
		DeclaredStock:    declared,
		ReservedStock:    reserved,
		RemainingStock:   remaining,
		StockStatus:      enums.StockStatusFor(remaining, threshold),
		Active:           product.IsActive,
		SellingCountries: append([]string(nil), product.SellingCountries...),
		CreatedAt:        product.CreatedAt,
		UpdatedAt:        product.UpdatedAt,
	}
}

func (r productSummaryRecord) toSummary(threshold int) ProductSummary {
	remaining := r.DeclaredQty - r.ReservedQty
	return ProductSummary{
		ID:               r.ID,
		SellerID:         r.SellerID,
		Name:             r.Name,
		Category:         r.Category,
		Price:            r.Price,
		Currency:         r.Currency,
		MinQuantity:      r.MinQuantity,
		StockStatus:      enums.StockStatusFor(remaining, threshold),
		Active:           r.IsActive,
		SellingCountries: append([]string(nil), r.SellingCountries...),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}
