package invoices

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// InvoiceDTO is the API shape of an invoice.
type InvoiceDTO struct {
	ID                 uuid.UUID           `json:"id"`
	InvoiceNumber      string              `json:"invoice_number"`
	OrderID            *uuid.UUID          `json:"order_id,omitempty"`
	InquiryID          *uuid.UUID          `json:"inquiry_id,omitempty"`
	BuyerID            uuid.UUID           `json:"buyer_id"`
	BuyerName          string              `json:"buyer_name,omitempty"`
	SellerID           uuid.UUID           `json:"seller_id"`
	SellerBusinessName string              `json:"seller_business_name,omitempty"`
	ProductID          uuid.UUID           `json:"product_id"`
	ProductName        string              `json:"product_name,omitempty"`
	Quantity           int                 `json:"quantity"`
	UnitPrice          decimal.Decimal     `json:"unit_price"`
	ShippingCost       decimal.Decimal     `json:"shipping_cost"`
	ShippingMethod     string              `json:"shipping_method,omitempty"`
	Tax                decimal.Decimal     `json:"tax"`
	TotalAmount        decimal.Decimal     `json:"total_amount"`
	Currency           string              `json:"currency"`
	ConvertedAmount    *decimal.Decimal    `json:"converted_amount,omitempty"`
	ConvertedCurrency  *string             `json:"converted_currency,omitempty"`
	Notes              string              `json:"notes,omitempty"`
	Status             enums.InvoiceStatus `json:"status"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func (r *invoiceRecord) toDTO() InvoiceDTO {
	dto := InvoiceDTO{
		ID:                 r.ID,
		InvoiceNumber:      r.InvoiceNumber,
		OrderID:            r.OrderID,
		InquiryID:          r.InquiryID,
		BuyerID:            r.BuyerID,
		BuyerName:          r.BuyerName,
		SellerID:           r.SellerID,
		SellerBusinessName: r.SellerBusinessName,
		ProductID:          r.ProductID,
		ProductName:        r.ProductName,
		Quantity:           r.Quantity,
		UnitPrice:          r.UnitPrice,
		ShippingCost:       r.ShippingCost,
		ShippingMethod:     r.ShippingMethod,
		Tax:                r.Tax,
		TotalAmount:        r.TotalAmount,
		Currency:           r.Currency,
		ConvertedCurrency:  r.ConvertedCurrency,
		Notes:              r.Notes,
		Status:             r.Status,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if r.ConvertedAmount.Valid {
		amount := r.ConvertedAmount.Decimal
		dto.ConvertedAmount = &amount
	}
	return dto
}
