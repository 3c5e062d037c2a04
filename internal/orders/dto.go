package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// OrderDTO is the API shape of an order.
type OrderDTO struct {
	ID                 uuid.UUID         `json:"id"`
	OrderNumber        string            `json:"order_number"`
	BuyerID            uuid.UUID         `json:"buyer_id"`
	BuyerName          string            `json:"buyer_name,omitempty"`
	SellerID           uuid.UUID         `json:"seller_id"`
	SellerBusinessName string            `json:"seller_business_name,omitempty"`
	ProductID          uuid.UUID         `json:"product_id"`
	ProductName        string            `json:"product_name,omitempty"`
	InquiryID          *uuid.UUID        `json:"inquiry_id,omitempty"`
	FinalQuantity      int               `json:"final_quantity"`
	FinalPrice         decimal.Decimal   `json:"final_price"`
	Currency           string            `json:"currency"`
	ShippingTerms      string            `json:"shipping_terms,omitempty"`
	ShippingCost       decimal.Decimal   `json:"shipping_cost"`
	TotalAmount        decimal.Decimal   `json:"total_amount"`
	Status             enums.OrderStatus `json:"status"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func (r *orderRecord) toDTO() OrderDTO {
	return OrderDTO{
		ID:                 r.ID,
		OrderNumber:        r.OrderNumber,
		BuyerID:            r.BuyerID,
		BuyerName:          r.BuyerName,
		SellerID:           r.SellerID,
		SellerBusinessName: r.SellerBusinessName,
		ProductID:          r.ProductID,
		ProductName:        r.ProductName,
		InquiryID:          r.InquiryID,
		FinalQuantity:      r.FinalQuantity,
		FinalPrice:         r.FinalPrice,
		Currency:           r.Currency,
		ShippingTerms:      r.ShippingTerms,
		ShippingCost:       r.ShippingCost,
		TotalAmount:        r.TotalAmount,
		Status:             r.Status,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}
