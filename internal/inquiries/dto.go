package inquiries

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// InquiryDTO is the API shape for one inquiry.
type InquiryDTO struct {
	ID                 uuid.UUID            `json:"id"`
	ProductID          uuid.UUID            `json:"product_id"`
	ProductName        string               `json:"product_name"`
	BuyerID            uuid.UUID            `json:"buyer_id"`
	BuyerName          string               `json:"buyer_name"`
	SellerID           uuid.UUID            `json:"seller_id"`
	SellerBusinessName string               `json:"seller_business_name"`
	RequestedQuantity  int                  `json:"requested_quantity"`
	ShippingOption     enums.ShippingOption `json:"shipping_option,omitempty"`
	Message            string               `json:"message,omitempty"`
	ReplyMessage       string               `json:"reply_message,omitempty"`
	Status             enums.InquiryStatus  `json:"status"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

func (r inquiryRecord) toDTO() InquiryDTO {
	return InquiryDTO{
		ID:                 r.ID,
		ProductID:          r.ProductID,
		ProductName:        r.ProductName,
		BuyerID:            r.BuyerID,
		BuyerName:          r.BuyerName,
		SellerID:           r.SellerID,
		SellerBusinessName: r.SellerBusinessName,
		RequestedQuantity:  r.RequestedQty,
		ShippingOption:     r.ShippingOption,
		Message:            r.Message,
		ReplyMessage:       r.ReplyMessage,
		Status:             r.Status,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}
