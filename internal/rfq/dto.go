package rfq

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// RFQDTO is the API shape of a request for quotation. Status is the
// effective status: stored open RFQs past their expiry surface as expired.
type RFQDTO struct {
	ID                 uuid.UUID       `json:"id"`
	BuyerID            uuid.UUID       `json:"buyer_id"`
	BuyerName          string          `json:"buyer_name,omitempty"`
	ProductRequirement string          `json:"product_requirement"`
	Description        string          `json:"description,omitempty"`
	Quantity           int             `json:"quantity"`
	DeliveryCountry    string          `json:"delivery_country"`
	ExpiresAt          time.Time       `json:"expires_at"`
	Status             enums.RFQStatus `json:"status"`
	ResponseCount      int             `json:"response_count"`
	HasResponded       bool            `json:"has_responded,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ResponseDTO is the API shape of a seller quotation on an RFQ.
type ResponseDTO struct {
	ID                    uuid.UUID        `json:"id"`
	RFQID                 uuid.UUID        `json:"rfq_id"`
	SellerID              uuid.UUID        `json:"seller_id"`
	SellerBusinessName    string           `json:"seller_business_name,omitempty"`
	SellerMode            enums.SellerMode `json:"seller_mode,omitempty"`
	OfferedPrice          decimal.Decimal  `json:"offered_price"`
	Currency              string           `json:"currency"`
	EstimatedDeliveryDays int              `json:"estimated_delivery_days"`
	Message               string           `json:"message,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
}

// effectiveStatus folds expiry into the stored status. Closed wins over
// expiry; an open RFQ past its deadline reads as expired.
func effectiveStatus(stored enums.RFQStatus, expiresAt, now time.Time) enums.RFQStatus {
	if stored == enums.RFQStatusOpen && now.After(expiresAt) {
		return enums.RFQStatusExpired
	}
	return stored
}

func (r *rfqRecord) toDTO(now time.Time) RFQDTO {
	return RFQDTO{
		ID:                 r.ID,
		BuyerID:            r.BuyerID,
		BuyerName:          r.BuyerName,
		ProductRequirement: r.ProductRequirement,
		Description:        r.Description,
		Quantity:           r.Quantity,
		DeliveryCountry:    r.DeliveryCountry,
		ExpiresAt:          r.ExpiresAt,
		Status:             effectiveStatus(r.Status, r.ExpiresAt, now),
		ResponseCount:      r.ResponseCount,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func (r *responseRecord) toDTO() ResponseDTO {
	return ResponseDTO{
		ID:                    r.ID,
		RFQID:                 r.RFQID,
		SellerID:              r.SellerID,
		SellerBusinessName:    r.SellerBusinessName,
		SellerMode:            r.SellerMode,
		OfferedPrice:          r.OfferedPrice,
		Currency:              r.Currency,
		EstimatedDeliveryDays: r.EstimatedDeliveryDays,
		Message:               r.Message,
		CreatedAt:             r.CreatedAt,
	}
}
