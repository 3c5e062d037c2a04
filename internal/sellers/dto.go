package sellers

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	"github.com/tradelinkhq/tradelink-backend/pkg/types"
)

// ProfileDTO exposes safe seller profile data in API responses.
type ProfileDTO struct {
	ID           uuid.UUID        `json:"id"`
	UserID       uuid.UUID        `json:"user_id"`
	BusinessName string           `json:"business_name"`
	GSTNumber    string           `json:"gst_number,omitempty"`
	BusinessType string           `json:"business_type,omitempty"`
	SellerMode   enums.SellerMode `json:"seller_mode"`
	IsVerified   bool             `json:"is_verified"`
	Address      types.Address    `json:"address"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// FromModel maps the persisted profile into a DTO.
func FromModel(m *models.SellerProfile) *ProfileDTO {
	if m == nil {
		return nil
	}
	return &ProfileDTO{
		ID:           m.ID,
		UserID:       m.UserID,
		BusinessName: m.BusinessName,
		GSTNumber:    m.GSTNumber,
		BusinessType: m.BusinessType,
		SellerMode:   m.SellerMode,
		IsVerified:   m.IsVerified,
		Address:      m.Address,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
