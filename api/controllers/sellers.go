package controllers

import (
	"net/http"
	"strings"

	"github.com/tradelinkhq/tradelink-backend/api/middleware"
	"github.com/tradelinkhq/tradelink-backend/api/responses"
	"github.com/tradelinkhq/tradelink-backend/api/validators"
	"github.com/tradelinkhq/tradelink-backend/internal/sellers"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
	"github.com/tradelinkhq/tradelink-backend/pkg/types"
)

// GetSellerProfile returns the authenticated seller's business profile.
func GetSellerProfile(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seller service unavailable"))
			return
		}

		profile, err := svc.GetProfile(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

// CreateSellerProfile registers the authenticated user's business profile.
func CreateSellerProfile(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seller service unavailable"))
			return
		}

		var payload createProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.CreateProfile(r.Context(), middleware.UserIDFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, profile)
	}
}

type createProfileRequest struct {
	BusinessName string        `json:"business_name" validate:"required"`
	GSTNumber    string        `json:"gst_number,omitempty"`
	BusinessType string        `json:"business_type,omitempty"`
	SellerMode   string        `json:"seller_mode,omitempty"`
	Address      types.Address `json:"address"`
}

func (p createProfileRequest) toInput() (sellers.CreateProfileInput, error) {
	mode := enums.SellerModeBasic
	if p.SellerMode != "" {
		parsed, err := enums.ParseSellerMode(p.SellerMode)
		if err != nil {
			return sellers.CreateProfileInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid seller mode")
		}
		mode = parsed
	}
	return sellers.CreateProfileInput{
		BusinessName: strings.TrimSpace(p.BusinessName),
		GSTNumber:    strings.TrimSpace(p.GSTNumber),
		BusinessType: strings.TrimSpace(p.BusinessType),
		SellerMode:   mode,
		Address:      p.Address,
	}, nil
}

// UpdateSellerProfile applies partial edits to the seller's profile.
func UpdateSellerProfile(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seller service unavailable"))
			return
		}

		var payload updateProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.UpdateProfile(r.Context(), middleware.UserIDFromContext(r.Context()), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

type updateProfileRequest struct {
	BusinessName *string        `json:"business_name,omitempty"`
	GSTNumber    *string        `json:"gst_number,omitempty"`
	BusinessType *string        `json:"business_type,omitempty"`
	Address      *types.Address `json:"address,omitempty"`
}

func (p updateProfileRequest) toInput() sellers.UpdateProfileInput {
	return sellers.UpdateProfileInput{
		BusinessName: p.BusinessName,
		GSTNumber:    p.GSTNumber,
		BusinessType: p.BusinessType,
		Address:      p.Address,
	}
}
