package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/api/middleware"
	"github.com/tradelinkhq/tradelink-backend/api/responses"
	"github.com/tradelinkhq/tradelink-backend/api/validators"
	"github.com/tradelinkhq/tradelink-backend/internal/inquiries"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

// CreateInquiry opens a buyer inquiry against a product and reserves stock.
func CreateInquiry(svc inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inquiry service unavailable"))
			return
		}

		var payload createInquiryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inquiry, err := svc.CreateInquiry(r.Context(), middleware.UserIDFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, inquiry)
	}
}

type createInquiryRequest struct {
	ProductID         uuid.UUID `json:"product_id" validate:"required"`
	RequestedQuantity int       `json:"requested_quantity" validate:"required,min=1"`
	ShippingOption    string    `json:"shipping_option" validate:"required"`
	Message           string    `json:"message,omitempty"`
}

func (p createInquiryRequest) toInput() (inquiries.CreateInquiryInput, error) {
	option, err := enums.ParseShippingOption(p.ShippingOption)
	if err != nil {
		return inquiries.CreateInquiryInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping option")
	}
	return inquiries.CreateInquiryInput{
		ProductID:         p.ProductID,
		RequestedQuantity: p.RequestedQuantity,
		ShippingOption:    option,
		Message:           strings.TrimSpace(p.Message),
	}, nil
}

// UpdateInquiry edits a NEW inquiry, re-reserving stock on quantity changes.
func UpdateInquiry(svc inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inquiry service unavailable"))
			return
		}

		inquiryID, err := parseIDParam(r, "inquiryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateInquiryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inquiry, err := svc.UpdateInquiry(r.Context(), middleware.UserIDFromContext(r.Context()), inquiryID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, inquiry)
	}
}

type updateInquiryRequest struct {
	RequestedQuantity *int    `json:"requested_quantity,omitempty" validate:"omitempty,min=1"`
	ShippingOption    *string `json:"shipping_option,omitempty"`
	Message           *string `json:"message,omitempty"`
}

func (p updateInquiryRequest) toInput() (inquiries.UpdateInquiryInput, error) {
	input := inquiries.UpdateInquiryInput{
		RequestedQuantity: p.RequestedQuantity,
		Message:           p.Message,
	}
	if p.ShippingOption != nil {
		option, err := enums.ParseShippingOption(*p.ShippingOption)
		if err != nil {
			return inquiries.UpdateInquiryInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping option")
		}
		input.ShippingOption = &option
	}
	return input, nil
}

// ReplyInquiry records the seller's reply and moves the inquiry to REPLIED.
func ReplyInquiry(svc inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inquiry service unavailable"))
			return
		}

		inquiryID, err := parseIDParam(r, "inquiryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload struct {
			Message string `json:"message" validate:"required"`
		}
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inquiry, err := svc.ReplyInquiry(r.Context(), middleware.UserIDFromContext(r.Context()), inquiryID, strings.TrimSpace(payload.Message))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, inquiry)
	}
}

// CloseInquiry closes an open inquiry and releases its reservation.
func CloseInquiry(svc inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inquiry service unavailable"))
			return
		}

		inquiryID, err := parseIDParam(r, "inquiryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inquiry, err := svc.CloseInquiry(r.Context(), middleware.UserIDFromContext(r.Context()), inquiryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, inquiry)
	}
}

// GetInquiry returns an inquiry visible to its buyer or seller.
func GetInquiry(svc inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inquiry service unavailable"))
			return
		}

		inquiryID, err := parseIDParam(r, "inquiryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inquiry, err := svc.GetInquiry(r.Context(), middleware.UserIDFromContext(r.Context()), inquiryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, inquiry)
	}
}

// ListInquiries returns the caller's inquiries, buyer or seller side
// depending on their role.
func ListInquiries(svc inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inquiry service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())

		var (
			items []inquiries.InquiryDTO
			err   error
		)
		if middleware.RoleFromContext(r.Context()) == enums.RoleSeller {
			items, err = svc.ListForSeller(r.Context(), userID)
		} else {
			items, err = svc.ListForBuyer(r.Context(), userID)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}
