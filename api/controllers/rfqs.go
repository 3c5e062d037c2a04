package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradelinkhq/tradelink-backend/api/middleware"
	"github.com/tradelinkhq/tradelink-backend/api/responses"
	"github.com/tradelinkhq/tradelink-backend/api/validators"
	"github.com/tradelinkhq/tradelink-backend/internal/rfq"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

// CreateRFQ posts a buyer request-for-quote.
func CreateRFQ(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rfq service unavailable"))
			return
		}

		var payload createRFQRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateRFQ(r.Context(), middleware.UserIDFromContext(r.Context()), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

type createRFQRequest struct {
	ProductRequirement string    `json:"product_requirement" validate:"required"`
	Description        string    `json:"description,omitempty"`
	Quantity           int       `json:"quantity" validate:"required,min=1"`
	DeliveryCountry    string    `json:"delivery_country" validate:"required"`
	ExpiresAt          time.Time `json:"expires_at" validate:"required"`
}

func (p createRFQRequest) toInput() rfq.CreateRFQInput {
	return rfq.CreateRFQInput{
		ProductRequirement: strings.TrimSpace(p.ProductRequirement),
		Description:        strings.TrimSpace(p.Description),
		Quantity:           p.Quantity,
		DeliveryCountry:    strings.ToUpper(strings.TrimSpace(p.DeliveryCountry)),
		ExpiresAt:          p.ExpiresAt,
	}
}

// UpdateRFQ edits an RFQ while it is still quotable and untouched.
func UpdateRFQ(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rfq service unavailable"))
			return
		}

		rfqID, err := parseIDParam(r, "rfqID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateRFQRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateRFQ(r.Context(), middleware.UserIDFromContext(r.Context()), rfqID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

type updateRFQRequest struct {
	ProductRequirement *string    `json:"product_requirement,omitempty"`
	Description        *string    `json:"description,omitempty"`
	Quantity           *int       `json:"quantity,omitempty" validate:"omitempty,min=1"`
	DeliveryCountry    *string    `json:"delivery_country,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
}

func (p updateRFQRequest) toInput() rfq.UpdateRFQInput {
	input := rfq.UpdateRFQInput{
		ProductRequirement: p.ProductRequirement,
		Description:        p.Description,
		Quantity:           p.Quantity,
		ExpiresAt:          p.ExpiresAt,
	}
	if p.DeliveryCountry != nil {
		country := strings.ToUpper(strings.TrimSpace(*p.DeliveryCountry))
		input.DeliveryCountry = &country
	}
	return input
}

// DeleteRFQ removes an unquoted RFQ.
func DeleteRFQ(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rfq service unavailable"))
			return
		}

		rfqID, err := parseIDParam(r, "rfqID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteRFQ(r.Context(), middleware.UserIDFromContext(r.Context()), rfqID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// CloseRFQ closes an RFQ ahead of its expiry.
func CloseRFQ(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rfq service unavailable"))
			return
		}

		rfqID, err := parseIDParam(r, "rfqID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		closed, err := svc.CloseRFQ(r.Context(), middleware.UserIDFromContext(r.Context()), rfqID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, closed)
	}
}

// GetRFQ returns a single RFQ with its effective status.
func GetRFQ(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rfq service unavailable"))
			return
		}

		rfqID, err := parseIDParam(r, "rfqID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		found, err := svc.GetRFQ(r.Context(), rfqID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, found)
	}
}

// ListBuyerRFQs returns the authenticated buyer's own RFQs.
func ListBuyerRFQs(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rfq service unavailable"))
			return
		}

		items, err := svc.ListForBuyer(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// ListAvailableRFQs returns open RFQs a seller may quote, marking the ones
// they already responded to.
func ListAvailableRFQs(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rfq service unavailable"))
			return
		}

		items, err := svc.ListAvailable(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// RespondToRFQ records a seller quotation, one per seller per RFQ.
func RespondToRFQ(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rfq service unavailable"))
			return
		}

		rfqID, err := parseIDParam(r, "rfqID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload respondRFQRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.RespondToRFQ(r.Context(), middleware.UserIDFromContext(r.Context()), rfqID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

type respondRFQRequest struct {
	OfferedPrice          decimal.Decimal `json:"offered_price" validate:"required"`
	Currency              string          `json:"currency,omitempty"`
	EstimatedDeliveryDays int             `json:"estimated_delivery_days,omitempty" validate:"omitempty,min=1"`
	Message               string          `json:"message,omitempty"`
}

func (p respondRFQRequest) toInput() rfq.RespondInput {
	return rfq.RespondInput{
		OfferedPrice:          p.OfferedPrice,
		Currency:              strings.ToUpper(strings.TrimSpace(p.Currency)),
		EstimatedDeliveryDays: p.EstimatedDeliveryDays,
		Message:               strings.TrimSpace(p.Message),
	}
}

// ListRFQResponses returns the quotations for a buyer's RFQ, advanced
// sellers first.
func ListRFQResponses(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rfq service unavailable"))
			return
		}

		rfqID, err := parseIDParam(r, "rfqID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListResponses(r.Context(), middleware.UserIDFromContext(r.Context()), rfqID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}
