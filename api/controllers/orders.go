package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelinkhq/tradelink-backend/api/middleware"
	"github.com/tradelinkhq/tradelink-backend/api/responses"
	"github.com/tradelinkhq/tradelink-backend/api/validators"
	"github.com/tradelinkhq/tradelink-backend/internal/orders"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

// CreateDirectOrder places a buyer order straight against a product.
func CreateDirectOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload createDirectOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateDirectOrder(r.Context(), middleware.UserIDFromContext(r.Context()), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

type createDirectOrderRequest struct {
	ProductID     uuid.UUID       `json:"product_id" validate:"required"`
	Quantity      int             `json:"quantity" validate:"required,min=1"`
	ShippingTerms string          `json:"shipping_terms,omitempty"`
	ShippingCost  decimal.Decimal `json:"shipping_cost,omitempty"`
}

func (p createDirectOrderRequest) toInput() orders.CreateDirectOrderInput {
	return orders.CreateDirectOrderInput{
		ProductID:     p.ProductID,
		Quantity:      p.Quantity,
		ShippingTerms: strings.TrimSpace(p.ShippingTerms),
		ShippingCost:  p.ShippingCost,
	}
}

// ConvertInquiryToOrder lets the seller turn a negotiated inquiry into an
// order, consuming the inquiry's reservation.
func ConvertInquiryToOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload convertInquiryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateFromInquiry(r.Context(), middleware.UserIDFromContext(r.Context()), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

type convertInquiryRequest struct {
	InquiryID     uuid.UUID        `json:"inquiry_id" validate:"required"`
	FinalPrice    *decimal.Decimal `json:"final_price,omitempty"`
	ShippingTerms string           `json:"shipping_terms,omitempty"`
	ShippingCost  decimal.Decimal  `json:"shipping_cost,omitempty"`
}

func (p convertInquiryRequest) toInput() orders.CreateFromInquiryInput {
	return orders.CreateFromInquiryInput{
		InquiryID:     p.InquiryID,
		FinalPrice:    p.FinalPrice,
		ShippingTerms: strings.TrimSpace(p.ShippingTerms),
		ShippingCost:  p.ShippingCost,
	}
}

// TransitionOrder advances an order through its lifecycle.
func TransitionOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := parseIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload struct {
			Status string `json:"status" validate:"required"`
		}
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		order, err := svc.Transition(r.Context(), middleware.UserIDFromContext(r.Context()), orderID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// GetOrder returns an order visible to its buyer or seller.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := parseIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), middleware.UserIDFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// ListOrders returns the caller's orders, buyer or seller side depending
// on their role.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())

		var (
			items []orders.OrderDTO
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
