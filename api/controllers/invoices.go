package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelinkhq/tradelink-backend/api/middleware"
	"github.com/tradelinkhq/tradelink-backend/api/responses"
	"github.com/tradelinkhq/tradelink-backend/api/validators"
	"github.com/tradelinkhq/tradelink-backend/internal/invoices"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

// GenerateInvoice drafts an invoice from a negotiated inquiry.
func GenerateInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		var payload generateInvoiceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Generate(r.Context(), middleware.UserIDFromContext(r.Context()), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, invoice)
	}
}

type generateInvoiceRequest struct {
	InquiryID       uuid.UUID        `json:"inquiry_id" validate:"required"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	ShippingCost    decimal.Decimal  `json:"shipping_cost,omitempty"`
	ShippingMethod  string           `json:"shipping_method,omitempty"`
	Tax             decimal.Decimal  `json:"tax,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	DisplayCurrency string           `json:"display_currency,omitempty"`
}

func (p generateInvoiceRequest) toInput() invoices.GenerateInput {
	return invoices.GenerateInput{
		InquiryID:       p.InquiryID,
		UnitPrice:       p.UnitPrice,
		ShippingCost:    p.ShippingCost,
		ShippingMethod:  strings.TrimSpace(p.ShippingMethod),
		Tax:             p.Tax,
		Notes:           strings.TrimSpace(p.Notes),
		DisplayCurrency: strings.ToUpper(strings.TrimSpace(p.DisplayCurrency)),
	}
}

// ConfirmInvoice finalizes a draft invoice and deducts the reserved stock.
func ConfirmInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		invoiceID, err := parseIDParam(r, "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Confirm(r.Context(), middleware.UserIDFromContext(r.Context()), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, invoice)
	}
}

// CancelInvoice voids a draft invoice and releases its reservation.
func CancelInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		invoiceID, err := parseIDParam(r, "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Cancel(r.Context(), middleware.UserIDFromContext(r.Context()), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, invoice)
	}
}

// GetInvoice returns an invoice visible to its buyer or seller.
func GetInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		invoiceID, err := parseIDParam(r, "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.GetInvoice(r.Context(), middleware.UserIDFromContext(r.Context()), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, invoice)
	}
}

// ListInvoices returns the caller's invoices, buyer or seller side
// depending on their role.
func ListInvoices(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())

		var (
			items []invoices.InvoiceDTO
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

// DownloadInvoicePDF streams the rendered invoice document.
func DownloadInvoicePDF(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		invoiceID, err := parseIDParam(r, "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, err := svc.DownloadPDF(r.Context(), middleware.UserIDFromContext(r.Context()), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "invoice-"+invoiceID.String()+".pdf"))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}
