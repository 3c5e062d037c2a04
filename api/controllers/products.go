package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tradelinkhq/tradelink-backend/api/middleware"
	"github.com/tradelinkhq/tradelink-backend/api/responses"
	"github.com/tradelinkhq/tradelink-backend/api/validators"
	"github.com/tradelinkhq/tradelink-backend/internal/catalog"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

// CreateProduct handles product creation for sellers.
func CreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sellerID := middleware.UserIDFromContext(r.Context())

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), sellerID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type createProductRequest struct {
	Name             string          `json:"name" validate:"required"`
	Description      string          `json:"description,omitempty"`
	Category         string          `json:"category" validate:"required"`
	Price            decimal.Decimal `json:"price" validate:"required"`
	Currency         string          `json:"currency,omitempty"`
	MinQuantity      int             `json:"min_quantity" validate:"required,min=1"`
	DeclaredStock    int             `json:"declared_stock" validate:"min=0"`
	SellingCountries []string        `json:"selling_countries" validate:"required,min=1,dive,required"`
	Active           *bool           `json:"active,omitempty"`
}

func (p createProductRequest) toInput() catalog.CreateProductInput {
	active := true
	if p.Active != nil {
		active = *p.Active
	}
	return catalog.CreateProductInput{
		Name:             strings.TrimSpace(p.Name),
		Description:      strings.TrimSpace(p.Description),
		Category:         strings.TrimSpace(p.Category),
		Price:            p.Price,
		Currency:         strings.ToUpper(strings.TrimSpace(p.Currency)),
		MinQuantity:      p.MinQuantity,
		DeclaredStock:    p.DeclaredStock,
		SellingCountries: p.SellingCountries,
		Active:           active,
	}
}

// UpdateProduct applies partial edits to a seller's product.
func UpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sellerID := middleware.UserIDFromContext(r.Context())
		productID, err := parseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), sellerID, productID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

type updateProductRequest struct {
	Name             *string          `json:"name,omitempty"`
	Description      *string          `json:"description,omitempty"`
	Category         *string          `json:"category,omitempty"`
	Price            *decimal.Decimal `json:"price,omitempty"`
	Currency         *string          `json:"currency,omitempty"`
	MinQuantity      *int             `json:"min_quantity,omitempty" validate:"omitempty,min=1"`
	DeclaredStock    *int             `json:"declared_stock,omitempty" validate:"omitempty,min=0"`
	SellingCountries *[]string        `json:"selling_countries,omitempty" validate:"omitempty,min=1"`
}

func (p updateProductRequest) toInput() catalog.UpdateProductInput {
	return catalog.UpdateProductInput{
		Name:             p.Name,
		Description:      p.Description,
		Category:         p.Category,
		Price:            p.Price,
		Currency:         p.Currency,
		MinQuantity:      p.MinQuantity,
		DeclaredStock:    p.DeclaredStock,
		SellingCountries: p.SellingCountries,
	}
}

// DeleteProduct removes a seller's product listing.
func DeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sellerID := middleware.UserIDFromContext(r.Context())
		productID, err := parseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), sellerID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// SetProductActive toggles a listing's visibility, subject to tier quota.
func SetProductActive(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sellerID := middleware.UserIDFromContext(r.Context())
		productID, err := parseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload struct {
			Active *bool `json:"active" validate:"required"`
		}
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.SetActive(r.Context(), sellerID, productID, *payload.Active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// GetProduct returns a single product by ID.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := parseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ListSellerProducts returns the authenticated seller's own listings,
// active or not.
func ListSellerProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sellerID := middleware.UserIDFromContext(r.Context())
		items, err := svc.ListSellerProducts(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// ListProducts serves the public marketplace listing with cursor pagination
// and optional category, country, text and price filters.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := parseProductFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), catalog.ListProductsInput{
			Pagination: params,
			Filters:    filters,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func parseProductFilters(r *http.Request) (catalog.ProductListFilters, error) {
	q := r.URL.Query()
	filters := catalog.ProductListFilters{
		Category: strings.TrimSpace(q.Get("category")),
		Country:  strings.ToUpper(strings.TrimSpace(q.Get("country"))),
		Query:    strings.TrimSpace(q.Get("q")),
	}
	var err error
	if filters.PriceMin, err = parseDecimalParam(q.Get("price_min"), "price_min"); err != nil {
		return catalog.ProductListFilters{}, err
	}
	if filters.PriceMax, err = parseDecimalParam(q.Get("price_max"), "price_max"); err != nil {
		return catalog.ProductListFilters{}, err
	}
	return filters, nil
}

func parseDecimalParam(raw, name string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter "+name+" must be a decimal")
	}
	return &value, nil
}
