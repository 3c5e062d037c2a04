package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/api/middleware"
	"github.com/tradelinkhq/tradelink-backend/internal/catalog"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func sellerContext(sellerID uuid.UUID) context.Context {
	return middleware.WithUser(context.Background(), sellerID, enums.RoleSeller)
}

func withRouteParam(ctx context.Context, name, value string) context.Context {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(name, value)
	return context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
}

func TestDeleteProduct(t *testing.T) {
	logg := testLogger()
	sellerID := uuid.New()
	productID := uuid.New()

	t.Run("invalid product id", func(t *testing.T) {
		ctx := withRouteParam(sellerContext(sellerID), "productID", "not-a-uuid")
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/not-a-uuid", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		DeleteProduct(&stubCatalogService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
		}
	})

	t.Run("service unavailable", func(t *testing.T) {
		ctx := withRouteParam(sellerContext(sellerID), "productID", productID.String())
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+productID.String(), nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		DeleteProduct(nil, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500 when service missing, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctx := withRouteParam(sellerContext(sellerID), "productID", productID.String())
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+productID.String(), nil).WithContext(ctx)

		stub := &stubCatalogService{}
		rec := httptest.NewRecorder()
		DeleteProduct(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 on success, got %d", rec.Code)
		}
		if !stub.deleteCalled {
			t.Fatalf("expected DeleteProduct to be invoked")
		}
	})
}

func TestCreateProductValidation(t *testing.T) {
	logg := testLogger()
	sellerID := uuid.New()

	makeRequest := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body)).WithContext(sellerContext(sellerID))
		rec := httptest.NewRecorder()
		CreateProduct(&stubCatalogService{}, logg).ServeHTTP(rec, req)
		return rec
	}

	t.Run("missing required fields", func(t *testing.T) {
		rec := makeRequest(`{"name": "Widgets"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for incomplete payload, got %d", rec.Code)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		rec := makeRequest(`{"name": "Widgets", "bogus": true}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		rec := makeRequest(`{
			"name": "Raw Cotton Bales",
			"category": "textiles",
			"price": "120.50",
			"min_quantity": 10,
			"declared_stock": 500,
			"selling_countries": ["IN", "DE"]
		}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 on success, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

type stubCatalogService struct {
	deleteCalled bool
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, sellerID uuid.UUID, input catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{ID: uuid.New(), SellerID: sellerID, Name: input.Name}, nil
}

func (s *stubCatalogService) UpdateProduct(ctx context.Context, sellerID, productID uuid.UUID, input catalog.UpdateProductInput) (*catalog.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubCatalogService) DeleteProduct(ctx context.Context, sellerID, productID uuid.UUID) error {
	s.deleteCalled = true
	return nil
}

func (s *stubCatalogService) SetActive(ctx context.Context, sellerID, productID uuid.UUID, active bool) (*catalog.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubCatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*catalog.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubCatalogService) ListSellerProducts(ctx context.Context, sellerID uuid.UUID) ([]catalog.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubCatalogService) ListProducts(ctx context.Context, input catalog.ListProductsInput) (*catalog.ProductListResult, error) {
	panic("unimplemented")
}

func (s *stubCatalogService) Reserve(ctx context.Context, productID uuid.UUID, qty int) error {
	panic("unimplemented")
}

func (s *stubCatalogService) Release(ctx context.Context, productID uuid.UUID, qty int) error {
	panic("unimplemented")
}
