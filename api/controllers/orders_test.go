package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/internal/orders"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

func TestTransitionOrder(t *testing.T) {
	logg := testLogger()
	sellerID := uuid.New()
	orderID := uuid.New()

	makeRequest := func(body string) (*httptest.ResponseRecorder, *stubOrderService) {
		ctx := withRouteParam(sellerContext(sellerID), "orderID", orderID.String())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/transition", strings.NewReader(body)).WithContext(ctx)
		stub := &stubOrderService{}
		rec := httptest.NewRecorder()
		TransitionOrder(stub, logg).ServeHTTP(rec, req)
		return rec, stub
	}

	t.Run("unknown status", func(t *testing.T) {
		rec, _ := makeRequest(`{"status": "teleported"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
		}
	})

	t.Run("missing status", func(t *testing.T) {
		rec, _ := makeRequest(`{}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for missing status, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		rec, stub := makeRequest(`{"status": "confirmed"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 on success, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.transitioned != enums.OrderStatusConfirmed {
			t.Fatalf("expected transition to confirmed, got %q", stub.transitioned)
		}
	})
}

type stubOrderService struct {
	transitioned enums.OrderStatus
}

func (s *stubOrderService) CreateDirectOrder(ctx context.Context, buyerID uuid.UUID, input orders.CreateDirectOrderInput) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (s *stubOrderService) CreateFromInquiry(ctx context.Context, sellerID uuid.UUID, input orders.CreateFromInquiryInput) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (s *stubOrderService) Transition(ctx context.Context, actorID, orderID uuid.UUID, target enums.OrderStatus) (*orders.OrderDTO, error) {
	s.transitioned = target
	return &orders.OrderDTO{ID: orderID, Status: target}, nil
}

func (s *stubOrderService) GetOrder(ctx context.Context, actorID, orderID uuid.UUID) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (s *stubOrderService) ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]orders.OrderDTO, error) {
	panic("unimplemented")
}

func (s *stubOrderService) ListForSeller(ctx context.Context, sellerID uuid.UUID) ([]orders.OrderDTO, error) {
	panic("unimplemented")
}
