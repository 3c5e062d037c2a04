package orders

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/catalog"
	"github.com/tradelinkhq/tradelink-backend/internal/inquiries"
	"github.com/tradelinkhq/tradelink-backend/pkg/db"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.SellerProfile{},
		&models.Product{},
		&models.StockItem{},
		&models.Inquiry{},
		&models.Order{},
		&models.Invoice{},
		&models.NumberSequence{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(NewRepository(conn), catalog.NewRepository(conn), inquiries.NewRepository(conn), db.NewWithConn(conn), Config{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func mustCreateUser(t *testing.T, conn *gorm.DB, role enums.Role) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		Email:    fmt.Sprintf("tl_test_%s@example.com", uuid.NewString()),
		FullName: "Order Tester",
		Role:     role,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if role == enums.RoleSeller {
		profile := &models.SellerProfile{
			ID:           uuid.New(),
			UserID:       user.ID,
			BusinessName: "Order Trading Co",
			SellerMode:   enums.SellerModeBasic,
		}
		if err := conn.Create(profile).Error; err != nil {
			t.Fatalf("create seller profile: %v", err)
		}
	}
	return user
}

func mustCreateProduct(t *testing.T, conn *gorm.DB, sellerID uuid.UUID, declared int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:               uuid.New(),
		SellerID:         sellerID,
		Name:             "Copper Wire Coils",
		Category:         "industrial",
		Price:            decimal.NewFromInt(50),
		Currency:         "USD",
		MinQuantity:      10,
		SellingCountries: pq.StringArray{"US"},
		IsActive:         true,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	if err := conn.Create(&models.StockItem{ProductID: product.ID, DeclaredQty: declared}).Error; err != nil {
		t.Fatalf("create stock: %v", err)
	}
	return product
}

// mustCreateInquiry inserts a replied inquiry with its reservation in place,
// the state an inquiry is in right before the seller converts it.
func mustCreateInquiry(t *testing.T, conn *gorm.DB, product *models.Product, buyerID uuid.UUID, qty int) *models.Inquiry {
	t.Helper()
	inquiry := &models.Inquiry{
		ID:           uuid.New(),
		ProductID:    product.ID,
		BuyerID:      buyerID,
		SellerID:     product.SellerID,
		RequestedQty: qty,
		Status:       enums.InquiryStatusReplied,
	}
	if err := conn.Create(inquiry).Error; err != nil {
		t.Fatalf("create inquiry: %v", err)
	}
	err := conn.Model(&models.StockItem{}).
		Where("product_id = ?", product.ID).
		Update("reserved_qty", gorm.Expr("reserved_qty + ?", qty)).Error
	if err != nil {
		t.Fatalf("reserve stock: %v", err)
	}
	return inquiry
}

func loadStock(t *testing.T, conn *gorm.DB, productID uuid.UUID) models.StockItem {
	t.Helper()
	var stock models.StockItem
	if err := conn.First(&stock, "product_id = ?", productID).Error; err != nil {
		t.Fatalf("load stock: %v", err)
	}
	return stock
}

func TestCreateDirectOrderReservesStock(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	product := mustCreateProduct(t, conn, seller.ID, 100)

	dto, err := svc.CreateDirectOrder(ctx, buyer.ID, CreateDirectOrderInput{
		ProductID:    product.ID,
		Quantity:     20,
		ShippingCost: decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if dto.Status != enums.OrderStatusCreated {
		t.Fatalf("expected created status, got %s", dto.Status)
	}
	if !strings.HasPrefix(dto.OrderNumber, "ORD-") {
		t.Fatalf("unexpected order number %q", dto.OrderNumber)
	}
	// 20 x 50 + 100 shipping.
	if !dto.TotalAmount.Equal(decimal.NewFromInt(1100)) {
		t.Fatalf("expected total 1100, got %s", dto.TotalAmount)
	}
	if got := loadStock(t, conn, product.ID).ReservedQty; got != 20 {
		t.Fatalf("expected reserved 20, got %d", got)
	}
}

func TestCreateDirectOrderBelowMOQ(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	product := mustCreateProduct(t, conn, seller.ID, 100)

	_, err := svc.CreateDirectOrder(context.Background(), buyer.ID, CreateDirectOrderInput{ProductID: product.ID, Quantity: 5})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeMinQuantity {
		t.Fatalf("expected min quantity error, got %v", err)
	}
}

func TestCreateFromInquiryConsumesReservation(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	product := mustCreateProduct(t, conn, seller.ID, 100)
	inquiry := mustCreateInquiry(t, conn, product, buyer.ID, 30)

	dto, err := svc.CreateFromInquiry(ctx, seller.ID, CreateFromInquiryInput{InquiryID: inquiry.ID})
	if err != nil {
		t.Fatalf("create from inquiry: %v", err)
	}
	if dto.InquiryID == nil || *dto.InquiryID != inquiry.ID {
		t.Fatal("expected order linked to inquiry")
	}
	if dto.FinalQuantity != 30 {
		t.Fatalf("expected quantity 30, got %d", dto.FinalQuantity)
	}

	// The inquiry's reservation carries over; nothing extra is reserved.
	stock := loadStock(t, conn, product.ID)
	if stock.ReservedQty != 30 || stock.DeclaredQty != 100 {
		t.Fatalf("expected reservation unchanged, got %+v", stock)
	}

	var converted models.Inquiry
	if err := conn.First(&converted, "id = ?", inquiry.ID).Error; err != nil {
		t.Fatalf("load inquiry: %v", err)
	}
	if converted.Status != enums.InquiryStatusConverted {
		t.Fatalf("expected converted inquiry, got %s", converted.Status)
	}

	// A converted inquiry cannot be converted again.
	_, err = svc.CreateFromInquiry(ctx, seller.ID, CreateFromInquiryInput{InquiryID: inquiry.ID})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestConfirmDraftsInvoice(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	product := mustCreateProduct(t, conn, seller.ID, 100)

	dto, err := svc.CreateDirectOrder(ctx, buyer.ID, CreateDirectOrderInput{ProductID: product.ID, Quantity: 20})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	confirmed, err := svc.Transition(ctx, seller.ID, dto.ID, enums.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("confirm order: %v", err)
	}
	if confirmed.Status != enums.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", confirmed.Status)
	}

	var invoice models.Invoice
	if err := conn.First(&invoice, "order_id = ?", dto.ID).Error; err != nil {
		t.Fatalf("expected draft invoice for confirmed order: %v", err)
	}
	if invoice.Status != enums.InvoiceStatusDraft {
		t.Fatalf("expected draft invoice, got %s", invoice.Status)
	}
	if !strings.HasPrefix(invoice.InvoiceNumber, "INV-") {
		t.Fatalf("unexpected invoice number %q", invoice.InvoiceNumber)
	}
	if !invoice.TotalAmount.Equal(confirmed.TotalAmount) {
		t.Fatalf("expected invoice total %s, got %s", confirmed.TotalAmount, invoice.TotalAmount)
	}
}

func TestConfirmAdoptsExistingInquiryInvoice(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	product := mustCreateProduct(t, conn, seller.ID, 100)
	inquiry := mustCreateInquiry(t, conn, product, buyer.ID, 20)

	// The seller already drafted an invoice straight from the inquiry.
	manual := &models.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-2026-000900",
		InquiryID:     &inquiry.ID,
		BuyerID:       buyer.ID,
		SellerID:      seller.ID,
		ProductID:     product.ID,
		Quantity:      20,
		UnitPrice:     decimal.NewFromInt(50),
		TotalAmount:   decimal.NewFromInt(1000),
		Status:        enums.InvoiceStatusDraft,
	}
	require.NoError(t, conn.Create(manual).Error)

	order, err := svc.CreateFromInquiry(ctx, seller.ID, CreateFromInquiryInput{InquiryID: inquiry.ID})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, seller.ID, order.ID, enums.OrderStatusConfirmed)
	require.NoError(t, err)

	// Confirmation must not mint a second live invoice for the same goods.
	var count int64
	require.NoError(t, conn.Model(&models.Invoice{}).
		Where("inquiry_id = ? AND status <> ?", inquiry.ID, enums.InvoiceStatusCancelled).
		Count(&count).Error)
	require.EqualValues(t, 1, count)

	var adopted models.Invoice
	require.NoError(t, conn.First(&adopted, "id = ?", manual.ID).Error)
	require.NotNil(t, adopted.OrderID)
	require.Equal(t, order.ID, *adopted.OrderID)
	require.Equal(t, "INV-2026-000900", adopted.InvoiceNumber)
}

func TestTransitionGuards(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	product := mustCreateProduct(t, conn, seller.ID, 100)

	dto, err := svc.CreateDirectOrder(ctx, buyer.ID, CreateDirectOrderInput{ProductID: product.ID, Quantity: 20})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	// No skipping straight to shipped.
	_, err = svc.Transition(ctx, seller.ID, dto.ID, enums.OrderStatusShipped)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	// The buyer cannot confirm.
	_, err = svc.Transition(ctx, buyer.ID, dto.ID, enums.OrderStatusConfirmed)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	// Full happy path: confirmed, shipped, then the buyer completes.
	for _, step := range []struct {
		actor  uuid.UUID
		target enums.OrderStatus
	}{
		{seller.ID, enums.OrderStatusConfirmed},
		{seller.ID, enums.OrderStatusShipped},
		{buyer.ID, enums.OrderStatusCompleted},
	} {
		if _, err := svc.Transition(ctx, step.actor, dto.ID, step.target); err != nil {
			t.Fatalf("transition to %s: %v", step.target, err)
		}
	}

	// Completed is terminal.
	_, err = svc.Transition(ctx, seller.ID, dto.ID, enums.OrderStatusCancelled)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on terminal order, got %v", err)
	}
}

func TestCancelReleasesReservation(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	product := mustCreateProduct(t, conn, seller.ID, 100)

	dto, err := svc.CreateDirectOrder(ctx, buyer.ID, CreateDirectOrderInput{ProductID: product.ID, Quantity: 20})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	cancelled, err := svc.Transition(ctx, buyer.ID, dto.ID, enums.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if cancelled.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	stock := loadStock(t, conn, product.ID)
	if stock.ReservedQty != 0 || stock.DeclaredQty != 100 {
		t.Fatalf("expected reservation released, got %+v", stock)
	}
}

func TestCancelConfirmedOrderVoidsDraftInvoice(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	product := mustCreateProduct(t, conn, seller.ID, 100)

	dto, err := svc.CreateDirectOrder(ctx, buyer.ID, CreateDirectOrderInput{ProductID: product.ID, Quantity: 20})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := svc.Transition(ctx, seller.ID, dto.ID, enums.OrderStatusConfirmed); err != nil {
		t.Fatalf("confirm order: %v", err)
	}

	if _, err := svc.Transition(ctx, seller.ID, dto.ID, enums.OrderStatusCancelled); err != nil {
		t.Fatalf("cancel order: %v", err)
	}

	var invoice models.Invoice
	if err := conn.First(&invoice, "order_id = ?", dto.ID).Error; err != nil {
		t.Fatalf("load invoice: %v", err)
	}
	if invoice.Status != enums.InvoiceStatusCancelled {
		t.Fatalf("expected voided invoice, got %s", invoice.Status)
	}
	if got := loadStock(t, conn, product.ID).ReservedQty; got != 0 {
		t.Fatalf("expected reservation released, got %d", got)
	}
}

func TestCancelAfterInvoiceConfirmationKeepsDeduction(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	product := mustCreateProduct(t, conn, seller.ID, 100)

	dto, err := svc.CreateDirectOrder(ctx, buyer.ID, CreateDirectOrderInput{ProductID: product.ID, Quantity: 20})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := svc.Transition(ctx, seller.ID, dto.ID, enums.OrderStatusConfirmed); err != nil {
		t.Fatalf("confirm order: %v", err)
	}

	// Simulate the invoice being confirmed: deduction applied, invoice final.
	if err := catalog.DeductStock(ctx, conn, product.ID, 20); err != nil {
		t.Fatalf("deduct stock: %v", err)
	}
	err = conn.Model(&models.Invoice{}).
		Where("order_id = ?", dto.ID).
		Update("status", enums.InvoiceStatusConfirmed).Error
	if err != nil {
		t.Fatalf("confirm invoice: %v", err)
	}

	if _, err := svc.Transition(ctx, seller.ID, dto.ID, enums.OrderStatusCancelled); err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	stock := loadStock(t, conn, product.ID)
	if stock.DeclaredQty != 80 || stock.ReservedQty != 0 {
		t.Fatalf("expected deduction kept, got %+v", stock)
	}
}

func TestOrderNumbersAreSequential(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	product := mustCreateProduct(t, conn, seller.ID, 1000)

	first, err := svc.CreateDirectOrder(ctx, buyer.ID, CreateDirectOrderInput{ProductID: product.ID, Quantity: 10})
	if err != nil {
		t.Fatalf("create first order: %v", err)
	}
	second, err := svc.CreateDirectOrder(ctx, buyer.ID, CreateDirectOrderInput{ProductID: product.ID, Quantity: 10})
	if err != nil {
		t.Fatalf("create second order: %v", err)
	}
	if first.OrderNumber == second.OrderNumber {
		t.Fatalf("expected distinct order numbers, got %q twice", first.OrderNumber)
	}
	if second.OrderNumber < first.OrderNumber {
		t.Fatalf("expected monotonic numbers, got %q then %q", first.OrderNumber, second.OrderNumber)
	}
}
