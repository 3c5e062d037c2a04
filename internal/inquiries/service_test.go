package inquiries

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/catalog"
	"github.com/tradelinkhq/tradelink-backend/pkg/db"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:inquiries_" + uuid.NewString() + "?mode=memory&cache=shared"
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
		&models.Invoice{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(NewRepository(conn), catalog.NewRepository(conn), db.NewWithConn(conn))
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
		FullName: "Inquiry Tester",
		Role:     role,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if role == enums.RoleSeller {
		profile := &models.SellerProfile{
			ID:           uuid.New(),
			UserID:       user.ID,
			BusinessName: "Inquiry Trading Co",
			SellerMode:   enums.SellerModeBasic,
		}
		if err := conn.Create(profile).Error; err != nil {
			t.Fatalf("create seller profile: %v", err)
		}
	}
	return user
}

func mustCreateProduct(t *testing.T, conn *gorm.DB, sellerID uuid.UUID, declared, minQty int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:               uuid.New(),
		SellerID:         sellerID,
		Name:             "Steel Fasteners",
		Category:         "industrial",
		Price:            decimal.NewFromInt(50),
		Currency:         "USD",
		MinQuantity:      minQty,
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

func loadStock(t *testing.T, conn *gorm.DB, productID uuid.UUID) models.StockItem {
	t.Helper()
	var stock models.StockItem
	if err := conn.First(&stock, "product_id = ?", productID).Error; err != nil {
		t.Fatalf("load stock: %v", err)
	}
	return stock
}

func TestCreateInquiryReservesStock(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	product := mustCreateProduct(t, conn, seller.ID, 100, 10)

	dto, err := svc.CreateInquiry(ctx, buyer.ID, CreateInquiryInput{
		ProductID:         product.ID,
		RequestedQuantity: 20,
		ShippingOption:    enums.ShippingOptionSea,
		Message:           "Looking for a recurring supply.",
	})
	if err != nil {
		t.Fatalf("create inquiry: %v", err)
	}
	if dto.Status != enums.InquiryStatusNew {
		t.Fatalf("expected new status, got %s", dto.Status)
	}
	if dto.ProductName != "Steel Fasteners" {
		t.Fatalf("expected joined product name, got %q", dto.ProductName)
	}
	if dto.SellerBusinessName != "Inquiry Trading Co" {
		t.Fatalf("expected joined business name, got %q", dto.SellerBusinessName)
	}

	stock := loadStock(t, conn, product.ID)
	if stock.DeclaredQty != 100 || stock.ReservedQty != 20 {
		t.Fatalf("expected reservation of 20, got %+v", stock)
	}
}

func TestCreateInquiryBelowMOQ(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	product := mustCreateProduct(t, conn, seller.ID, 100, 10)

	_, err := svc.CreateInquiry(ctx, buyer.ID, CreateInquiryInput{ProductID: product.ID, RequestedQuantity: 5})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeMinQuantity {
		t.Fatalf("expected min quantity error, got %v", err)
	}

	stock := loadStock(t, conn, product.ID)
	if stock.ReservedQty != 0 {
		t.Fatalf("expected no reservation, got %+v", stock)
	}
}

func TestCreateInquiryInsufficientStock(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	product := mustCreateProduct(t, conn, seller.ID, 15, 10)

	_, err := svc.CreateInquiry(ctx, buyer.ID, CreateInquiryInput{ProductID: product.ID, RequestedQuantity: 20})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if got := loadStock(t, conn, product.ID).ReservedQty; got != 0 {
		t.Fatalf("expected reservation rolled back, got %d", got)
	}
}

func TestUpdateInquiryReReservesDelta(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	product := mustCreateProduct(t, conn, seller.ID, 100, 10)

	dto, err := svc.CreateInquiry(ctx, buyer.ID, CreateInquiryInput{ProductID: product.ID, RequestedQuantity: 20})
	if err != nil {
		t.Fatalf("create inquiry: %v", err)
	}

	// Increase: reserves the delta.
	updated, err := svc.UpdateInquiry(ctx, buyer.ID, dto.ID, UpdateInquiryInput{RequestedQuantity: intPtr(30)})
	if err != nil {
		t.Fatalf("update to 30: %v", err)
	}
	if updated.RequestedQuantity != 30 {
		t.Fatalf("expected quantity 30, got %d", updated.RequestedQuantity)
	}
	if got := loadStock(t, conn, product.ID).ReservedQty; got != 30 {
		t.Fatalf("expected reserved 30, got %d", got)
	}

	// Decrease: releases the delta.
	if _, err := svc.UpdateInquiry(ctx, buyer.ID, dto.ID, UpdateInquiryInput{RequestedQuantity: intPtr(15)}); err != nil {
		t.Fatalf("update to 15: %v", err)
	}
	if got := loadStock(t, conn, product.ID).ReservedQty; got != 15 {
		t.Fatalf("expected reserved 15, got %d", got)
	}
}

func TestUpdateInquiryFailedIncreaseKeepsReservation(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	product := mustCreateProduct(t, conn, seller.ID, 50, 10)

	dto, err := svc.CreateInquiry(ctx, buyer.ID, CreateInquiryInput{ProductID: product.ID, RequestedQuantity: 40})
	if err != nil {
		t.Fatalf("create inquiry: %v", err)
	}

	_, gotErr := svc.UpdateInquiry(ctx, buyer.ID, dto.ID, UpdateInquiryInput{RequestedQuantity: intPtr(70)})
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", gotErr)
	}

	// Original reservation preserved unchanged.
	if got := loadStock(t, conn, product.ID).ReservedQty; got != 40 {
		t.Fatalf("expected reserved 40, got %d", got)
	}
	reloaded, err := svc.GetInquiry(ctx, buyer.ID, dto.ID)
	if err != nil {
		t.Fatalf("get inquiry: %v", err)
	}
	if reloaded.RequestedQuantity != 40 {
		t.Fatalf("expected quantity unchanged at 40, got %d", reloaded.RequestedQuantity)
	}
}

func TestUpdateInquiryOnlyWhileNew(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	product := mustCreateProduct(t, conn, seller.ID, 100, 10)

	dto, err := svc.CreateInquiry(ctx, buyer.ID, CreateInquiryInput{ProductID: product.ID, RequestedQuantity: 20})
	if err != nil {
		t.Fatalf("create inquiry: %v", err)
	}
	if _, err := svc.ReplyInquiry(ctx, seller.ID, dto.ID, "We can supply."); err != nil {
		t.Fatalf("reply: %v", err)
	}

	_, gotErr := svc.UpdateInquiry(ctx, buyer.ID, dto.ID, UpdateInquiryInput{RequestedQuantity: intPtr(25)})
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", gotErr)
	}
}

func TestUpdateInquiryQuantityLockedByInvoice(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	product := mustCreateProduct(t, conn, seller.ID, 100, 10)

	dto, err := svc.CreateInquiry(ctx, buyer.ID, CreateInquiryInput{ProductID: product.ID, RequestedQuantity: 20})
	if err != nil {
		t.Fatalf("create inquiry: %v", err)
	}

	invoice := &models.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-2026-000001",
		InquiryID:     &dto.ID,
		BuyerID:       buyer.ID,
		SellerID:      seller.ID,
		ProductID:     product.ID,
		Quantity:      20,
		UnitPrice:     decimal.NewFromInt(50),
		TotalAmount:   decimal.NewFromInt(1000),
		Status:        enums.InvoiceStatusDraft,
	}
	if err := conn.Create(invoice).Error; err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	// The draft snapshots 20 units; a quantity edit would desync it from
	// the reservation it is going to consume.
	_, gotErr := svc.UpdateInquiry(ctx, buyer.ID, dto.ID, UpdateInquiryInput{RequestedQuantity: intPtr(30)})
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", gotErr)
	}
	if stock := loadStock(t, conn, product.ID); stock.ReservedQty != 20 {
		t.Fatalf("expected reservation unchanged at 20, got %d", stock.ReservedQty)
	}

	// Non-quantity edits stay allowed, and a same-value quantity is a no-op.
	if _, err := svc.UpdateInquiry(ctx, buyer.ID, dto.ID, UpdateInquiryInput{
		RequestedQuantity: intPtr(20),
		Message:           stringPtr("Please quote CIF Hamburg."),
	}); err != nil {
		t.Fatalf("expected non-quantity edit to pass, got %v", err)
	}

	// Cancelling the invoice unlocks the quantity again.
	if err := conn.Model(&models.Invoice{}).Where("id = ?", invoice.ID).
		Update("status", enums.InvoiceStatusCancelled).Error; err != nil {
		t.Fatalf("cancel invoice: %v", err)
	}
	updated, err := svc.UpdateInquiry(ctx, buyer.ID, dto.ID, UpdateInquiryInput{RequestedQuantity: intPtr(30)})
	if err != nil {
		t.Fatalf("update after cancel: %v", err)
	}
	if updated.RequestedQuantity != 30 {
		t.Fatalf("expected quantity 30, got %d", updated.RequestedQuantity)
	}
	if stock := loadStock(t, conn, product.ID); stock.ReservedQty != 30 {
		t.Fatalf("expected reservation re-reserved to 30, got %d", stock.ReservedQty)
	}
}

func TestReplyInquiry(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	other := mustCreateUser(t, conn, enums.RoleSeller)
	product := mustCreateProduct(t, conn, seller.ID, 100, 10)

	dto, err := svc.CreateInquiry(ctx, buyer.ID, CreateInquiryInput{ProductID: product.ID, RequestedQuantity: 20})
	if err != nil {
		t.Fatalf("create inquiry: %v", err)
	}

	_, gotErr := svc.ReplyInquiry(ctx, other.ID, dto.ID, "not mine")
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-owner, got %v", gotErr)
	}

	replied, err := svc.ReplyInquiry(ctx, seller.ID, dto.ID, "We can supply 20 units in June.")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if replied.Status != enums.InquiryStatusReplied {
		t.Fatalf("expected replied status, got %s", replied.Status)
	}
	if replied.ReplyMessage == "" {
		t.Fatal("expected reply message recorded")
	}
}

func TestCloseInquiryReleasesReservation(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	product := mustCreateProduct(t, conn, seller.ID, 100, 10)

	dto, err := svc.CreateInquiry(ctx, buyer.ID, CreateInquiryInput{ProductID: product.ID, RequestedQuantity: 20})
	if err != nil {
		t.Fatalf("create inquiry: %v", err)
	}

	closed, err := svc.CloseInquiry(ctx, seller.ID, dto.ID)
	if err != nil {
		t.Fatalf("close inquiry: %v", err)
	}
	if closed.Status != enums.InquiryStatusClosed {
		t.Fatalf("expected closed status, got %s", closed.Status)
	}
	if got := loadStock(t, conn, product.ID).ReservedQty; got != 0 {
		t.Fatalf("expected reservation released, got %d", got)
	}

	_, gotErr := svc.CloseInquiry(ctx, buyer.ID, dto.ID)
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict closing twice, got %v", gotErr)
	}
}

func TestListInquiries(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateUser(t, conn, enums.RoleSeller)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer)
	product := mustCreateProduct(t, conn, seller.ID, 100, 10)

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateInquiry(ctx, buyer.ID, CreateInquiryInput{ProductID: product.ID, RequestedQuantity: 10}); err != nil {
			t.Fatalf("create inquiry %d: %v", i, err)
		}
	}

	buyerRows, err := svc.ListForBuyer(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("list for buyer: %v", err)
	}
	if len(buyerRows) != 3 {
		t.Fatalf("expected 3 buyer inquiries, got %d", len(buyerRows))
	}

	sellerRows, err := svc.ListForSeller(ctx, seller.ID)
	if err != nil {
		t.Fatalf("list for seller: %v", err)
	}
	if len(sellerRows) != 3 {
		t.Fatalf("expected 3 seller inquiries, got %d", len(sellerRows))
	}
}

func intPtr(v int) *int { return &v }

func stringPtr(v string) *string { return &v }
