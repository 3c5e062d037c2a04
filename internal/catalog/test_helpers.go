package catalog

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

func newTestClient(t *testing.T) (*db.Client, *gorm.DB) {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.SellerProfile{},
		&models.Product{},
		&models.StockItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db.NewWithConn(conn), conn
}

func mustCreateTestSeller(t *testing.T, conn *gorm.DB, mode enums.SellerMode) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		Email:    fmt.Sprintf("tl_test_%s@example.com", uuid.NewString()),
		FullName: "Catalog Tester",
		Role:     enums.RoleSeller,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	profile := &models.SellerProfile{
		ID:           uuid.New(),
		UserID:       user.ID,
		BusinessName: "Test Trading Co",
		SellerMode:   mode,
	}
	if err := conn.Create(profile).Error; err != nil {
		t.Fatalf("create seller profile: %v", err)
	}
	return user
}

func mustCreateTestProduct(t *testing.T, conn *gorm.DB, sellerID uuid.UUID, declared, reserved int, active bool) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:               uuid.New(),
		SellerID:         sellerID,
		Name:             fmt.Sprintf("Widget %s", uuid.NewString()[:8]),
		Category:         "industrial",
		Price:            decimal.NewFromInt(50),
		Currency:         "USD",
		MinQuantity:      10,
		SellingCountries: pq.StringArray{"US", "IN"},
		IsActive:         active,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	// Create skips the zero-value false because of the column's default:true
	// tag, so force the requested state with an explicit update.
	if !active {
		if err := conn.Model(&models.Product{}).Where("id = ?", product.ID).Update("is_active", false).Error; err != nil {
			t.Fatalf("set product inactive: %v", err)
		}
	}
	stock := &models.StockItem{
		ProductID:   product.ID,
		DeclaredQty: declared,
		ReservedQty: reserved,
	}
	if err := conn.Create(stock).Error; err != nil {
		t.Fatalf("create stock: %v", err)
	}
	return product
}
