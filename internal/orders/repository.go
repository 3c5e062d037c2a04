package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// Repository handles order persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to order operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create persists a new order row.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads an order by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus moves the order to the given status only when it currently
// holds the expected one, so concurrent transitions cannot double-fire.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// orderRecord is the joined row shape used by detail and listing queries.
type orderRecord struct {
	ID                 uuid.UUID
	OrderNumber        string
	BuyerID            uuid.UUID
	BuyerName          string
	SellerID           uuid.UUID
	SellerBusinessName string
	ProductID          uuid.UUID
	ProductName        string
	InquiryID          *uuid.UUID
	FinalQuantity      int
	FinalPrice         decimal.Decimal
	Currency           string
	ShippingTerms      string
	ShippingCost       decimal.Decimal
	TotalAmount        decimal.Decimal
	Status             enums.OrderStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

const orderListSelect = `
o.id, o.order_number, o.buyer_id, o.seller_id, o.product_id, o.inquiry_id,
o.final_quantity, o.final_price, o.currency, o.shipping_terms, o.shipping_cost,
o.total_amount, o.status, o.created_at, o.updated_at,
buyer.full_name AS buyer_name,
sp.business_name AS seller_business_name,
p.name AS product_name
`

func (r *Repository) listQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("orders o").
		Joins("JOIN users buyer ON buyer.id = o.buyer_id").
		Joins("LEFT JOIN seller_profiles sp ON sp.user_id = o.seller_id").
		Joins("JOIN products p ON p.id = o.product_id").
		Select(orderListSelect)
}

// GetDetail loads a single order with party and product context.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (*orderRecord, error) {
	var record orderRecord
	res := r.listQuery(ctx).Where("o.id = ?", id).Scan(&record)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &record, nil
}

// ListByBuyer returns the buyer's orders, newest first.
func (r *Repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]orderRecord, error) {
	var records []orderRecord
	err := r.listQuery(ctx).
		Where("o.buyer_id = ?", buyerID).
		Order("o.created_at DESC").
		Scan(&records).Error
	return records, err
}

// ListBySeller returns the seller's orders, newest first.
func (r *Repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]orderRecord, error) {
	var records []orderRecord
	err := r.listQuery(ctx).
		Where("o.seller_id = ?", sellerID).
		Order("o.created_at DESC").
		Scan(&records).Error
	return records, err
}
