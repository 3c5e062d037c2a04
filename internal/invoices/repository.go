package invoices

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// Repository handles invoice persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to invoice operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create persists a new invoice row.
func (r *Repository) Create(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// FindByID loads an invoice by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindByOrderID loads the invoice attached to an order, if any.
func (r *Repository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).First(&invoice, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UpdateStatus moves the invoice to the given status only when it currently
// holds the expected one.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.InvoiceStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountActiveByInquiry counts non-cancelled invoices referencing an inquiry.
func (r *Repository) CountActiveByInquiry(ctx context.Context, inquiryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("inquiry_id = ? AND status <> ?", inquiryID, enums.InvoiceStatusCancelled).
		Count(&count).Error
	return count, err
}

// invoiceRecord is the joined row shape used by detail and listing queries.
type invoiceRecord struct {
	ID                uuid.UUID
	InvoiceNumber     string
	OrderID           *uuid.UUID
	InquiryID         *uuid.UUID
	BuyerID           uuid.UUID
	BuyerName         string
	SellerID          uuid.UUID
	SellerBusinessName string
	ProductID         uuid.UUID
	ProductName       string
	Quantity          int
	UnitPrice         decimal.Decimal
	ShippingCost      decimal.Decimal
	ShippingMethod    string
	Tax               decimal.Decimal
	TotalAmount       decimal.Decimal
	Currency          string
	ConvertedAmount   decimal.NullDecimal
	ConvertedCurrency *string
	Notes             string
	Status            enums.InvoiceStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const invoiceListSelect = `
inv.id, inv.invoice_number, inv.order_id, inv.inquiry_id, inv.buyer_id, inv.seller_id,
inv.product_id, inv.quantity, inv.unit_price, inv.shipping_cost, inv.shipping_method,
inv.tax, inv.total_amount, inv.currency, inv.converted_amount, inv.converted_currency,
inv.notes, inv.status, inv.created_at, inv.updated_at,
buyer.full_name AS buyer_name,
sp.business_name AS seller_business_name,
p.name AS product_name
`

func (r *Repository) listQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("invoices inv").
		Joins("JOIN users buyer ON buyer.id = inv.buyer_id").
		Joins("LEFT JOIN seller_profiles sp ON sp.user_id = inv.seller_id").
		Joins("JOIN products p ON p.id = inv.product_id").
		Select(invoiceListSelect)
}

// GetDetail loads a single invoice with party and product context.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (*invoiceRecord, error) {
	var record invoiceRecord
	res := r.listQuery(ctx).Where("inv.id = ?", id).Scan(&record)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &record, nil
}

// ListByBuyer returns the buyer's invoices, newest first.
func (r *Repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]invoiceRecord, error) {
	var records []invoiceRecord
	err := r.listQuery(ctx).
		Where("inv.buyer_id = ?", buyerID).
		Order("inv.created_at DESC").
		Scan(&records).Error
	return records, err
}

// ListBySeller returns the seller's invoices, newest first.
func (r *Repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]invoiceRecord, error) {
	var records []invoiceRecord
	err := r.listQuery(ctx).
		Where("inv.seller_id = ?", sellerID).
		Order("inv.created_at DESC").
		Scan(&records).Error
	return records, err
}
