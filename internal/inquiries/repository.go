package inquiries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// Repository handles inquiry persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to inquiry operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create persists a new inquiry row.
func (r *Repository) Create(ctx context.Context, inquiry *models.Inquiry) (*models.Inquiry, error) {
	if err := r.db.WithContext(ctx).Create(inquiry).Error; err != nil {
		return nil, err
	}
	return inquiry, nil
}

// FindByID loads an inquiry by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	if err := r.db.WithContext(ctx).First(&inquiry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// Update saves the provided inquiry.
func (r *Repository) Update(ctx context.Context, inquiry *models.Inquiry) error {
	return r.db.WithContext(ctx).Save(inquiry).Error
}

// UpdateStatus moves the inquiry to the given status only when it currently
// holds the expected one, so concurrent transitions cannot double-fire.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.InquiryStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Inquiry{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountActiveInvoices reports how many non-cancelled invoices reference the
// inquiry. A positive count locks the negotiated quantity.
func (r *Repository) CountActiveInvoices(ctx context.Context, inquiryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("inquiry_id = ? AND status <> ?", inquiryID, enums.InvoiceStatusCancelled).
		Count(&count).
		Error
	return count, err
}

const inquiryListSelect = `
i.id, i.product_id, i.buyer_id, i.seller_id, i.requested_qty, i.shipping_option,
i.message, i.reply_message, i.status, i.created_at, i.updated_at,
p.name AS product_name,
buyer.full_name AS buyer_name,
sp.business_name AS seller_business_name
`

func (r *Repository) listQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("inquiries i").
		Select(inquiryListSelect).
		Joins("JOIN products p ON p.id = i.product_id").
		Joins("JOIN users buyer ON buyer.id = i.buyer_id").
		Joins("LEFT JOIN seller_profiles sp ON sp.user_id = i.seller_id")
}

// ListByBuyer returns the buyer's inquiries, newest first.
func (r *Repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]inquiryRecord, error) {
	var rows []inquiryRecord
	err := r.listQuery(ctx).
		Where("i.buyer_id = ?", buyerID).
		Order("i.created_at DESC").
		Scan(&rows).
		Error
	return rows, err
}

// ListBySeller returns inquiries against the seller's products, newest first.
func (r *Repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]inquiryRecord, error) {
	var rows []inquiryRecord
	err := r.listQuery(ctx).
		Where("i.seller_id = ?", sellerID).
		Order("i.created_at DESC").
		Scan(&rows).
		Error
	return rows, err
}

// GetDetail loads one inquiry with the joined display names.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (*inquiryRecord, error) {
	var row inquiryRecord
	res := r.listQuery(ctx).Where("i.id = ?", id).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

type inquiryRecord struct {
	ID                 uuid.UUID
	ProductID          uuid.UUID
	BuyerID            uuid.UUID
	SellerID           uuid.UUID
	RequestedQty       int
	ShippingOption     enums.ShippingOption
	Message            string
	ReplyMessage       string
	Status             enums.InquiryStatus
	ProductName        string
	BuyerName          string
	SellerBusinessName string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
