package rfq

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// Repository handles RFQ and quotation persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to RFQ operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create persists a new RFQ.
func (r *Repository) Create(ctx context.Context, rfq *models.RFQ) (*models.RFQ, error) {
	if err := r.db.WithContext(ctx).Create(rfq).Error; err != nil {
		return nil, err
	}
	return rfq, nil
}

// FindByID loads an RFQ by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RFQ, error) {
	var rfq models.RFQ
	if err := r.db.WithContext(ctx).First(&rfq, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rfq, nil
}

// Update saves the provided RFQ.
func (r *Repository) Update(ctx context.Context, rfq *models.RFQ) error {
	return r.db.WithContext(ctx).Save(rfq).Error
}

// Delete removes an RFQ. Quotations cascade at the schema level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.RFQ{}, "id = ?", id).Error
}

// CountResponses returns how many quotations an RFQ has received.
func (r *Repository) CountResponses(ctx context.Context, rfqID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RFQResponse{}).
		Where("rfq_id = ?", rfqID).
		Count(&count).Error
	return count, err
}

// HasResponded reports whether the seller already quoted the RFQ.
func (r *Repository) HasResponded(ctx context.Context, rfqID, sellerID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RFQResponse{}).
		Where("rfq_id = ? AND seller_id = ?", rfqID, sellerID).
		Count(&count).Error
	return count > 0, err
}

// RespondedRFQIDs returns the RFQ ids the seller has already quoted.
func (r *Repository) RespondedRFQIDs(ctx context.Context, sellerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.RFQResponse{}).
		Where("seller_id = ?", sellerID).
		Pluck("rfq_id", &ids).Error
	return ids, err
}

// CreateResponse persists a seller quotation. The composite unique index on
// (rfq_id, seller_id) rejects a second quote from the same seller.
func (r *Repository) CreateResponse(ctx context.Context, response *models.RFQResponse) (*models.RFQResponse, error) {
	if err := r.db.WithContext(ctx).Create(response).Error; err != nil {
		return nil, err
	}
	return response, nil
}

// rfqRecord is the joined row shape used by listing queries.
type rfqRecord struct {
	ID                 uuid.UUID
	BuyerID            uuid.UUID
	BuyerName          string
	ProductRequirement string
	Description        string
	Quantity           int
	DeliveryCountry    string
	ExpiresAt          time.Time
	Status             enums.RFQStatus
	ResponseCount      int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

const rfqListSelect = `
r.id, r.buyer_id, r.product_requirement, r.description, r.quantity,
r.delivery_country, r.expires_at, r.status, r.created_at, r.updated_at,
buyer.full_name AS buyer_name,
(SELECT COUNT(*) FROM rfq_responses resp WHERE resp.rfq_id = r.id) AS response_count
`

func (r *Repository) listQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("rfqs r").
		Select(rfqListSelect).
		Joins("JOIN users buyer ON buyer.id = r.buyer_id")
}

// GetDetail loads a single RFQ with buyer name and response count.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (*rfqRecord, error) {
	var record rfqRecord
	res := r.listQuery(ctx).Where("r.id = ?", id).Scan(&record)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &record, nil
}

// ListByBuyer returns the buyer's RFQs, newest first.
func (r *Repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]rfqRecord, error) {
	var records []rfqRecord
	err := r.listQuery(ctx).
		Where("r.buyer_id = ?", buyerID).
		Order("r.created_at DESC").
		Scan(&records).Error
	return records, err
}

// ListOpen returns RFQs stored as open, newest first. Expiry is applied by
// the service when shaping records for sellers.
func (r *Repository) ListOpen(ctx context.Context) ([]rfqRecord, error) {
	var records []rfqRecord
	err := r.listQuery(ctx).
		Where("r.status = ?", enums.RFQStatusOpen).
		Order("r.created_at DESC").
		Scan(&records).Error
	return records, err
}

// responseRecord is the joined row shape for quotation listings.
type responseRecord struct {
	ID                    uuid.UUID
	RFQID                 uuid.UUID
	SellerID              uuid.UUID
	SellerBusinessName    string
	SellerMode            enums.SellerMode
	OfferedPrice          decimal.Decimal
	Currency              string
	EstimatedDeliveryDays int
	Message               string
	CreatedAt             time.Time
}

const responseListSelect = `
resp.id, resp.rfq_id, resp.seller_id, resp.offered_price, resp.currency,
resp.estimated_delivery_days, resp.message, resp.created_at,
sp.business_name AS seller_business_name,
sp.seller_mode AS seller_mode
`

// ListResponses returns an RFQ's quotations with seller profile context.
// Ordering is applied by the service so tier ranking stays in one place.
func (r *Repository) ListResponses(ctx context.Context, rfqID uuid.UUID) ([]responseRecord, error) {
	var records []responseRecord
	err := r.db.WithContext(ctx).
		Table("rfq_responses resp").
		Select(responseListSelect).
		Joins("LEFT JOIN seller_profiles sp ON sp.user_id = resp.seller_id").
		Where("resp.rfq_id = ?", rfqID).
		Order("resp.created_at ASC").
		Scan(&records).Error
	return records, err
}
