package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/pagination"
)

// Repository wires together product and stock persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductDetail fetches a product with its stock row.
func (r *Repository) GetProductDetail(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Stock").
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct updates an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product by ID.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

// CountActiveBySeller counts the seller's currently active listings.
func (r *Repository) CountActiveBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("seller_id = ? AND is_active = ?", sellerID, true).
		Count(&count).
		Error
	return count, err
}

// UpsertStock creates or updates the stock row for a product.
func (r *Repository) UpsertStock(ctx context.Context, item *models.StockItem) (*models.StockItem, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// GetStockByProductID returns the stock row for the provided product.
func (r *Repository) GetStockByProductID(ctx context.Context, productID uuid.UUID) (*models.StockItem, error) {
	var item models.StockItem
	if err := r.db.WithContext(ctx).First(&item, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// SetDeclaredStock moves declared_qty to the requested value, clamped to the
// reserved floor so remaining stock never goes negative.
func (r *Repository) SetDeclaredStock(ctx context.Context, productID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("product_id = ?", productID).
		Update("declared_qty", gorm.Expr("CASE WHEN reserved_qty > ? THEN reserved_qty ELSE ? END", qty, qty)).
		Error
}

// ListBySeller lists the products owned by a seller with stock preloaded.
func (r *Repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Stock").
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

type productListQuery struct {
	Pagination        pagination.Params
	Filters           ProductListFilters
	SellerID          *uuid.UUID
	LowStockThreshold int
}

// ProductListFilters narrows the public product listing.
type ProductListFilters struct {
	Category string
	// Country requires Postgres array containment and is ignored by
	// sqlite-backed tests.
	Country  string
	Query    string
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
}

func (r *Repository) ListProductSummaries(ctx context.Context, query productListQuery) (*ProductListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Table("products p").
		Select(strings.Join([]string{
			"p.id",
			"p.seller_id",
			"p.name",
			"p.category",
			"p.price",
			"p.currency",
			"p.min_quantity",
			"p.selling_countries",
			"p.is_active",
			"s.declared_qty",
			"s.reserved_qty",
			"p.created_at",
			"p.updated_at",
		}, ", ")).
		Joins("JOIN stock_items s ON s.product_id = p.id")

	filter := query.Filters
	if filter.Category != "" {
		qb = qb.Where("p.category = ?", filter.Category)
	}
	if filter.Country != "" {
		qb = qb.Where("p.selling_countries @> ARRAY[?]::text[]", filter.Country)
	}
	if filter.PriceMin != nil {
		qb = qb.Where("p.price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		qb = qb.Where("p.price <= ?", *filter.PriceMax)
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ?)", pattern, pattern)
	}

	if query.SellerID != nil {
		qb = qb.Where("p.seller_id = ?", *query.SellerID)
	} else {
		qb = qb.Where("p.is_active = ?", true)
	}

	if cursor != nil {
		qb = qb.Where("(p.created_at < ?) OR (p.created_at = ? AND p.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	qb = qb.Order("p.created_at DESC").Order("p.id DESC").Limit(limitWithBuffer)

	var records []productSummaryRecord
	if err := qb.Scan(&records).Error; err != nil {
		return nil, err
	}

	resultRows := records
	nextCursor := ""
	if len(records) > pageSize {
		resultRows = records[:pageSize]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	summaries := make([]ProductSummary, 0, len(resultRows))
	for _, record := range resultRows {
		summaries = append(summaries, record.toSummary(query.LowStockThreshold))
	}

	return &ProductListResult{
		Products:   summaries,
		NextCursor: nextCursor,
	}, nil
}

type productSummaryRecord struct {
	ID               uuid.UUID
	SellerID         uuid.UUID
	Name             string
	Category         string
	Price            decimal.Decimal
	Currency         string
	MinQuantity      int
	SellingCountries pq.StringArray
	IsActive         bool
	DeclaredQty      int
	ReservedQty      int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ProductListResult is one page of the cursor-paginated product listing.
type ProductListResult struct {
	Products   []ProductSummary
	NextCursor string
}
