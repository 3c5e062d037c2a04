package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/pagination"
	"github.com/tradelinkhq/tradelink-backend/pkg/refdata"
	"github.com/tradelinkhq/tradelink-backend/pkg/tier"
)

// Service exposes seller product management and the stock primitives the
// inquiry/order/invoice engines build on.
type Service interface {
	CreateProduct(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, sellerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, sellerID, productID uuid.UUID) error
	SetActive(ctx context.Context, sellerID, productID uuid.UUID, active bool) (*ProductDTO, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListSellerProducts(ctx context.Context, sellerID uuid.UUID) ([]ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	Reserve(ctx context.Context, productID uuid.UUID, qty int) error
	Release(ctx context.Context, productID uuid.UUID, qty int) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name             string
	Description      string
	Category         string
	Price            decimal.Decimal
	Currency         string
	MinQuantity      int
	DeclaredStock    int
	SellingCountries []string
	Active           bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name             *string
	Description      *string
	Category         *string
	Price            *decimal.Decimal
	Currency         *string
	MinQuantity      *int
	DeclaredStock    *int
	SellingCountries *[]string
}

// ListProductsInput drives both the public listing and a seller's own view.
type ListProductsInput struct {
	Pagination pagination.Params
	Filters    ProductListFilters
	SellerID   *uuid.UUID
}

// Config tunes quota and stock-status policy for the catalog.
type Config struct {
	LowStockThreshold     int
	BasicActiveProductCap int
}

type sellerReader interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	sellers  sellerReader
	cfg      Config
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient *db.Client, sellers sellerReader, cfg Config) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if sellers == nil {
		return nil, fmt.Errorf("seller repository required")
	}
	if cfg.BasicActiveProductCap <= 0 {
		cfg.BasicActiveProductCap = tier.DefaultBasicActiveProductCap
	}
	return &service{repo: repo, dbClient: dbClient, sellers: sellers, cfg: cfg}, nil
}

// CreateProduct creates the product with its stock row, enforcing the
// basic-tier active listing quota.
func (s *service) CreateProduct(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if err := validateProductSpec(input.Name, input.Price, input.Currency, input.MinQuantity, input.DeclaredStock, input.SellingCountries); err != nil {
		return nil, err
	}

	profile, err := s.loadSellerProfile(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	if input.Active {
		if err := s.ensureQuota(ctx, sellerID, profile); err != nil {
			return nil, err
		}
	}

	var createdID uuid.UUID
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product := &models.Product{
			ID:               uuid.New(),
			SellerID:         sellerID,
			Name:             strings.TrimSpace(input.Name),
			Description:      input.Description,
			Category:         input.Category,
			Price:            input.Price,
			Currency:         strings.ToUpper(input.Currency),
			MinQuantity:      input.MinQuantity,
			SellingCountries: append([]string(nil), input.SellingCountries...),
			IsActive:         input.Active && input.DeclaredStock > 0,
		}
		if _, err := txRepo.CreateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		createdID = product.ID

		stock := &models.StockItem{
			ProductID:   product.ID,
			DeclaredQty: input.DeclaredStock,
		}
		if _, err := txRepo.UpsertStock(ctx, stock); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: upsert stock")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	return s.loadDTO(ctx, createdID)
}

// UpdateProduct updates an existing product. Reserved stock is never reset;
// a declared-stock edit below the reserved amount is clamped to that floor.
func (s *service) UpdateProduct(ctx context.Context, sellerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadOwnedProduct(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}

	applyUpdateToProduct(product, input)
	if err := validateProductSpec(product.Name, product.Price, product.Currency, product.MinQuantity, 0, product.SellingCountries); err != nil {
		return nil, err
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if _, err := txRepo.UpdateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}

		if input.DeclaredStock != nil {
			if *input.DeclaredStock < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "declared_stock must be non-negative")
			}
			if err := txRepo.SetDeclaredStock(ctx, productID, *input.DeclaredStock); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: set declared stock")
			}
		}

		return DeactivateIfDepleted(ctx, tx, productID)
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	return s.loadDTO(ctx, productID)
}

// DeleteProduct removes a product and relies on FK cascades for the stock row.
func (s *service) DeleteProduct(ctx context.Context, sellerID, productID uuid.UUID) error {
	if _, err := s.loadOwnedProduct(ctx, sellerID, productID); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

// SetActive toggles the listing. Activation is refused while remaining stock
// is zero and re-checks the basic-tier quota.
func (s *service) SetActive(ctx context.Context, sellerID, productID uuid.UUID, active bool) (*ProductDTO, error) {
	product, err := s.loadOwnedProduct(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}

	if active && !product.IsActive {
		stock, err := s.repo.GetStockByProductID(ctx, productID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock")
		}
		if stock.RemainingQty() <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot activate a product with no remaining stock")
		}

		profile, err := s.loadSellerProfile(ctx, sellerID)
		if err != nil {
			return nil, err
		}
		if err := s.ensureQuota(ctx, sellerID, profile); err != nil {
			return nil, err
		}
	}

	product.IsActive = active
	if _, err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return s.loadDTO(ctx, productID)
}

// GetProduct returns the product detail with derived stock fields.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	return s.loadDTO(ctx, productID)
}

// ListSellerProducts returns all listings the seller owns, active or not.
func (s *service) ListSellerProducts(ctx context.Context, sellerID uuid.UUID) ([]ProductDTO, error) {
	rows, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewProductDTO(&rows[i], s.cfg.LowStockThreshold))
	}
	return out, nil
}

// ListProducts serves the cursor-paginated catalog.
func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	if input.Filters.Country != "" && !refdata.IsCountry(input.Filters.Country) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown country code")
	}
	result, err := s.repo.ListProductSummaries(ctx, productListQuery{
		Pagination:        input.Pagination,
		Filters:           input.Filters,
		SellerID:          input.SellerID,
		LowStockThreshold: s.cfg.LowStockThreshold,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return result, nil
}

// Reserve holds qty units in its own transaction, deactivating the product
// when the reservation empties it.
func (s *service) Reserve(ctx context.Context, productID uuid.UUID, qty int) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := ReserveStock(ctx, tx, productID, qty); err != nil {
			return err
		}
		return DeactivateIfDepleted(ctx, tx, productID)
	})
}

// Release returns qty units in its own transaction.
func (s *service) Release(ctx context.Context, productID uuid.UUID, qty int) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return ReleaseStock(ctx, tx, productID, qty)
	})
}

func (s *service) loadDTO(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.GetProductDetail(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product detail")
	}
	return NewProductDTO(product, s.cfg.LowStockThreshold), nil
}

func (s *service) loadOwnedProduct(ctx context.Context, sellerID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to seller")
	}
	return product, nil
}

func (s *service) loadSellerProfile(ctx context.Context, sellerID uuid.UUID) (*models.SellerProfile, error) {
	profile, err := s.sellers.FindByUserID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller profile")
	}
	return profile, nil
}

func (s *service) ensureQuota(ctx context.Context, sellerID uuid.UUID, profile *models.SellerProfile) error {
	activeCount, err := s.repo.CountActiveBySeller(ctx, sellerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active products")
	}
	if !tier.CanListMoreProducts(profile.SellerMode, int(activeCount), s.cfg.BasicActiveProductCap) {
		return pkgerrors.New(pkgerrors.CodeQuotaExceeded, "active product limit reached for basic plan").
			WithDetails(map[string]any{"active_count": activeCount, "limit": s.cfg.BasicActiveProductCap})
	}
	return nil
}

func validateProductSpec(name string, price decimal.Decimal, currency string, minQuantity, declaredStock int, countries []string) error {
	if strings.TrimSpace(name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if currency != "" && !refdata.IsCurrency(currency) {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown currency code")
	}
	if minQuantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "min_quantity must be at least 1")
	}
	if declaredStock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "declared_stock must be non-negative")
	}
	if len(countries) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one selling country is required")
	}
	for _, code := range countries {
		if !refdata.IsCountry(code) {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown country code").
				WithDetails(map[string]any{"country": code})
		}
	}
	return nil
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Currency != nil {
		product.Currency = strings.ToUpper(*input.Currency)
	}
	if input.MinQuantity != nil {
		product.MinQuantity = *input.MinQuantity
	}
	if input.SellingCountries != nil {
		product.SellingCountries = append([]string(nil), *input.SellingCountries...)
	}
}
