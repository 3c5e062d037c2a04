package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/catalog"
	"github.com/tradelinkhq/tradelink-backend/internal/invoices"
	"github.com/tradelinkhq/tradelink-backend/internal/numbering"
	"github.com/tradelinkhq/tradelink-backend/pkg/db"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
)

// Service exposes the order workflow. Orders either start from scratch, which
// reserves stock, or from an inquiry, which takes over the inquiry's existing
// reservation.
type Service interface {
	CreateDirectOrder(ctx context.Context, buyerID uuid.UUID, input CreateDirectOrderInput) (*OrderDTO, error)
	CreateFromInquiry(ctx context.Context, sellerID uuid.UUID, input CreateFromInquiryInput) (*OrderDTO, error)
	Transition(ctx context.Context, actorID, orderID uuid.UUID, target enums.OrderStatus) (*OrderDTO, error)
	GetOrder(ctx context.Context, actorID, orderID uuid.UUID) (*OrderDTO, error)
	ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]OrderDTO, error)
	ListForSeller(ctx context.Context, sellerID uuid.UUID) ([]OrderDTO, error)
}

// CreateDirectOrderInput carries the fields for a buyer-initiated order.
type CreateDirectOrderInput struct {
	ProductID     uuid.UUID
	Quantity      int
	ShippingTerms string
	ShippingCost  decimal.Decimal
}

// CreateFromInquiryInput converts a negotiated inquiry into an order.
// FinalPrice defaults to the product's listed price when nil.
type CreateFromInquiryInput struct {
	InquiryID     uuid.UUID
	FinalPrice    *decimal.Decimal
	ShippingTerms string
	ShippingCost  decimal.Decimal
}

// Config carries document numbering settings for the order workflow.
type Config struct {
	OrderNumberPrefix   string
	InvoiceNumberPrefix string
}

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type inquiryReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error)
}

type service struct {
	repo      *Repository
	products  productReader
	inquiries inquiryReader
	dbClient  *db.Client
	cfg       Config
}

// NewService wires the order workflow.
func NewService(repo *Repository, products productReader, inquiries inquiryReader, dbClient *db.Client, cfg Config) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if inquiries == nil {
		return nil, fmt.Errorf("inquiry reader required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if cfg.OrderNumberPrefix == "" {
		cfg.OrderNumberPrefix = "ORD"
	}
	if cfg.InvoiceNumberPrefix == "" {
		cfg.InvoiceNumberPrefix = "INV"
	}
	return &service{
		repo:      repo,
		products:  products,
		inquiries: inquiries,
		dbClient:  dbClient,
		cfg:       cfg,
	}, nil
}

func (s *service) CreateDirectOrder(ctx context.Context, buyerID uuid.UUID, input CreateDirectOrderInput) (*OrderDTO, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.ShippingCost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping cost cannot be negative")
	}

	product, err := s.loadProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product.SellerID == buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot order your own product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not active")
	}
	if input.Quantity < product.MinQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeMinQuantity,
			fmt.Sprintf("minimum order quantity is %d", product.MinQuantity)).
			WithDetails(map[string]any{"min_quantity": product.MinQuantity})
	}

	order := &models.Order{
		ID:            uuid.New(),
		BuyerID:       buyerID,
		SellerID:      product.SellerID,
		ProductID:     product.ID,
		FinalQuantity: input.Quantity,
		FinalPrice:    product.Price,
		Currency:      product.Currency,
		ShippingTerms: input.ShippingTerms,
		ShippingCost:  input.ShippingCost,
		Status:        enums.OrderStatusCreated,
	}
	order.TotalAmount = orderTotal(order)

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := catalog.ReserveStock(ctx, tx, product.ID, input.Quantity); err != nil {
			return err
		}
		if err := catalog.DeactivateIfDepleted(ctx, tx, product.ID); err != nil {
			return err
		}
		number, err := numbering.NextNumber(ctx, tx, numbering.SequenceOrders, s.cfg.OrderNumberPrefix, time.Now())
		if err != nil {
			return err
		}
		order.OrderNumber = number
		if _, err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadDTO(ctx, order.ID)
}

// CreateFromInquiry converts an inquiry into an order. The inquiry's stock
// reservation carries over unchanged; no additional quantity is reserved.
func (s *service) CreateFromInquiry(ctx context.Context, sellerID uuid.UUID, input CreateFromInquiryInput) (*OrderDTO, error) {
	if input.ShippingCost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping cost cannot be negative")
	}

	inquiry, err := s.inquiries.FindByID(ctx, input.InquiryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inquiry not found")
		}
		return nil, fmt.Errorf("load inquiry: %w", err)
	}
	if inquiry.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "inquiry belongs to another seller")
	}
	if inquiry.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot convert a %s inquiry", inquiry.Status))
	}

	product, err := s.loadProduct(ctx, inquiry.ProductID)
	if err != nil {
		return nil, err
	}
	finalPrice := product.Price
	if input.FinalPrice != nil {
		finalPrice = *input.FinalPrice
	}
	if !finalPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "final price must be positive")
	}

	inquiryID := inquiry.ID
	order := &models.Order{
		ID:            uuid.New(),
		BuyerID:       inquiry.BuyerID,
		SellerID:      inquiry.SellerID,
		ProductID:     inquiry.ProductID,
		InquiryID:     &inquiryID,
		FinalQuantity: inquiry.RequestedQty,
		FinalPrice:    finalPrice,
		Currency:      product.Currency,
		ShippingTerms: input.ShippingTerms,
		ShippingCost:  input.ShippingCost,
		Status:        enums.OrderStatusCreated,
	}
	order.TotalAmount = orderTotal(order)

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		res := tx.WithContext(ctx).
			Model(&models.Inquiry{}).
			Where("id = ? AND status IN ?", inquiry.ID,
				[]enums.InquiryStatus{enums.InquiryStatusNew, enums.InquiryStatusReplied}).
			Update("status", enums.InquiryStatusConverted)
		if res.Error != nil {
			return fmt.Errorf("convert inquiry: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "inquiry changed state concurrently")
		}
		number, err := numbering.NextNumber(ctx, tx, numbering.SequenceOrders, s.cfg.OrderNumberPrefix, time.Now())
		if err != nil {
			return err
		}
		order.OrderNumber = number
		if _, err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "inquiry already has an order")
			}
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadDTO(ctx, order.ID)
}

// Transition advances the order lifecycle. Confirmation drafts the invoice in
// the same transaction; cancellation returns whatever is still reserved.
func (s *service) Transition(ctx context.Context, actorID, orderID uuid.UUID, target enums.OrderStatus) (*OrderDTO, error) {
	if !target.IsValid() || target == enums.OrderStatusCreated {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid target status %q", target))
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeTransition(order, actorID, target); err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move a %s order to %s", order.Status, target)).
			WithDetails(map[string]any{"from": order.Status, "to": target})
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.repo.WithTx(tx).UpdateStatus(ctx, order.ID, order.Status, target)
		if err != nil {
			return fmt.Errorf("transition order: %w", err)
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed state concurrently")
		}
		switch target {
		case enums.OrderStatusConfirmed:
			_, err := invoices.CreateDraftForOrder(ctx, tx, order, s.cfg.InvoiceNumberPrefix)
			return err
		case enums.OrderStatusCancelled:
			return s.settleCancellation(ctx, tx, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadDTO(ctx, order.ID)
}

func (s *service) GetOrder(ctx context.Context, actorID, orderID uuid.UUID) (*OrderDTO, error) {
	dto, err := s.loadDTO(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if dto.BuyerID != actorID && dto.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to other parties")
	}
	return dto, nil
}

func (s *service) ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]OrderDTO, error) {
	records, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return toDTOs(records), nil
}

func (s *service) ListForSeller(ctx context.Context, sellerID uuid.UUID) ([]OrderDTO, error) {
	records, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return toDTOs(records), nil
}

// authorizeTransition enforces who drives which step: the seller confirms and
// ships, the buyer acknowledges completion, and either party may cancel.
func (s *service) authorizeTransition(order *models.Order, actorID uuid.UUID, target enums.OrderStatus) error {
	switch target {
	case enums.OrderStatusConfirmed, enums.OrderStatusShipped:
		if order.SellerID != actorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the seller may advance this order")
		}
	case enums.OrderStatusCompleted:
		if order.BuyerID != actorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer may complete this order")
		}
	case enums.OrderStatusCancelled:
		if order.BuyerID != actorID && order.SellerID != actorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to other parties")
		}
	}
	return nil
}

// settleCancellation returns the order's reserved stock and voids its draft
// invoice. Once the invoice is confirmed the deduction is permanent, so a
// later cancellation releases nothing.
func (s *service) settleCancellation(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	var invoice models.Invoice
	err := tx.WithContext(ctx).First(&invoice, "order_id = ?", order.ID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No invoice yet; the reservation from creation is still held.
	case err != nil:
		return fmt.Errorf("load order invoice: %w", err)
	case invoice.Status == enums.InvoiceStatusConfirmed:
		return nil
	case invoice.Status == enums.InvoiceStatusDraft:
		res := tx.WithContext(ctx).
			Model(&models.Invoice{}).
			Where("id = ? AND status = ?", invoice.ID, enums.InvoiceStatusDraft).
			Update("status", enums.InvoiceStatusCancelled)
		if res.Error != nil {
			return fmt.Errorf("void draft invoice: %w", res.Error)
		}
	}
	return catalog.ReleaseStock(ctx, tx, order.ProductID, order.FinalQuantity)
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	return product, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	return order, nil
}

func (s *service) loadDTO(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	record, err := s.repo.GetDetail(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	dto := record.toDTO()
	return &dto, nil
}

func orderTotal(order *models.Order) decimal.Decimal {
	return order.FinalPrice.
		Mul(decimal.NewFromInt(int64(order.FinalQuantity))).
		Add(order.ShippingCost)
}

func toDTOs(records []orderRecord) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, records[i].toDTO())
	}
	return dtos
}
