package inquiries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/catalog"
	"github.com/tradelinkhq/tradelink-backend/pkg/db"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
)

// Service exposes the buyer/seller inquiry workflow. Every open inquiry holds
// a stock reservation; all transitions that change the held quantity run the
// stock mutation and the status write in one transaction.
type Service interface {
	CreateInquiry(ctx context.Context, buyerID uuid.UUID, input CreateInquiryInput) (*InquiryDTO, error)
	UpdateInquiry(ctx context.Context, buyerID, inquiryID uuid.UUID, input UpdateInquiryInput) (*InquiryDTO, error)
	ReplyInquiry(ctx context.Context, sellerID, inquiryID uuid.UUID, message string) (*InquiryDTO, error)
	CloseInquiry(ctx context.Context, actorID, inquiryID uuid.UUID) (*InquiryDTO, error)
	GetInquiry(ctx context.Context, actorID, inquiryID uuid.UUID) (*InquiryDTO, error)
	ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]InquiryDTO, error)
	ListForSeller(ctx context.Context, sellerID uuid.UUID) ([]InquiryDTO, error)
}

// CreateInquiryInput holds the validated payload to open an inquiry.
type CreateInquiryInput struct {
	ProductID         uuid.UUID
	RequestedQuantity int
	ShippingOption    enums.ShippingOption
	Message           string
}

// UpdateInquiryInput holds optional mutation values, permitted only while the
// inquiry is NEW.
type UpdateInquiryInput struct {
	RequestedQuantity *int
	ShippingOption    *enums.ShippingOption
	Message           *string
}

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo     *Repository
	products productReader
	dbClient *db.Client
}

// NewService constructs an inquiry service instance.
func NewService(repo *Repository, products productReader, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inquiry repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, products: products, dbClient: dbClient}, nil
}

// CreateInquiry opens an inquiry and reserves the requested quantity.
func (s *service) CreateInquiry(ctx context.Context, buyerID uuid.UUID, input CreateInquiryInput) (*InquiryDTO, error) {
	if input.RequestedQuantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requested_quantity must be at least 1")
	}
	if input.ShippingOption != "" && !input.ShippingOption.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown shipping option")
	}

	product, err := s.loadProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product.SellerID == buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot inquire against your own product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not active")
	}
	if input.RequestedQuantity < product.MinQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeMinQuantity, "requested quantity is below the product minimum").
			WithDetails(map[string]any{"min_quantity": product.MinQuantity})
	}

	inquiry := &models.Inquiry{
		ID:             uuid.New(),
		ProductID:      product.ID,
		BuyerID:        buyerID,
		SellerID:       product.SellerID,
		RequestedQty:   input.RequestedQuantity,
		ShippingOption: input.ShippingOption,
		Message:        strings.TrimSpace(input.Message),
		Status:         enums.InquiryStatusNew,
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := catalog.ReserveStock(ctx, tx, product.ID, input.RequestedQuantity); err != nil {
			return err
		}
		if err := catalog.DeactivateIfDepleted(ctx, tx, product.ID); err != nil {
			return err
		}
		if _, err := s.repo.WithTx(tx).Create(ctx, inquiry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert inquiry")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inquiry")
	}

	return s.loadDTO(ctx, inquiry.ID)
}

// UpdateInquiry edits an inquiry while it is NEW. A quantity change
// re-reserves the delta atomically; if the increase cannot be satisfied the
// transaction rolls back and the original reservation is preserved.
func (s *service) UpdateInquiry(ctx context.Context, buyerID, inquiryID uuid.UUID, input UpdateInquiryInput) (*InquiryDTO, error) {
	inquiry, err := s.load(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if inquiry.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "inquiry does not belong to buyer")
	}
	if inquiry.Status != enums.InquiryStatusNew {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "inquiry can only be edited while new").
			WithDetails(map[string]any{"status": inquiry.Status})
	}

	if input.RequestedQuantity != nil {
		if *input.RequestedQuantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "requested_quantity must be at least 1")
		}
		product, err := s.loadProduct(ctx, inquiry.ProductID)
		if err != nil {
			return nil, err
		}
		if *input.RequestedQuantity < product.MinQuantity {
			return nil, pkgerrors.New(pkgerrors.CodeMinQuantity, "requested quantity is below the product minimum").
				WithDetails(map[string]any{"min_quantity": product.MinQuantity})
		}
		// An outstanding invoice snapshots the negotiated quantity; letting
		// the buyer change it now would desync the draft from the
		// reservation it will consume.
		if *input.RequestedQuantity != inquiry.RequestedQty {
			invoiced, err := s.repo.CountActiveInvoices(ctx, inquiryID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count invoices")
			}
			if invoiced > 0 {
				return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "quantity is locked while an invoice references this inquiry").
					WithDetails(map[string]any{"active_invoices": invoiced})
			}
		}
	}
	if input.ShippingOption != nil && *input.ShippingOption != "" && !input.ShippingOption.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown shipping option")
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if input.RequestedQuantity != nil {
			delta := *input.RequestedQuantity - inquiry.RequestedQty
			switch {
			case delta > 0:
				if err := catalog.ReserveStock(ctx, tx, inquiry.ProductID, delta); err != nil {
					return err
				}
				if err := catalog.DeactivateIfDepleted(ctx, tx, inquiry.ProductID); err != nil {
					return err
				}
			case delta < 0:
				if err := catalog.ReleaseStock(ctx, tx, inquiry.ProductID, -delta); err != nil {
					return err
				}
			}
			inquiry.RequestedQty = *input.RequestedQuantity
		}
		if input.ShippingOption != nil {
			inquiry.ShippingOption = *input.ShippingOption
		}
		if input.Message != nil {
			inquiry.Message = strings.TrimSpace(*input.Message)
		}
		if err := s.repo.WithTx(tx).Update(ctx, inquiry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update inquiry")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inquiry")
	}

	return s.loadDTO(ctx, inquiryID)
}

// ReplyInquiry records the seller's reply and advances NEW to REPLIED.
func (s *service) ReplyInquiry(ctx context.Context, sellerID, inquiryID uuid.UUID, message string) (*InquiryDTO, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reply message is required")
	}

	inquiry, err := s.load(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if inquiry.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "inquiry does not belong to seller")
	}
	if inquiry.Status != enums.InquiryStatusNew {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "inquiry can only be replied to while new").
			WithDetails(map[string]any{"status": inquiry.Status})
	}

	inquiry.ReplyMessage = message
	inquiry.Status = enums.InquiryStatusReplied
	if err := s.repo.Update(ctx, inquiry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update inquiry")
	}
	return s.loadDTO(ctx, inquiryID)
}

// CloseInquiry lets either party close a non-terminal inquiry, releasing its
// reservation.
func (s *service) CloseInquiry(ctx context.Context, actorID, inquiryID uuid.UUID) (*InquiryDTO, error) {
	inquiry, err := s.load(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if inquiry.BuyerID != actorID && inquiry.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "inquiry does not involve caller")
	}
	if inquiry.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "inquiry is already closed").
			WithDetails(map[string]any{"status": inquiry.Status})
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		ok, err := txRepo.UpdateStatus(ctx, inquiryID, inquiry.Status, enums.InquiryStatusClosed)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: close inquiry")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "inquiry changed state concurrently")
		}
		return catalog.ReleaseStock(ctx, tx, inquiry.ProductID, inquiry.RequestedQty)
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close inquiry")
	}

	return s.loadDTO(ctx, inquiryID)
}

// GetInquiry returns one inquiry to either involved party.
func (s *service) GetInquiry(ctx context.Context, actorID, inquiryID uuid.UUID) (*InquiryDTO, error) {
	inquiry, err := s.load(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if inquiry.BuyerID != actorID && inquiry.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "inquiry does not involve caller")
	}
	return s.loadDTO(ctx, inquiryID)
}

// ListForBuyer returns the buyer's inquiries.
func (s *service) ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]InquiryDTO, error) {
	rows, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer inquiries")
	}
	return toDTOs(rows), nil
}

// ListForSeller returns inquiries against the seller's products.
func (s *service) ListForSeller(ctx context.Context, sellerID uuid.UUID) ([]InquiryDTO, error) {
	rows, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller inquiries")
	}
	return toDTOs(rows), nil
}

func toDTOs(rows []inquiryRecord) []InquiryDTO {
	out := make([]InquiryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDTO())
	}
	return out
}

func (s *service) load(ctx context.Context, inquiryID uuid.UUID) (*models.Inquiry, error) {
	inquiry, err := s.repo.FindByID(ctx, inquiryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inquiry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inquiry")
	}
	return inquiry, nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) loadDTO(ctx context.Context, inquiryID uuid.UUID) (*InquiryDTO, error) {
	record, err := s.repo.GetDetail(ctx, inquiryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inquiry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inquiry detail")
	}
	dto := record.toDTO()
	return &dto, nil
}
