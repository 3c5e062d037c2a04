package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/catalog"
	"github.com/tradelinkhq/tradelink-backend/internal/numbering"
	"github.com/tradelinkhq/tradelink-backend/pkg/currency"
	"github.com/tradelinkhq/tradelink-backend/pkg/db"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/pdf"
	"github.com/tradelinkhq/tradelink-backend/pkg/refdata"
)

// Service exposes the invoicing workflow. Drafts are editable paperwork;
// confirming one is the single action that permanently deducts stock.
type Service interface {
	Generate(ctx context.Context, sellerID uuid.UUID, input GenerateInput) (*InvoiceDTO, error)
	Confirm(ctx context.Context, sellerID, invoiceID uuid.UUID) (*InvoiceDTO, error)
	Cancel(ctx context.Context, sellerID, invoiceID uuid.UUID) (*InvoiceDTO, error)
	GetInvoice(ctx context.Context, actorID, invoiceID uuid.UUID) (*InvoiceDTO, error)
	ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]InvoiceDTO, error)
	ListForSeller(ctx context.Context, sellerID uuid.UUID) ([]InvoiceDTO, error)
	DownloadPDF(ctx context.Context, actorID, invoiceID uuid.UUID) ([]byte, error)
}

// GenerateInput carries the fields for drafting an invoice from an inquiry.
// UnitPrice defaults to the product's listed price when nil.
type GenerateInput struct {
	InquiryID       uuid.UUID
	UnitPrice       *decimal.Decimal
	ShippingCost    decimal.Decimal
	ShippingMethod  string
	Tax             decimal.Decimal
	Notes           string
	DisplayCurrency string
}

// Config carries invoicing settings.
type Config struct {
	NumberPrefix string
}

type inquiryReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error)
}

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo      *Repository
	inquiries inquiryReader
	products  productReader
	dbClient  *db.Client
	renderer  pdf.Renderer
	converter currency.Converter
	cfg       Config
}

// NewService wires the invoicing workflow. Renderer and converter are
// optional; without them PDF download and display conversion are disabled.
func NewService(repo *Repository, inquiries inquiryReader, products productReader, dbClient *db.Client, renderer pdf.Renderer, converter currency.Converter, cfg Config) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	if inquiries == nil {
		return nil, fmt.Errorf("inquiry reader required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = "INV"
	}
	return &service{
		repo:      repo,
		inquiries: inquiries,
		products:  products,
		dbClient:  dbClient,
		renderer:  renderer,
		converter: converter,
		cfg:       cfg,
	}, nil
}

func (s *service) Generate(ctx context.Context, sellerID uuid.UUID, input GenerateInput) (*InvoiceDTO, error) {
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
			fmt.Sprintf("cannot invoice a %s inquiry", inquiry.Status))
	}
	active, err := s.repo.CountActiveByInquiry(ctx, inquiry.ID)
	if err != nil {
		return nil, fmt.Errorf("count inquiry invoices: %w", err)
	}
	if active > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "inquiry already has an invoice")
	}

	product, err := s.products.FindByID(ctx, inquiry.ProductID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}

	unitPrice := product.Price
	if input.UnitPrice != nil {
		unitPrice = *input.UnitPrice
	}
	if !unitPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be positive")
	}
	if input.ShippingCost.IsNegative() || input.Tax.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping cost and tax cannot be negative")
	}
	if input.DisplayCurrency != "" && !refdata.IsCurrency(input.DisplayCurrency) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown display currency %q", input.DisplayCurrency))
	}

	total := unitPrice.Mul(decimal.NewFromInt(int64(inquiry.RequestedQty))).
		Add(input.ShippingCost).
		Add(input.Tax)

	shippingMethod := input.ShippingMethod
	if shippingMethod == "" {
		shippingMethod = inquiry.ShippingOption.String()
	}

	invoice := &models.Invoice{
		ID:             uuid.New(),
		InquiryID:      &inquiry.ID,
		BuyerID:        inquiry.BuyerID,
		SellerID:       inquiry.SellerID,
		ProductID:      inquiry.ProductID,
		Quantity:       inquiry.RequestedQty,
		UnitPrice:      unitPrice,
		ShippingCost:   input.ShippingCost,
		ShippingMethod: shippingMethod,
		Tax:            input.Tax,
		TotalAmount:    total,
		Currency:       product.Currency,
		Notes:          input.Notes,
		Status:         enums.InvoiceStatusDraft,
	}
	s.applyDisplayConversion(ctx, invoice, input.DisplayCurrency)

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		number, err := numbering.NextNumber(ctx, tx, numbering.SequenceInvoices, s.cfg.NumberPrefix, time.Now())
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number
		if _, err := s.repo.WithTx(tx).Create(ctx, invoice); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadDTO(ctx, invoice.ID)
}

// Confirm finalizes a draft invoice. The reserved quantity becomes a
// permanent deduction and the backing inquiry, if any, is marked converted.
// There is no way back from a confirmed invoice.
func (s *service) Confirm(ctx context.Context, sellerID, invoiceID uuid.UUID) (*InvoiceDTO, error) {
	invoice, err := s.loadOwned(ctx, sellerID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != enums.InvoiceStatusDraft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot confirm a %s invoice", invoice.Status))
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.repo.WithTx(tx).UpdateStatus(ctx, invoice.ID, enums.InvoiceStatusDraft, enums.InvoiceStatusConfirmed)
		if err != nil {
			return fmt.Errorf("confirm invoice: %w", err)
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invoice changed state concurrently")
		}
		if err := catalog.DeductStock(ctx, tx, invoice.ProductID, invoice.Quantity); err != nil {
			return err
		}
		if err := catalog.DeactivateIfDepleted(ctx, tx, invoice.ProductID); err != nil {
			return err
		}
		if invoice.InquiryID != nil {
			return markInquiryConverted(ctx, tx, *invoice.InquiryID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadDTO(ctx, invoice.ID)
}

// Cancel voids a draft invoice. When the draft was generated straight from an
// inquiry, the inquiry is closed and its reservation released; order-backed
// drafts leave the reservation with the order lifecycle.
func (s *service) Cancel(ctx context.Context, sellerID, invoiceID uuid.UUID) (*InvoiceDTO, error) {
	invoice, err := s.loadOwned(ctx, sellerID, invoiceID)
	if err != nil {
		return nil, err
	}
	switch invoice.Status {
	case enums.InvoiceStatusConfirmed:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "confirmed invoice cannot be cancelled")
	case enums.InvoiceStatusCancelled:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "invoice is already cancelled")
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.repo.WithTx(tx).UpdateStatus(ctx, invoice.ID, enums.InvoiceStatusDraft, enums.InvoiceStatusCancelled)
		if err != nil {
			return fmt.Errorf("cancel invoice: %w", err)
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invoice changed state concurrently")
		}
		if invoice.OrderID == nil && invoice.InquiryID != nil {
			if err := closeInquiry(ctx, tx, *invoice.InquiryID); err != nil {
				return err
			}
			return catalog.ReleaseStock(ctx, tx, invoice.ProductID, invoice.Quantity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadDTO(ctx, invoice.ID)
}

func (s *service) GetInvoice(ctx context.Context, actorID, invoiceID uuid.UUID) (*InvoiceDTO, error) {
	dto, err := s.loadDTO(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if dto.BuyerID != actorID && dto.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "invoice belongs to other parties")
	}
	return dto, nil
}

func (s *service) ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]InvoiceDTO, error) {
	records, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return toDTOs(records), nil
}

func (s *service) ListForSeller(ctx context.Context, sellerID uuid.UUID) ([]InvoiceDTO, error) {
	records, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return toDTOs(records), nil
}

func (s *service) DownloadPDF(ctx context.Context, actorID, invoiceID uuid.UUID) ([]byte, error) {
	if s.renderer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pdf rendering is not configured")
	}
	dto, err := s.GetInvoice(ctx, actorID, invoiceID)
	if err != nil {
		return nil, err
	}

	doc := pdf.InvoiceDocument{
		InvoiceNumber:  dto.InvoiceNumber,
		Status:         dto.Status.String(),
		SellerName:     dto.SellerBusinessName,
		BuyerName:      dto.BuyerName,
		ProductName:    dto.ProductName,
		Quantity:       dto.Quantity,
		UnitPrice:      dto.UnitPrice.StringFixed(2),
		TotalPrice:     dto.UnitPrice.Mul(decimal.NewFromInt(int64(dto.Quantity))).StringFixed(2),
		ShippingCost:   dto.ShippingCost.StringFixed(2),
		ShippingMethod: dto.ShippingMethod,
		TotalAmount:    dto.TotalAmount.StringFixed(2),
		Currency:       dto.Currency,
		Notes:          dto.Notes,
		IssuedAt:       dto.CreatedAt.UTC().Format("2006-01-02"),
	}
	if !dto.Tax.IsZero() {
		doc.Tax = dto.Tax.StringFixed(2)
	}
	if dto.ConvertedAmount != nil && dto.ConvertedCurrency != nil {
		doc.ConvertedAmount = dto.ConvertedAmount.StringFixed(2)
		doc.ConvertedCurrency = *dto.ConvertedCurrency
	}
	return s.renderer.Render(doc)
}

// applyDisplayConversion fills the converted amount when a display currency
// is requested and a converter is configured. Failures are swallowed: the
// conversion is informational and never blocks invoicing.
func (s *service) applyDisplayConversion(ctx context.Context, invoice *models.Invoice, displayCurrency string) {
	if s.converter == nil || displayCurrency == "" || displayCurrency == invoice.Currency {
		return
	}
	converted, err := s.converter.Convert(ctx, invoice.TotalAmount, invoice.Currency, displayCurrency)
	if err != nil {
		return
	}
	invoice.ConvertedAmount = decimal.NewNullDecimal(converted)
	invoice.ConvertedCurrency = &displayCurrency
}

func (s *service) loadOwned(ctx context.Context, sellerID, invoiceID uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, fmt.Errorf("load invoice: %w", err)
	}
	if invoice.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "invoice belongs to another seller")
	}
	return invoice, nil
}

func (s *service) loadDTO(ctx context.Context, invoiceID uuid.UUID) (*InvoiceDTO, error) {
	record, err := s.repo.GetDetail(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, fmt.Errorf("load invoice: %w", err)
	}
	dto := record.toDTO()
	return &dto, nil
}

func toDTOs(records []invoiceRecord) []InvoiceDTO {
	dtos := make([]InvoiceDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, records[i].toDTO())
	}
	return dtos
}

// markInquiryConverted moves a live inquiry to converted. Already-terminal
// inquiries are left alone so replays do not fail the confirmation.
func markInquiryConverted(ctx context.Context, tx *gorm.DB, inquiryID uuid.UUID) error {
	return tx.WithContext(ctx).
		Model(&models.Inquiry{}).
		Where("id = ? AND status IN ?", inquiryID, []enums.InquiryStatus{enums.InquiryStatusNew, enums.InquiryStatusReplied}).
		Update("status", enums.InquiryStatusConverted).Error
}

func closeInquiry(ctx context.Context, tx *gorm.DB, inquiryID uuid.UUID) error {
	return tx.WithContext(ctx).
		Model(&models.Inquiry{}).
		Where("id = ? AND status IN ?", inquiryID, []enums.InquiryStatus{enums.InquiryStatusNew, enums.InquiryStatusReplied}).
		Update("status", enums.InquiryStatusClosed).Error
}
