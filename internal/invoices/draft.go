package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/numbering"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

// CreateDraftForOrder allocates an invoice number and inserts a draft invoice
// mirroring the order's commercial terms. It runs in the caller's transaction
// so order confirmation and invoice creation commit together. The unique
// index on order_id keeps it to one invoice per order; an active invoice
// already generated for the order's inquiry is adopted instead of duplicated,
// so one pair of goods never carries two live invoices.
func CreateDraftForOrder(ctx context.Context, tx *gorm.DB, order *models.Order, numberPrefix string) (*models.Invoice, error) {
	existing, err := findActiveForOrder(ctx, tx, order)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.OrderID == nil {
			if err := tx.WithContext(ctx).Model(&models.Invoice{}).
				Where("id = ?", existing.ID).
				Update("order_id", order.ID).Error; err != nil {
				return nil, fmt.Errorf("attach invoice to order: %w", err)
			}
			existing.OrderID = &order.ID
		}
		return existing, nil
	}

	number, err := numbering.NextNumber(ctx, tx, numbering.SequenceInvoices, numberPrefix, time.Now())
	if err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		ID:             uuid.New(),
		InvoiceNumber:  number,
		OrderID:        &order.ID,
		InquiryID:      order.InquiryID,
		BuyerID:        order.BuyerID,
		SellerID:       order.SellerID,
		ProductID:      order.ProductID,
		Quantity:       order.FinalQuantity,
		UnitPrice:      order.FinalPrice,
		ShippingCost:   order.ShippingCost,
		ShippingMethod: order.ShippingTerms,
		TotalAmount:    order.TotalAmount,
		Currency:       order.Currency,
		Status:         enums.InvoiceStatusDraft,
	}
	if err := tx.WithContext(ctx).Create(invoice).Error; err != nil {
		return nil, fmt.Errorf("create draft invoice: %w", err)
	}
	return invoice, nil
}

func findActiveForOrder(ctx context.Context, tx *gorm.DB, order *models.Order) (*models.Invoice, error) {
	query := tx.WithContext(ctx).Where("status <> ?", enums.InvoiceStatusCancelled)
	if order.InquiryID != nil {
		query = query.Where("order_id = ? OR inquiry_id = ?", order.ID, *order.InquiryID)
	} else {
		query = query.Where("order_id = ?", order.ID)
	}
	var invoice models.Invoice
	if err := query.First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("check existing invoice: %w", err)
	}
	return &invoice, nil
}
