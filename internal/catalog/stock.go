package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
)

// Stock mutations run as single guarded UPDATE statements so two concurrent
// callers can never both observe the same remaining quantity. A zero
// RowsAffected means the guard lost, never a silent no-op.

// ReserveStock holds qty units against open inquiries/orders. Fails with
// INSUFFICIENT_STOCK when qty exceeds the remaining quantity at execution
// time, leaving the row untouched.
func ReserveStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reserve quantity must be positive")
	}

	res := tx.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("product_id = ? AND declared_qty - reserved_qty >= ?", productID, qty).
		Update("reserved_qty", gorm.Expr("reserved_qty + ?", qty))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "db: reserve stock")
	}
	if res.RowsAffected == 0 {
		return stockGuardFailure(ctx, tx, productID, fmt.Sprintf("cannot reserve %d units", qty))
	}
	return nil
}

// ReleaseStock returns qty previously reserved units to the open pool.
func ReleaseStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "release quantity must be positive")
	}

	res := tx.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("product_id = ? AND reserved_qty >= ?", productID, qty).
		Update("reserved_qty", gorm.Expr("reserved_qty - ?", qty))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "db: release stock")
	}
	if res.RowsAffected == 0 {
		return stockGuardFailure(ctx, tx, productID, fmt.Sprintf("cannot release %d units", qty))
	}
	return nil
}

// DeductStock permanently removes qty reserved units. Used on invoice
// confirmation; declared and reserved shrink together so remaining stock is
// unchanged.
func DeductStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "deduct quantity must be positive")
	}

	res := tx.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("product_id = ? AND reserved_qty >= ?", productID, qty).
		Updates(map[string]any{
			"declared_qty": gorm.Expr("declared_qty - ?", qty),
			"reserved_qty": gorm.Expr("reserved_qty - ?", qty),
		})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "db: deduct stock")
	}
	if res.RowsAffected == 0 {
		return stockGuardFailure(ctx, tx, productID, fmt.Sprintf("cannot deduct %d units", qty))
	}
	return nil
}

// DeactivateIfDepleted turns the product inactive once its remaining stock
// reaches zero. Callers run it after every reservation.
func DeactivateIfDepleted(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error {
	res := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where(
			"id = ? AND is_active = ? AND EXISTS (SELECT 1 FROM stock_items s WHERE s.product_id = products.id AND s.declared_qty - s.reserved_qty <= 0)",
			productID, true,
		).
		Update("is_active", false)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "db: deactivate depleted product")
	}
	return nil
}

func stockGuardFailure(ctx context.Context, tx *gorm.DB, productID uuid.UUID, msg string) error {
	var item models.StockItem
	if err := tx.WithContext(ctx).First(&item, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load stock")
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, msg).WithDetails(map[string]any{
		"product_id":   productID,
		"declared_qty": item.DeclaredQty,
		"reserved_qty": item.ReservedQty,
	})
}
