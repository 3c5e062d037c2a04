package numbering

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
)

// Sequence names for document numbering.
const (
	SequenceOrders   = "orders"
	SequenceInvoices = "invoices"
)

// Next increments the named per-year counter and returns its new value. The
// caller supplies the transaction; the row update serializes concurrent
// allocations so numbers are monotonic and never reused.
func Next(ctx context.Context, tx *gorm.DB, name string, year int) (int64, error) {
	seq := models.NumberSequence{Name: name, Year: year, LastValue: 1}
	err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}, {Name: "year"}},
			DoUpdates: clause.Assignments(map[string]any{
				"last_value": gorm.Expr("number_sequences.last_value + 1"),
			}),
		}).
		Create(&seq).Error
	if err != nil {
		return 0, fmt.Errorf("advance sequence %s/%d: %w", name, year, err)
	}

	var current models.NumberSequence
	err = tx.WithContext(ctx).
		First(&current, "name = ? AND year = ?", name, year).Error
	if err != nil {
		return 0, fmt.Errorf("read sequence %s/%d: %w", name, year, err)
	}
	return current.LastValue, nil
}

// NextNumber formats the next counter value as a document number, e.g.
// ORD-2026-000017.
func NextNumber(ctx context.Context, tx *gorm.DB, name, prefix string, now time.Time) (string, error) {
	year := now.UTC().Year()
	value, err := Next(ctx, tx, name, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%06d", prefix, year, value), nil
}
