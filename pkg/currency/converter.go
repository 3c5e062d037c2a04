package currency

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tradelinkhq/tradelink-backend/pkg/refdata"
)

// Converter turns an amount in one currency into another. Results are for
// display only and are never persisted as authoritative totals.
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}

// FixedRateConverter converts through USD using a static rate table. It stands
// in for the external conversion service in development and tests.
type FixedRateConverter struct {
	usdRates map[string]decimal.Decimal
}

// NewFixedRateConverter builds a converter from per-USD rates. A nil map
// seeds a small default table.
func NewFixedRateConverter(usdRates map[string]decimal.Decimal) *FixedRateConverter {
	if usdRates == nil {
		usdRates = map[string]decimal.Decimal{
			"USD": decimal.NewFromInt(1),
			"EUR": decimal.RequireFromString("0.92"),
			"GBP": decimal.RequireFromString("0.79"),
			"INR": decimal.RequireFromString("83.10"),
			"CNY": decimal.RequireFromString("7.24"),
			"JPY": decimal.RequireFromString("149.50"),
			"SGD": decimal.RequireFromString("1.34"),
			"AED": decimal.RequireFromString("3.67"),
		}
	}
	return &FixedRateConverter{usdRates: usdRates}
}

// Convert converts amount from one currency to another via USD.
func (c *FixedRateConverter) Convert(_ context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if !refdata.IsCurrency(from) {
		return decimal.Zero, fmt.Errorf("unknown source currency %q", from)
	}
	if !refdata.IsCurrency(to) {
		return decimal.Zero, fmt.Errorf("unknown target currency %q", to)
	}
	if from == to {
		return amount, nil
	}

	fromRate, ok := c.usdRates[from]
	if !ok || fromRate.IsZero() {
		return decimal.Zero, fmt.Errorf("no rate for currency %q", from)
	}
	toRate, ok := c.usdRates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("no rate for currency %q", to)
	}

	return amount.Div(fromRate).Mul(toRate).Round(2), nil
}
