package currency

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestConvertSameCurrencyIsIdentity(t *testing.T) {
	conv := NewFixedRateConverter(nil)
	amount := decimal.RequireFromString("123.45")
	got, err := conv.Convert(context.Background(), amount, "USD", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(amount) {
		t.Fatalf("expected %s, got %s", amount, got)
	}
}

func TestConvertThroughUSD(t *testing.T) {
	conv := NewFixedRateConverter(map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(1),
		"INR": decimal.NewFromInt(80),
	})
	got, err := conv.Convert(context.Background(), decimal.NewFromInt(10), "USD", "INR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("expected 800, got %s", got)
	}
}

func TestConvertRejectsUnknownCurrency(t *testing.T) {
	conv := NewFixedRateConverter(nil)
	if _, err := conv.Convert(context.Background(), decimal.NewFromInt(1), "USD", "XXX"); err == nil {
		t.Fatal("expected error for unknown currency")
	}
	if _, err := conv.Convert(context.Background(), decimal.NewFromInt(1), "USD", "VND"); err == nil {
		t.Fatal("expected error for missing rate")
	}
}
