package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"tasty-canteen/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDiscountedPrice(t *testing.T) {
	tests := []struct {
		base, pct, want string
	}{
		{"200", "20", "160"},
		{"200", "0", "200"},
		{"200", "100", "0"},
		{"99.99", "10", "89.991"},
		{"150", "12.5", "131.25"},
		{"0.0000000000000001", "50", "0.00000000000000005"},
		{"1", "33.333333333333333333", "0.66666666666666666667"},
	}
	for _, tt := range tests {
		got := DiscountedPrice(dec(tt.base), dec(tt.pct))
		if !got.Equal(dec(tt.want)) {
			t.Errorf("DiscountedPrice(%s, %s) = %s, want %s", tt.base, tt.pct, got, tt.want)
		}
	}
}

func TestEffectivePrice(t *testing.T) {
	plain := models.MenuItem{Price: dec("120")}
	if got := EffectivePrice(plain); !got.Equal(dec("120")) {
		t.Errorf("no discount: got %s", got)
	}
	combo := models.MenuItem{Price: dec("300"), Category: models.CategoryCombo, DiscountPercentage: dec("15")}
	if got := EffectivePrice(combo); !got.Equal(dec("255")) {
		t.Errorf("combo: got %s", got)
	}
}

func TestQuoteFor(t *testing.T) {
	q := QuoteFor(dec("250"), dec("0.05"))
	if !q.Subtotal.Equal(dec("250")) || !q.Tax.Equal(dec("12.5")) || !q.Total.Equal(dec("262.5")) {
		t.Errorf("QuoteFor = %+v", q)
	}
	zero := QuoteFor(decimal.Zero, dec("0.05"))
	if !zero.Total.IsZero() {
		t.Errorf("empty quote total = %s", zero.Total)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"262.5", "₹262.50"},
		{"0", "₹0.00"},
		{"89.991", "₹89.99"},
	}
	for _, tt := range tests {
		if got := FormatMoney(dec(tt.in), "₹"); got != tt.want {
			t.Errorf("FormatMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := FormatPercent(dec("0.05")); got != "5" {
		t.Errorf("FormatPercent = %q", got)
	}
}
