package services

import (
	"github.com/shopspring/decimal"

	"tasty-canteen/models"
)

var hundred = decimal.NewFromInt(100)

// DiscountedPrice returns base × (100 − pct) / 100. It neither validates nor
// rounds; callers reject bad percentages at the boundary.
func DiscountedPrice(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(hundred.Sub(pct)).Shift(-2)
}

// EffectivePrice is the unit price a cart line gets for item.
func EffectivePrice(item models.MenuItem) decimal.Decimal {
	return DiscountedPrice(item.Price, item.DiscountPercentage)
}

type Quote struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

func QuoteFor(subtotal, rate decimal.Decimal) Quote {
	tax := subtotal.Mul(rate)
	return Quote{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}
}

// FormatMoney renders d with two decimals, e.g. "₹262.50". Display only.
func FormatMoney(d decimal.Decimal, currency string) string {
	return currency + d.StringFixed(2)
}

// FormatPercent renders a rate such as 0.05 as "5".
func FormatPercent(rate decimal.Decimal) string {
	return rate.Mul(hundred).String()
}
