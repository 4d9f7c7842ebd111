package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Category is the closed set of menu item kinds.
type Category string

const (
	CategoryVeg    Category = "veg"
	CategoryNonVeg Category = "non-veg"
	CategoryEgg    Category = "egg"
	CategoryCombo  Category = "combo"
)

// Categories lists every category in menu display order.
var Categories = []Category{CategoryVeg, CategoryNonVeg, CategoryEgg, CategoryCombo}

func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryVeg, CategoryNonVeg, CategoryEgg, CategoryCombo:
		return c, nil
	default:
		return "", fmt.Errorf("invalid category: %q", s)
	}
}

type MenuItem struct {
	ID                 string
	Name               string
	Description        string
	Price              decimal.Decimal
	ImageURL           string
	Available          bool
	Category           Category
	SpecialOffer       bool
	DiscountPercentage decimal.Decimal // 0-100
}

// HasDiscount reports whether a non-zero discount applies.
func (m MenuItem) HasDiscount() bool {
	return m.DiscountPercentage.IsPositive()
}
