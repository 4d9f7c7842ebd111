// Package seed loads the demo menu shipped with the binary.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"tasty-canteen/models"
)

//go:embed menu.json
var menuJSON []byte

type menuEntry struct {
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	ImageURL           string          `json:"image_url"`
	Type               string          `json:"type"`
	SpecialOffer       bool            `json:"is_special_offer"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Unavailable        bool            `json:"unavailable"`
}

// Menu returns the embedded demo menu.
func Menu() ([]models.MenuItem, error) {
	var entries []menuEntry
	if err := json.Unmarshal(menuJSON, &entries); err != nil {
		return nil, fmt.Errorf("decode seed menu: %w", err)
	}
	items := make([]models.MenuItem, len(entries))
	for i, e := range entries {
		cat, err := models.ParseCategory(e.Type)
		if err != nil {
			return nil, fmt.Errorf("seed item %q: %w", e.Name, err)
		}
		items[i] = models.MenuItem{
			Name:               e.Name,
			Description:        e.Description,
			Price:              e.Price,
			ImageURL:           e.ImageURL,
			Available:          !e.Unavailable,
			Category:           cat,
			SpecialOffer:       e.SpecialOffer,
			DiscountPercentage: e.DiscountPercentage,
		}
	}
	return items, nil
}

// Adder inserts one menu item; *services.Catalog satisfies it.
type Adder interface {
	AddItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error)
}

// Run adds every demo item through a and returns how many were added.
func Run(ctx context.Context, a Adder) (int, error) {
	items, err := Menu()
	if err != nil {
		return 0, err
	}
	for i, it := range items {
		if _, err := a.AddItem(ctx, it); err != nil {
			return i, err
		}
	}
	return len(items), nil
}
