package seed

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"tasty-canteen/db"
	"tasty-canteen/models"
	"tasty-canteen/services"
)

func TestMenuCoversEveryCategory(t *testing.T) {
	items, err := Menu()
	if err != nil {
		t.Fatalf("Menu: %v", err)
	}
	seen := map[models.Category]int{}
	for _, it := range items {
		seen[it.Category]++
	}
	for _, c := range models.Categories {
		if seen[c] == 0 {
			t.Errorf("no seed items for %s", c)
		}
	}
}

func TestRunThroughCatalog(t *testing.T) {
	store, err := db.NewMemoryStore()
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	catalog := services.NewCatalog(store, zap.NewNop())
	n, err := Run(context.Background(), catalog)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	all, err := catalog.List(context.Background(), services.ViewAll)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != n {
		t.Errorf("listed %d of %d seeded items", len(all), n)
	}
	offers, _ := catalog.List(context.Background(), services.ViewOffers)
	if len(offers) == 0 || offers[0].Name != "Chicken Biryani" {
		t.Errorf("top offer = %v", offers)
	}
}
