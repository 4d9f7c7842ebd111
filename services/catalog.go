package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tasty-canteen/db"
	"tasty-canteen/models"
)

// View names one catalog listing.
type View string

const (
	ViewVeg    View = View(models.CategoryVeg)
	ViewNonVeg View = View(models.CategoryNonVeg)
	ViewEgg    View = View(models.CategoryEgg)
	ViewCombo  View = View(models.CategoryCombo)
	ViewOffers View = "offers"
	ViewAll    View = "all"
)

func ParseView(s string) (View, error) {
	switch v := View(s); v {
	case ViewVeg, ViewNonVeg, ViewEgg, ViewCombo, ViewOffers, ViewAll:
		return v, nil
	default:
		return "", fmt.Errorf("unknown menu view: %q", s)
	}
}

// query returns the record-store query behind v. Every view lists available
// items only.
func (v View) query() db.Query {
	available := db.Eq("is_available", true)
	switch v {
	case ViewCombo:
		return db.Query{Filters: []db.Filter{db.Eq("type", string(v)), available}, Order: []db.Ordering{db.Asc("price")}}
	case ViewOffers:
		return db.Query{Filters: []db.Filter{db.Eq("is_special_offer", true), available}, Order: []db.Ordering{db.Desc("discount_percentage")}}
	case ViewAll:
		return db.Query{Filters: []db.Filter{available}, Order: []db.Ordering{db.Asc("name")}}
	default:
		return db.Query{Filters: []db.Filter{db.Eq("type", string(v)), available}, Order: []db.Ordering{db.Asc("name")}}
	}
}

// MenuGroups is the unified menu split by dietary category.
type MenuGroups struct {
	Veg    []models.MenuItem `json:"veg"`
	Egg    []models.MenuItem `json:"egg"`
	NonVeg []models.MenuItem `json:"non_veg"`
}

type Catalog struct {
	store db.RecordStore
	log   *zap.Logger
}

func NewCatalog(store db.RecordStore, log *zap.Logger) *Catalog {
	return &Catalog{store: store, log: log.Named("catalog")}
}

// List runs one query for view. Records that fail validation are skipped.
func (c *Catalog) List(ctx context.Context, view View) ([]models.MenuItem, error) {
	recs, err := c.store.Query(ctx, db.TableMenuItems, view.query())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", view, err)
	}
	items := make([]models.MenuItem, 0, len(recs))
	for _, rec := range recs {
		item, err := decodeMenuItem(rec)
		if err != nil {
			c.log.Warn("skipping menu item", zap.String("id", rec.Str("id")), zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Grouped returns the unified menu. Combos are listed by their own view.
func (c *Catalog) Grouped(ctx context.Context) (MenuGroups, error) {
	items, err := c.List(ctx, ViewAll)
	if err != nil {
		return MenuGroups{}, err
	}
	g := MenuGroups{Veg: []models.MenuItem{}, Egg: []models.MenuItem{}, NonVeg: []models.MenuItem{}}
	for _, it := range items {
		switch it.Category {
		case models.CategoryVeg:
			g.Veg = append(g.Veg, it)
		case models.CategoryEgg:
			g.Egg = append(g.Egg, it)
		case models.CategoryNonVeg:
			g.NonVeg = append(g.NonVeg, it)
		}
	}
	return g, nil
}

// Item returns one available menu item.
func (c *Catalog) Item(ctx context.Context, id string) (models.MenuItem, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.MenuItem{}, ErrItemNotFound
	}
	recs, err := c.store.Query(ctx, db.TableMenuItems, db.Query{
		Filters: []db.Filter{db.Eq("id", id), db.Eq("is_available", true)},
		Limit:   1,
	})
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("get menu item %s: %w", id, err)
	}
	if len(recs) == 0 {
		return models.MenuItem{}, ErrItemNotFound
	}
	item, err := decodeMenuItem(recs[0])
	if err != nil {
		c.log.Warn("invalid menu item", zap.String("id", id), zap.Error(err))
		return models.MenuItem{}, ErrItemNotFound
	}
	return item, nil
}

// AddItem validates item and inserts it. Used by the seed command.
func (c *Catalog) AddItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	if err := validateMenuItem(item); err != nil {
		return models.MenuItem{}, err
	}
	rec, err := c.store.Insert(ctx, db.TableMenuItems, db.Record{
		"name":                item.Name,
		"description":         item.Description,
		"price":               item.Price,
		"image_url":           item.ImageURL,
		"is_available":        item.Available,
		"type":                string(item.Category),
		"is_special_offer":    item.SpecialOffer,
		"discount_percentage": item.DiscountPercentage,
	})
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("insert menu item %q: %w", item.Name, err)
	}
	return decodeMenuItem(rec)
}

func validateMenuItem(item models.MenuItem) error {
	if item.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMenuItem)
	}
	if item.Price.IsNegative() {
		return fmt.Errorf("%w: price must be >= 0", ErrInvalidMenuItem)
	}
	if _, err := models.ParseCategory(string(item.Category)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMenuItem, err)
	}
	if item.DiscountPercentage.IsNegative() || item.DiscountPercentage.GreaterThan(hundred) {
		return fmt.Errorf("%w: discount %s outside [0,100]", ErrInvalidMenuItem, item.DiscountPercentage)
	}
	return nil
}

func decodeMenuItem(rec db.Record) (models.MenuItem, error) {
	cat, err := models.ParseCategory(rec.Str("type"))
	if err != nil {
		return models.MenuItem{}, err
	}
	price, err := rec.Decimal("price")
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("price: %w", err)
	}
	discount, err := rec.Decimal("discount_percentage")
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("discount_percentage: %w", err)
	}
	item := models.MenuItem{
		ID:                 rec.Str("id"),
		Name:               rec.Str("name"),
		Description:        rec.Str("description"),
		Price:              price,
		ImageURL:           rec.Str("image_url"),
		Available:          rec.Bool("is_available"),
		Category:           cat,
		SpecialOffer:       rec.Bool("is_special_offer"),
		DiscountPercentage: discount,
	}
	if err := validateMenuItem(item); err != nil {
		return models.MenuItem{}, err
	}
	return item, nil
}
