package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tasty-canteen/db"
	"tasty-canteen/models"
)

func newMemStore(t *testing.T) *db.MemoryStore {
	t.Helper()
	s, err := db.NewMemoryStore()
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	return s
}

func mustAdd(t *testing.T, c *Catalog, name string, cat models.Category, price, discount string, offer, available bool) models.MenuItem {
	t.Helper()
	item, err := c.AddItem(context.Background(), models.MenuItem{
		Name:               name,
		Price:              decimal.RequireFromString(price),
		Category:           cat,
		DiscountPercentage: decimal.RequireFromString(discount),
		SpecialOffer:       offer,
		Available:          available,
	})
	if err != nil {
		t.Fatalf("AddItem(%s): %v", name, err)
	}
	return item
}

// faultyStore injects errors into a RecordStore and counts writes.
type faultyStore struct {
	db.RecordStore
	queryErr  error
	insertErr map[string]error
	writes    *int
}

func newFaultyStore(inner db.RecordStore) *faultyStore {
	return &faultyStore{RecordStore: inner, insertErr: map[string]error{}, writes: new(int)}
}

func (f *faultyStore) Query(ctx context.Context, table string, q db.Query) ([]db.Record, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.RecordStore.Query(ctx, table, q)
}

func (f *faultyStore) Insert(ctx context.Context, table string, rec db.Record) (db.Record, error) {
	if err := f.insertErr[table]; err != nil {
		return nil, err
	}
	*f.writes++
	return f.RecordStore.Insert(ctx, table, rec)
}

func (f *faultyStore) InsertMany(ctx context.Context, table string, recs []db.Record) ([]db.Record, error) {
	if err := f.insertErr[table]; err != nil {
		return nil, err
	}
	*f.writes += len(recs)
	return f.RecordStore.InsertMany(ctx, table, recs)
}

func (f *faultyStore) WithTx(ctx context.Context, fn func(tx db.RecordStore) error) error {
	return f.RecordStore.WithTx(ctx, func(tx db.RecordStore) error {
		return fn(&faultyStore{RecordStore: tx, queryErr: f.queryErr, insertErr: f.insertErr, writes: f.writes})
	})
}

var nopLog = zap.NewNop()
