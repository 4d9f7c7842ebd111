package db

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func TestBuildSelect(t *testing.T) {
	sql, args, err := buildSelect(TableMenuItems, Query{
		Filters: []Filter{Eq("type", "veg"), Eq("is_available", true)},
		Order:   []Ordering{Asc("name")},
	})
	if err != nil {
		t.Fatalf("buildSelect: %v", err)
	}
	want := "SELECT to_jsonb(t) FROM menu_items t WHERE t.type = $1 AND t.is_available = $2 ORDER BY t.name ASC"
	if sql != want {
		t.Errorf("sql = %q\nwant  %q", sql, want)
	}
	if len(args) != 2 || args[0] != "veg" || args[1] != true {
		t.Errorf("args = %v", args)
	}
}

func TestBuildSelect_NullFilterAndLimit(t *testing.T) {
	sql, args, err := buildSelect(TableOrders, Query{
		Filters: []Filter{Eq("estimated_wait_time", nil), Eq("user_id", "u1")},
		Order:   []Ordering{Desc("created_at")},
		Limit:   20,
	})
	if err != nil {
		t.Fatalf("buildSelect: %v", err)
	}
	want := "SELECT to_jsonb(t) FROM orders t WHERE t.estimated_wait_time IS NULL AND t.user_id = $1 ORDER BY t.created_at DESC LIMIT 20"
	if sql != want {
		t.Errorf("sql = %q\nwant  %q", sql, want)
	}
	if len(args) != 1 || args[0] != "u1" {
		t.Errorf("args = %v", args)
	}
}

func TestBuildInsert(t *testing.T) {
	sql, args, err := buildInsert(TableOrderItems, Record{
		"quantity":     2,
		"order_id":     "o1",
		"menu_item_id": "m1",
		"price":        decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("buildInsert: %v", err)
	}
	want := "INSERT INTO order_items AS t (menu_item_id, order_id, price, quantity) VALUES ($1, $2, $3, $4) RETURNING to_jsonb(t)"
	if sql != want {
		t.Errorf("sql = %q\nwant  %q", sql, want)
	}
	if len(args) != 4 || args[0] != "m1" || args[3] != 2 {
		t.Errorf("args = %v", args)
	}
}

func TestBuildRejectsUnknownIdentifiers(t *testing.T) {
	if _, _, err := buildSelect("pg_user", Query{}); !errors.Is(err, ErrUnknownTable) {
		t.Errorf("buildSelect unknown table err = %v", err)
	}
	if _, _, err := buildInsert(TableOrders, Record{"id) VALUES (1); --": 1}); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("buildInsert unknown column err = %v", err)
	}
}

func TestDecodeRecordKeepsNumbersExact(t *testing.T) {
	rec, err := decodeRecord([]byte(`{"id":"o1","total_amount":262.50,"estimated_wait_time":null,"created_at":"2026-10-15T10:00:00.123456+00:00"}`))
	if err != nil {
		t.Fatalf("decodeRecord: %v", err)
	}
	total, err := rec.Decimal("total_amount")
	if err != nil {
		t.Fatalf("Decimal: %v", err)
	}
	if !total.Equal(decimal.RequireFromString("262.5")) {
		t.Errorf("total = %s, want 262.5", total)
	}
	wait, err := rec.OptInt("estimated_wait_time")
	if err != nil || wait != nil {
		t.Errorf("OptInt = %v, %v; want nil, nil", wait, err)
	}
	if ts, err := rec.Time("created_at"); err != nil || ts.IsZero() {
		t.Errorf("Time = %v, %v", ts, err)
	}
}

// Integration test against a real database. Skipped in -short mode or when
// TEST_DATABASE_URL is unset. The schema from migrations/ must be applied.
func TestPostgresStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("skipping postgres integration test: TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pgxpool.New: %v", err)
	}
	defer pool.Close()
	s := NewPostgresStore(pool)

	boom := errors.New("boom")
	var orderID string
	err = s.WithTx(ctx, func(tx RecordStore) error {
		order, err := tx.Insert(ctx, TableOrders, Record{
			"user_id":        "integration-test",
			"total_amount":   decimal.RequireFromString("262.5"),
			"payment_method": "cod",
			"payment_status": "pending",
			"order_status":   "pending",
		})
		if err != nil {
			return err
		}
		orderID = order.Str("id")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx err = %v, want boom", err)
	}
	recs, err := s.Query(ctx, TableOrders, Query{Filters: []Filter{Eq("id", orderID)}})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("rolled back order %s is visible", orderID)
	}
}
