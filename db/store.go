package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Table names known to the store.
const (
	TableMenuItems  = "menu_items"
	TableOrders     = "orders"
	TableOrderItems = "order_items"
	TableCustomers  = "customers"

	// Append-only; the newest row per tg_user_id wins.
	TableCustomerLanguages = "customer_languages"
)

var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
)

// schema lists the columns each table exposes. Every identifier that reaches
// SQL is checked against it.
var schema = map[string][]string{
	TableMenuItems: {
		"id", "name", "description", "price", "image_url", "is_available",
		"type", "is_special_offer", "discount_percentage", "created_at",
	},
	TableOrders: {
		"id", "user_id", "total_amount", "payment_method", "payment_status",
		"order_status", "estimated_wait_time", "created_at",
	},
	TableOrderItems: {
		"id", "order_id", "menu_item_id", "quantity", "price", "created_at",
	},
	TableCustomers: {
		"id", "tg_user_id", "phone", "full_name", "created_at",
	},
	TableCustomerLanguages: {
		"id", "tg_user_id", "language", "created_at",
	},
}

// Filter is an equality predicate: column = value.
type Filter struct {
	Column string
	Value  any
}

// Eq builds a Filter.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

// Ordering sorts results by one column.
type Ordering struct {
	Column     string
	Descending bool
}

func Asc(column string) Ordering  { return Ordering{Column: column} }
func Desc(column string) Ordering { return Ordering{Column: column, Descending: true} }

// Query selects rows of one table. Limit <= 0 means no limit.
type Query struct {
	Filters []Filter
	Order   []Ordering
	Limit   int
}

// RecordStore is the data-service boundary. Filtering, sorting and id
// generation happen behind it.
type RecordStore interface {
	Query(ctx context.Context, table string, q Query) ([]Record, error)
	Insert(ctx context.Context, table string, rec Record) (Record, error)
	// InsertMany inserts all records or none.
	InsertMany(ctx context.Context, table string, recs []Record) ([]Record, error)
	// WithTx runs fn against a store bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx RecordStore) error) error
}

// Columns returns the column list of table.
func Columns(table string) ([]string, error) {
	cols, ok := schema[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return cols, nil
}

func checkColumn(table, column string) error {
	cols, err := Columns(table)
	if err != nil {
		return err
	}
	for _, c := range cols {
		if c == column {
			return nil
		}
	}
	return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, column)
}

func checkQuery(table string, q Query) error {
	if _, err := Columns(table); err != nil {
		return err
	}
	for _, f := range q.Filters {
		if err := checkColumn(table, f.Column); err != nil {
			return err
		}
	}
	for _, o := range q.Order {
		if err := checkColumn(table, o.Column); err != nil {
			return err
		}
	}
	return nil
}

// recordColumns validates rec against table and returns its keys sorted.
func recordColumns(table string, rec Record) ([]string, error) {
	if _, err := Columns(table); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(rec))
	for k := range rec {
		if err := checkColumn(table, k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
