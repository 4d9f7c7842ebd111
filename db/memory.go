package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
	"github.com/shopspring/decimal"
)

// memRow is what go-memdb indexes; Data holds the record itself.
type memRow struct {
	ID   string
	Seq  uint64
	Data Record
}

// MemoryStore implements RecordStore in-process on go-memdb. It backs
// STORE_DRIVER=memory and the test suites.
type MemoryStore struct {
	db  *memdb.MemDB
	seq *atomic.Uint64
	txn *memdb.Txn // set inside WithTx
	now func() time.Time
}

func NewMemoryStore() (*MemoryStore, error) {
	tables := make(map[string]*memdb.TableSchema, len(schema))
	for name := range schema {
		tables[name] = &memdb.TableSchema{
			Name: name,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
			},
		}
	}
	mdb, err := memdb.NewMemDB(&memdb.DBSchema{Tables: tables})
	if err != nil {
		return nil, fmt.Errorf("memdb: %w", err)
	}
	return &MemoryStore{db: mdb, seq: new(atomic.Uint64), now: time.Now}, nil
}

func (s *MemoryStore) Query(ctx context.Context, table string, q Query) ([]Record, error) {
	if err := checkQuery(table, q); err != nil {
		return nil, err
	}
	txn := s.txn
	if txn == nil {
		txn = s.db.Txn(false)
		defer txn.Abort()
	}
	it, err := txn.Get(table, "id")
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	var rows []*memRow
	for obj := it.Next(); obj != nil; obj = it.Next() {
		row := obj.(*memRow)
		if matches(row.Data, q.Filters) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Seq < rows[j].Seq })
	if len(q.Order) > 0 {
		sort.SliceStable(rows, func(i, j int) bool {
			for _, o := range q.Order {
				c := compareValues(rows[i].Data[o.Column], rows[j].Data[o.Column])
				if c == 0 {
					continue
				}
				if o.Descending {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}

	out := make([]Record, len(rows))
	for i, row := range rows {
		out[i] = row.Data.Clone()
	}
	return out, nil
}

func (s *MemoryStore) Insert(ctx context.Context, table string, rec Record) (Record, error) {
	var out Record
	err := s.WithTx(ctx, func(tx RecordStore) error {
		var err error
		out, err = tx.(*MemoryStore).insert(table, rec)
		return err
	})
	return out, err
}

func (s *MemoryStore) InsertMany(ctx context.Context, table string, recs []Record) ([]Record, error) {
	var out []Record
	err := s.WithTx(ctx, func(tx RecordStore) error {
		mtx := tx.(*MemoryStore)
		out = make([]Record, 0, len(recs))
		for _, rec := range recs {
			created, err := mtx.insert(table, rec)
			if err != nil {
				return err
			}
			out = append(out, created)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WithTx runs fn in one write transaction; go-memdb allows a single writer
// at a time, so concurrent WithTx calls serialize.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(tx RecordStore) error) error {
	if s.txn != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := s.db.Txn(true)
	defer txn.Abort() // no-op after Commit
	inner := &MemoryStore{db: s.db, seq: s.seq, txn: txn, now: s.now}
	if err := fn(inner); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// insert fills id, created_at and missing columns the way column defaults would.
func (s *MemoryStore) insert(table string, rec Record) (Record, error) {
	if _, err := recordColumns(table, rec); err != nil {
		return nil, err
	}
	cols, _ := Columns(table)
	data := make(Record, len(cols))
	for _, c := range cols {
		data[c] = rec[c]
	}
	if data.Str("id") == "" {
		data["id"] = uuid.NewString()
	}
	if data["created_at"] == nil {
		data["created_at"] = s.now().UTC()
	}
	id := data.Str("id")
	existing, err := s.txn.First(table, "id", id)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("insert %s: duplicate id %q", table, id)
	}
	row := &memRow{ID: id, Seq: s.seq.Add(1), Data: data}
	if err := s.txn.Insert(table, row); err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, err)
	}
	return data.Clone(), nil
}

func matches(rec Record, filters []Filter) bool {
	for _, f := range filters {
		v := rec[f.Column]
		if f.Value == nil || v == nil {
			if f.Value != nil || v != nil {
				return false
			}
			continue
		}
		if compareValues(v, f.Value) != 0 {
			return false
		}
	}
	return true
}

// compareValues sorts nil first. Numbers, times and bools compare natively;
// anything else compares by its string form.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if da, ok := numeric(a); ok {
		if db, ok := numeric(b); ok {
			return da.Cmp(db)
		}
	}
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// numeric converts Go number types; strings are never treated as numbers.
func numeric(v any) (decimal.Decimal, bool) {
	if _, isString := v.(string); isString {
		return decimal.Zero, false
	}
	d, ok, err := toDecimal(v)
	return d, ok && err == nil
}
