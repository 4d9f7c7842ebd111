package db

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one row as column -> value. Values coming back from Postgres are
// JSON-decoded (json.Number, string, bool, nil); values from MemoryStore keep
// the Go types they were inserted with. The accessors below accept both.
type Record map[string]any

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Str returns the value as a string; "" when missing or nil.
func (r Record) Str(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns false when missing or not a bool.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Decimal returns decimal.Zero when missing or nil.
func (r Record) Decimal(key string) (decimal.Decimal, error) {
	d, ok, err := toDecimal(r[key])
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	if !ok {
		return decimal.Zero, nil
	}
	return d, nil
}

// Int64 returns 0 when missing or nil.
func (r Record) Int64(key string) (int64, error) {
	v := r[key]
	if v == nil {
		return 0, nil
	}
	d, ok, err := toDecimal(v)
	if err != nil || !ok {
		return 0, fmt.Errorf("%s: not a number: %v", key, v)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%s: not an integer: %s", key, d)
	}
	return d.IntPart(), nil
}

// OptInt returns nil when the column is missing or NULL.
func (r Record) OptInt(key string) (*int, error) {
	if r[key] == nil {
		return nil, nil
	}
	n, err := r.Int64(key)
	if err != nil {
		return nil, err
	}
	i := int(n)
	return &i, nil
}

// Time parses RFC 3339 strings (as produced by to_jsonb) or returns a stored time.Time.
func (r Record) Time(key string) (time.Time, error) {
	switch v := r[key].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("%s: %w", key, err)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("%s: unexpected time value %T", key, v)
	}
}

// toDecimal converts numeric values; ok is false for nil.
func toDecimal(v any) (d decimal.Decimal, ok bool, err error) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, false, nil
	case decimal.Decimal:
		return n, true, nil
	case json.Number:
		d, err = decimal.NewFromString(n.String())
		return d, err == nil, err
	case string:
		d, err = decimal.NewFromString(n)
		return d, err == nil, err
	case float64:
		return decimal.NewFromFloat(n), true, nil
	case float32:
		return decimal.NewFromFloat32(n), true, nil
	case int:
		return decimal.NewFromInt(int64(n)), true, nil
	case int32:
		return decimal.NewFromInt32(n), true, nil
	case int64:
		return decimal.NewFromInt(n), true, nil
	case uint64:
		return decimal.RequireFromString(strconv.FormatUint(n, 10)), true, nil
	default:
		return decimal.Zero, false, fmt.Errorf("not a number: %T", v)
	}
}
