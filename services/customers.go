package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tasty-canteen/db"
	"tasty-canteen/lang"
)

// Customers resolves Telegram users to storefront identities.
type Customers struct {
	store db.RecordStore
	log   *zap.Logger
}

func NewCustomers(store db.RecordStore, log *zap.Logger) *Customers {
	return &Customers{store: store, log: log.Named("customers")}
}

// Lookup returns the customer already registered for tgUserID.
func (c *Customers) Lookup(ctx context.Context, tgUserID int64) (User, bool, error) {
	return lookupCustomer(ctx, c.store, tgUserID)
}

func lookupCustomer(ctx context.Context, store db.RecordStore, tgUserID int64) (User, bool, error) {
	recs, err := store.Query(ctx, db.TableCustomers, db.Query{
		Filters: []db.Filter{db.Eq("tg_user_id", tgUserID)},
		Limit:   1,
	})
	if err != nil {
		return User{}, false, fmt.Errorf("lookup customer %d: %w", tgUserID, err)
	}
	if len(recs) == 0 {
		return User{}, false, nil
	}
	return userFromRecord(recs[0]), true, nil
}

// EnsureCustomer returns the customer for tgUserID, creating it on first
// sign-in.
func (c *Customers) EnsureCustomer(ctx context.Context, tgUserID int64, phone, name string) (User, error) {
	var user User
	err := c.store.WithTx(ctx, func(tx db.RecordStore) error {
		existing, ok, err := lookupCustomer(ctx, tx, tgUserID)
		if err != nil {
			return err
		}
		if ok {
			user = existing
			return nil
		}
		rec, err := tx.Insert(ctx, db.TableCustomers, db.Record{
			"tg_user_id": tgUserID,
			"phone":      phone,
			"full_name":  name,
		})
		if err != nil {
			return err
		}
		user = userFromRecord(rec)
		c.log.Info("customer created", zap.Int64("tg_user_id", tgUserID), zap.String("user_id", user.ID))
		return nil
	})
	if err != nil {
		return User{}, fmt.Errorf("ensure customer %d: %w", tgUserID, err)
	}
	return user, nil
}

// SetLanguage records the customer's message language.
func (c *Customers) SetLanguage(ctx context.Context, tgUserID int64, code string) error {
	if !lang.Supported(code) {
		return fmt.Errorf("unsupported language %q", code)
	}
	_, err := c.store.Insert(ctx, db.TableCustomerLanguages, db.Record{
		"tg_user_id": tgUserID,
		"language":   code,
	})
	if err != nil {
		return fmt.Errorf("set language %d: %w", tgUserID, err)
	}
	return nil
}

// Language returns the last language the customer chose. ok is false when
// none was chosen or the lookup failed.
func (c *Customers) Language(ctx context.Context, tgUserID int64) (code string, ok bool) {
	recs, err := c.store.Query(ctx, db.TableCustomerLanguages, db.Query{
		Filters: []db.Filter{db.Eq("tg_user_id", tgUserID)},
		Order:   []db.Ordering{db.Asc("created_at")},
	})
	if err != nil {
		c.log.Warn("language lookup failed", zap.Int64("tg_user_id", tgUserID), zap.Error(err))
		return "", false
	}
	if len(recs) == 0 {
		return "", false
	}
	return recs[len(recs)-1].Str("language"), true
}

func userFromRecord(rec db.Record) User {
	return User{ID: rec.Str("id"), Name: rec.Str("full_name"), Phone: rec.Str("phone")}
}
