package services

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tasty-canteen/db"
)

// Storefront bundles the services the views need.
type Storefront struct {
	Name      string
	Currency  string
	Catalog   *Catalog
	Checkout  *Checkout
	Orders    *Orders
	Customers *Customers
	Sessions  *Sessions
	Throttle  *SignInThrottle
}

type Options struct {
	Name        string
	Currency    string
	TaxRate     decimal.Decimal
	OrdersLimit int
	SessionTTL  time.Duration
}

func NewStorefront(store db.RecordStore, opts Options, log *zap.Logger) *Storefront {
	return &Storefront{
		Name:      opts.Name,
		Currency:  opts.Currency,
		Catalog:   NewCatalog(store, log),
		Checkout:  NewCheckout(store, opts.TaxRate, log),
		Orders:    NewOrders(store, opts.OrdersLimit, log),
		Customers: NewCustomers(store, log),
		Sessions:  NewSessionsWithTTL(opts.SessionTTL),
		Throttle:  NewSignInThrottle(),
	}
}
