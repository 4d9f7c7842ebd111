package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tasty-canteen/db"
	"tasty-canteen/models"
)

// Checkout turns a session's cart into a persisted order.
type Checkout struct {
	store   db.RecordStore
	taxRate decimal.Decimal
	log     *zap.Logger
}

func NewCheckout(store db.RecordStore, taxRate decimal.Decimal, log *zap.Logger) *Checkout {
	return &Checkout{store: store, taxRate: taxRate, log: log.Named("checkout")}
}

func (c *Checkout) TaxRate() decimal.Decimal { return c.taxRate }

// Quote prices the session's current cart.
func (c *Checkout) Quote(sess *Session) Quote {
	return QuoteFor(sess.Cart().Total, c.taxRate)
}

// PlaceOrder writes the order and its items in one transaction and clears the
// cart on success. Preconditions are checked before anything is written. The
// session stays locked for the whole call.
func (c *Checkout) PlaceOrder(ctx context.Context, sess *Session, method string) (models.Order, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.user == nil {
		return models.Order{}, ErrNotSignedIn
	}
	cart := sess.cart
	if cart.IsEmpty() {
		return models.Order{}, ErrEmptyCart
	}
	pm, err := models.ParsePaymentMethod(method)
	if err != nil {
		return models.Order{}, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}

	user := *sess.user
	lines := cart.Lines()
	quote := QuoteFor(cart.Total(), c.taxRate)

	var order models.Order
	err = c.store.WithTx(ctx, func(tx db.RecordStore) error {
		rec, err := tx.Insert(ctx, db.TableOrders, db.Record{
			"user_id":        user.ID,
			"total_amount":   quote.Total,
			"payment_method": string(pm),
			"payment_status": string(models.PaymentStatusPending),
			"order_status":   string(models.OrderStatusPending),
		})
		if err != nil {
			return checkoutErr(StepInsertOrder, err)
		}
		order, err = decodeOrder(rec)
		if err != nil {
			return checkoutErr(StepInsertOrder, err)
		}

		items := make([]db.Record, len(lines))
		for i, l := range lines {
			items[i] = db.Record{
				"order_id":     order.ID,
				"menu_item_id": l.ID,
				"quantity":     l.Quantity,
				"price":        l.UnitPrice,
			}
		}
		recs, err := tx.InsertMany(ctx, db.TableOrderItems, items)
		if err != nil {
			return checkoutErr(StepInsertItems, err)
		}
		order.Items, err = decodeOrderItems(recs)
		if err != nil {
			return checkoutErr(StepInsertItems, err)
		}
		return nil
	})
	if err != nil {
		ce := checkoutErr(StepCommit, err)
		c.log.Error("place order failed",
			zap.String("user_id", user.ID),
			zap.String("step", ce.Step),
			zap.Error(ce.Err))
		return models.Order{}, ce
	}

	cart.Clear()
	c.log.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", user.ID),
		zap.String("total", quote.Total.String()),
		zap.String("payment_method", string(pm)),
		zap.Int("lines", len(lines)))
	return order, nil
}
