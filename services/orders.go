package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tasty-canteen/db"
	"tasty-canteen/models"
)

// Orders reads a user's order history. A limit <= 0 lists every order.
type Orders struct {
	store db.RecordStore
	limit int
	log   *zap.Logger
}

func NewOrders(store db.RecordStore, limit int, log *zap.Logger) *Orders {
	return &Orders{store: store, limit: limit, log: log.Named("orders")}
}

// List returns the user's newest orders first, without items.
func (o *Orders) List(ctx context.Context, userID string) ([]models.Order, error) {
	recs, err := o.store.Query(ctx, db.TableOrders, db.Query{
		Filters: []db.Filter{db.Eq("user_id", userID)},
		Order:   []db.Ordering{db.Desc("created_at")},
		Limit:   o.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	orders := make([]models.Order, 0, len(recs))
	for _, rec := range recs {
		ord, err := decodeOrder(rec)
		if err != nil {
			o.log.Warn("skipping order", zap.String("order_id", rec.Str("id")), zap.Error(err))
			continue
		}
		orders = append(orders, ord)
	}
	return orders, nil
}

// Get returns one of the user's orders with its items. Orders owned by
// someone else are reported as not found.
func (o *Orders) Get(ctx context.Context, userID, orderID string) (models.Order, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return models.Order{}, ErrOrderNotFound
	}
	recs, err := o.store.Query(ctx, db.TableOrders, db.Query{
		Filters: []db.Filter{db.Eq("id", orderID), db.Eq("user_id", userID)},
		Limit:   1,
	})
	if err != nil {
		return models.Order{}, fmt.Errorf("get order %s: %w", orderID, err)
	}
	if len(recs) == 0 {
		return models.Order{}, ErrOrderNotFound
	}
	ord, err := decodeOrder(recs[0])
	if err != nil {
		return models.Order{}, err
	}
	itemRecs, err := o.store.Query(ctx, db.TableOrderItems, db.Query{
		Filters: []db.Filter{db.Eq("order_id", orderID)},
		Order:   []db.Ordering{db.Asc("created_at")},
	})
	if err != nil {
		return models.Order{}, fmt.Errorf("get order %s items: %w", orderID, err)
	}
	ord.Items, err = decodeOrderItems(itemRecs)
	if err != nil {
		return models.Order{}, err
	}
	return ord, nil
}

func decodeOrder(rec db.Record) (models.Order, error) {
	total, err := rec.Decimal("total_amount")
	if err != nil {
		return models.Order{}, fmt.Errorf("total_amount: %w", err)
	}
	wait, err := rec.OptInt("estimated_wait_time")
	if err != nil {
		return models.Order{}, fmt.Errorf("estimated_wait_time: %w", err)
	}
	created, err := rec.Time("created_at")
	if err != nil {
		return models.Order{}, fmt.Errorf("created_at: %w", err)
	}
	return models.Order{
		ID:                   rec.Str("id"),
		UserID:               rec.Str("user_id"),
		TotalAmount:          total,
		PaymentMethod:        models.PaymentMethod(rec.Str("payment_method")),
		PaymentStatus:        models.PaymentStatus(rec.Str("payment_status")),
		OrderStatus:          models.OrderStatus(rec.Str("order_status")),
		EstimatedWaitMinutes: wait,
		CreatedAt:            created,
	}, nil
}

func decodeOrderItems(recs []db.Record) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(recs))
	for _, rec := range recs {
		qty, err := rec.Int64("quantity")
		if err != nil {
			return nil, fmt.Errorf("order item quantity: %w", err)
		}
		price, err := rec.Decimal("price")
		if err != nil {
			return nil, fmt.Errorf("order item price: %w", err)
		}
		items = append(items, models.OrderItem{
			ID:         rec.Str("id"),
			OrderID:    rec.Str("order_id"),
			MenuItemID: rec.Str("menu_item_id"),
			Quantity:   int(qty),
			Price:      price,
		})
	}
	return items, nil
}
