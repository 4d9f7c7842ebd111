package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentUPI  PaymentMethod = "upi"
	PaymentCard PaymentMethod = "card"
	PaymentCOD  PaymentMethod = "cod"
)

// PaymentMethods lists the accepted methods in checkout display order.
var PaymentMethods = []PaymentMethod{PaymentUPI, PaymentCard, PaymentCOD}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentUPI, PaymentCard, PaymentCOD:
		return m, nil
	default:
		return "", fmt.Errorf("invalid payment method: %q", s)
	}
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is a row from the orders table plus, when loaded, its items.
type Order struct {
	ID                   string
	UserID               string
	TotalAmount          decimal.Decimal // subtotal + tax, as computed at checkout
	PaymentMethod        PaymentMethod
	PaymentStatus        PaymentStatus
	OrderStatus          OrderStatus
	EstimatedWaitMinutes *int
	CreatedAt            time.Time
	Items                []OrderItem
}

// OrderItem snapshots the unit price at order time; it is never recomputed.
type OrderItem struct {
	ID         string
	OrderID    string
	MenuItemID string
	Quantity   int
	Price      decimal.Decimal
}

// Extension returns Quantity × Price.
func (i OrderItem) Extension() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
