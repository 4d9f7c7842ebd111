package services

import (
	"strings"
	"testing"
	"time"

	"tasty-canteen/lang"
	"tasty-canteen/models"
)

func TestBuildCustomerCard(t *testing.T) {
	wait := 15
	o := models.Order{
		ID:                   "3f0c6a7e-1111-4000-8000-000000000000",
		TotalAmount:          dec("262.5"),
		PaymentMethod:        models.PaymentUPI,
		PaymentStatus:        models.PaymentStatusPending,
		OrderStatus:          models.OrderStatusPreparing,
		EstimatedWaitMinutes: &wait,
		CreatedAt:            time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
		Items:                []models.OrderItem{{MenuItemID: "m1", Quantity: 2, Price: dec("100")}},
	}
	card := BuildCustomerCard(o, map[string]string{"m1": "Veg Thali"}, lang.En, "₹")
	for _, want := range []string{"#3f0c6a7e", "Veg Thali × 2 = ₹200.00", "₹262.50", "Preparing", "15 min"} {
		if !strings.Contains(card.Text, want) {
			t.Errorf("card missing %q:\n%s", want, card.Text)
		}
	}

	o.OrderStatus = models.OrderStatusCompleted
	card = BuildCustomerCard(o, nil, lang.Hi, "₹")
	if strings.Contains(card.Text, "मिनट") {
		t.Errorf("completed order should not show a wait time:\n%s", card.Text)
	}
	if !strings.Contains(card.Text, "पूरा हुआ") {
		t.Errorf("hindi card missing status label:\n%s", card.Text)
	}
}

func TestBuildCartCard(t *testing.T) {
	view := CartView{Lines: []CartLine{
		{ID: "a", Name: "Samosa", UnitPrice: dec("100"), Quantity: 2},
		{ID: "b", Name: "Chai", UnitPrice: dec("50"), Quantity: 1},
	}}
	card := BuildCartCard(view, QuoteFor(dec("250"), taxRate), "5", lang.En, "₹")
	for _, want := range []string{"Subtotal: ₹250.00", "Tax (5%): ₹12.50", "Total: ₹262.50"} {
		if !strings.Contains(card.Text, want) {
			t.Errorf("cart card missing %q:\n%s", want, card.Text)
		}
	}
	if got := card.Buttons[0][0].CallbackData; got != "dec:a" {
		t.Errorf("first button = %q, want dec:a", got)
	}

	empty := BuildCartCard(CartView{}, Quote{}, "5", lang.En, "₹")
	if empty.Text != "Your cart is empty" {
		t.Errorf("empty cart text = %q", empty.Text)
	}
}

func TestBuildPaymentCard(t *testing.T) {
	card := BuildPaymentCard(QuoteFor(dec("100"), taxRate), lang.En, "₹")
	row := card.Buttons[0]
	if len(row) != len(models.PaymentMethods) || row[0].CallbackData != "pay:upi" {
		t.Errorf("payment row = %+v", row)
	}
}

func TestBuildOrderHistory(t *testing.T) {
	empty := BuildOrderHistory(nil, lang.En, "₹")
	if empty.Text != "No orders yet" {
		t.Errorf("empty history = %q", empty.Text)
	}
	h := BuildOrderHistory([]models.Order{{ID: "abc", OrderStatus: models.OrderStatusCancelled, TotalAmount: dec("10")}}, lang.En, "₹")
	if len(h.Buttons) != 1 || h.Buttons[0][0].CallbackData != "order:abc" {
		t.Errorf("history buttons = %+v", h.Buttons)
	}
}
