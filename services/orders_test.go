package services

import (
	"context"
	"errors"
	"testing"
)

func TestOrders_ListAndGet(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()
	co := NewCheckout(store, taxRate, nopLog)

	sessions := NewSessions()
	mine := sessions.Open("me")
	mine.SignIn(User{ID: "me"})
	theirs := sessions.Open("them")
	theirs.SignIn(User{ID: "them"})

	var myIDs []string
	for i := 0; i < 3; i++ {
		mine.WithCart(func(c *Cart) { c.AddLine(CartLine{ID: "a", UnitPrice: dec("100")}) })
		o, err := co.PlaceOrder(ctx, mine, "upi")
		if err != nil {
			t.Fatalf("PlaceOrder: %v", err)
		}
		myIDs = append(myIDs, o.ID)
	}
	theirs.WithCart(func(c *Cart) { c.AddLine(CartLine{ID: "b", UnitPrice: dec("50")}) })
	other, err := co.PlaceOrder(ctx, theirs, "cod")
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	orders := NewOrders(store, 2, nopLog)
	list, err := orders.List(ctx, "me")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List returned %d orders, want limit 2", len(list))
	}
	if list[0].CreatedAt.Before(list[1].CreatedAt) {
		t.Error("orders not newest first")
	}

	got, err := orders.Get(ctx, "me", myIDs[0])
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].MenuItemID != "a" || !got.TotalAmount.Equal(dec("105")) {
		t.Errorf("order = %+v", got)
	}

	all, err := NewOrders(store, 0, nopLog).List(ctx, "me")
	if err != nil {
		t.Fatalf("List without limit: %v", err)
	}
	if len(all) != len(myIDs) {
		t.Errorf("List without limit returned %d orders, want %d", len(all), len(myIDs))
	}

	for _, id := range []string{other.ID, "nope", "6f1d1a52-0000-4000-8000-000000000000"} {
		if _, err := orders.Get(ctx, "me", id); !errors.Is(err, ErrOrderNotFound) {
			t.Errorf("Get(%s) err = %v, want ErrOrderNotFound", id, err)
		}
	}
}
