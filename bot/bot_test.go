package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tasty-canteen/db"
	"tasty-canteen/lang"
	"tasty-canteen/models"
	"tasty-canteen/services"
)

type fakeAPI struct {
	sent      []tgbotapi.Chattable
	callbacks []tgbotapi.CallbackConfig
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		f.callbacks = append(f.callbacks, cb)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// texts returns the text of every message and edit sent so far.
func (f *fakeAPI) texts() []string {
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeAPI) last() string {
	t := f.texts()
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

func (f *fakeAPI) lastToast() string {
	if len(f.callbacks) == 0 {
		return ""
	}
	return f.callbacks[len(f.callbacks)-1].Text
}

type fixture struct {
	bot   *Bot
	api   *fakeAPI
	shop  *services.Storefront
	items map[string]models.MenuItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := db.NewMemoryStore()
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	shop := services.NewStorefront(store, services.Options{
		Name:     "Tasty Canteen",
		Currency: "₹",
		TaxRate:  decimal.RequireFromString("0.05"),
	}, zap.NewNop())
	f := &fixture{api: &fakeAPI{}, shop: shop, items: map[string]models.MenuItem{}}
	for _, it := range []models.MenuItem{
		{Name: "Veg Thali", Category: models.CategoryVeg, Price: decimal.NewFromInt(200), DiscountPercentage: decimal.NewFromInt(20), SpecialOffer: true, Available: true},
		{Name: "Masala Chai", Category: models.CategoryVeg, Price: decimal.NewFromInt(50), Available: true},
	} {
		added, err := shop.Catalog.AddItem(context.Background(), it)
		if err != nil {
			t.Fatalf("AddItem: %v", err)
		}
		f.items[added.Name] = added
	}
	f.bot = newBot(f.api, shop, zap.NewNop())
	f.bot.setLang(userID, lang.En)
	return f
}

const userID int64 = 777

func (f *fixture) message(text string) {
	f.bot.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: userID},
		From: &tgbotapi.User{ID: userID, FirstName: "Asha"},
	}})
}

func (f *fixture) click(data string) {
	f.bot.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{MessageID: 42, Chat: &tgbotapi.Chat{ID: userID}},
		Data:    data,
	}})
}

func (f *fixture) shareContact(owner int64) {
	f.bot.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:    &tgbotapi.Chat{ID: userID},
		From:    &tgbotapi.User{ID: userID},
		Contact: &tgbotapi.Contact{UserID: owner, PhoneNumber: "+919800000000", FirstName: "Asha"},
	}})
}

func (f *fixture) cart() services.CartView {
	return f.bot.session(userID).Cart()
}

func TestCommand(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/start", "/start"},
		{"/menu@TastyBot", "/menu"},
		{"  /orders please  ", "/orders"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := command(tt.in); got != tt.want {
			t.Errorf("command(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBot_StartAsksLanguageOnce(t *testing.T) {
	f := newFixture(t)
	f.message("/start")
	if !strings.Contains(f.api.last(), "Choose a language") {
		t.Fatalf("first /start = %q", f.api.last())
	}
	f.click("lang:hi")
	if code, ok := f.shop.Customers.Language(context.Background(), userID); !ok || code != lang.Hi {
		t.Errorf("stored language = %q, %v", code, ok)
	}
	f.message("/start")
	if strings.Contains(f.api.last(), "Choose a language") {
		t.Error("language asked again")
	}
}

func TestBot_AddToCartShowsToast(t *testing.T) {
	f := newFixture(t)
	thali := f.items["Veg Thali"]
	f.click("add:" + thali.ID)
	f.click("add:" + thali.ID)

	if got := f.api.lastToast(); got != "Veg Thali added to cart!" {
		t.Errorf("toast = %q", got)
	}
	v := f.cart()
	if len(v.Lines) != 1 || v.Lines[0].Quantity != 2 || !v.Total.Equal(decimal.NewFromInt(320)) {
		t.Errorf("cart = %+v", v)
	}

	f.click("add:not-a-real-id")
	if got := f.api.lastToast(); got != "This item is no longer available." {
		t.Errorf("unknown item toast = %q", got)
	}
}

func TestBot_CartControls(t *testing.T) {
	f := newFixture(t)
	chai := f.items["Masala Chai"]
	f.click("add:" + chai.ID)
	f.click("inc:" + chai.ID)
	if f.cart().ItemCount != 2 {
		t.Fatalf("after inc: %d items", f.cart().ItemCount)
	}
	if !strings.Contains(f.api.last(), "Total: ₹105.00") {
		t.Errorf("cart card = %q", f.api.last())
	}
	f.click("dec:" + chai.ID)
	f.click("dec:" + chai.ID)
	if f.cart().ItemCount != 0 {
		t.Errorf("after dec to zero: %d items", f.cart().ItemCount)
	}
	if f.api.last() != "Your cart is empty" {
		t.Errorf("empty cart card = %q", f.api.last())
	}
}

func TestBot_CheckoutFlow(t *testing.T) {
	f := newFixture(t)
	f.click("add:" + f.items["Veg Thali"].ID)
	f.click("add:" + f.items["Masala Chai"].ID)

	f.click("checkout")
	if f.api.last() != "Please sign in to place an order" {
		t.Fatalf("signed-out checkout = %q", f.api.last())
	}

	f.shareContact(12345)
	if _, ok := f.bot.session(userID).CurrentUser(); ok {
		t.Fatal("someone else's contact signed the user in")
	}

	f.shareContact(userID)
	if !strings.HasPrefix(f.api.last(), "Too many attempts") {
		t.Fatalf("retry inside cooldown = %q", f.api.last())
	}
	f.shop.Throttle.Succeeded(userID) // cooldown over

	f.shareContact(userID)
	if _, ok := f.bot.session(userID).CurrentUser(); !ok {
		t.Fatal("own contact did not sign in")
	}
	if !strings.Contains(f.api.last(), "Choose a payment method") {
		t.Errorf("after sign-in = %q", f.api.last())
	}

	f.click("pay:cod")
	texts := f.api.texts()
	found := false
	for _, s := range texts {
		if s == "Order placed successfully!" {
			found = true
		}
	}
	if !found {
		t.Fatalf("no success message in %q", texts)
	}
	if f.cart().ItemCount != 0 {
		t.Error("cart not cleared after order")
	}
	if !strings.Contains(f.api.last(), "My orders") || !strings.Contains(f.api.last(), "₹220.50") {
		t.Errorf("order history = %q", f.api.last())
	}
}

func TestBot_SignOutDropsCart(t *testing.T) {
	f := newFixture(t)
	f.shareContact(userID)
	f.click("add:" + f.items["Masala Chai"].ID)
	f.message("/signout")
	if f.api.last() != "You have been signed out." {
		t.Errorf("signout reply = %q", f.api.last())
	}
	if f.cart().ItemCount != 0 {
		t.Error("cart survived sign-out")
	}
	if _, ok := f.bot.session(userID).CurrentUser(); ok {
		t.Error("still signed in")
	}
}

func TestBot_OffersView(t *testing.T) {
	f := newFixture(t)
	f.message("/offers")
	got := f.api.last()
	if !strings.Contains(got, "Veg Thali · ₹160.00") || strings.Contains(got, "Masala Chai") {
		t.Errorf("offers = %q", got)
	}
}

func TestBot_ServeHandlesUpdatesUntilClosed(t *testing.T) {
	f := newFixture(t)
	updates := make(chan tgbotapi.Update, 1)
	updates <- tgbotapi.Update{Message: &tgbotapi.Message{
		Text: "/menu",
		Chat: &tgbotapi.Chat{ID: userID},
		From: &tgbotapi.User{ID: userID},
	}}
	close(updates)
	f.bot.serve(context.Background(), updates)
	if !strings.Contains(f.api.last(), "Menu") {
		t.Errorf("after /menu update: %q", f.api.last())
	}
}

func TestBot_ServeStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan tgbotapi.Update) // never delivers, like a pending long poll
	done := make(chan struct{})
	go func() {
		f.bot.serve(ctx, updates)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("serve kept waiting on the poll after cancel")
	}
}
