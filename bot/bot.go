package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tasty-canteen/lang"
	"tasty-canteen/models"
	"tasty-canteen/services"
)

// sender is the part of *tgbotapi.BotAPI the handlers use.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot is the Telegram storefront. Updates are handled one at a time.
type Bot struct {
	api   sender
	tg    *tgbotapi.BotAPI // nil when built with newBot in tests
	shop  *services.Storefront
	taxPc string
	log   *zap.Logger

	userLang   map[int64]string
	userLangMu sync.RWMutex
}

func New(token string, shop *services.Storefront, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	b := newBot(api, shop, log)
	b.tg = api
	b.log.Info("authorized", zap.String("username", api.Self.UserName))
	return b, nil
}

func newBot(api sender, shop *services.Storefront, log *zap.Logger) *Bot {
	return &Bot{
		api:      api,
		shop:     shop,
		taxPc:    services.FormatPercent(shop.Checkout.TaxRate()),
		log:      log.Named("bot"),
		userLang: make(map[int64]string),
	}
}

func (b *Bot) setBotCommands() error {
	cfg := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Home"},
		tgbotapi.BotCommand{Command: "menu", Description: "Browse the menu"},
		tgbotapi.BotCommand{Command: "offers", Description: "Special offers"},
		tgbotapi.BotCommand{Command: "combos", Description: "Combo meals"},
		tgbotapi.BotCommand{Command: "cart", Description: "Your cart"},
		tgbotapi.BotCommand{Command: "orders", Description: "My orders"},
		tgbotapi.BotCommand{Command: "language", Description: "Change language"},
		tgbotapi.BotCommand{Command: "signout", Description: "Sign out"},
	)
	_, err := b.api.Request(cfg)
	return err
}

// pollTimeout is the long-poll window in seconds.
const pollTimeout = 30

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	if err := b.setBotCommands(); err != nil {
		b.log.Warn("set commands failed", zap.Error(err))
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := b.tg.GetUpdatesChan(u)
	defer b.tg.StopReceivingUpdates()
	b.serve(ctx, updates)
	b.log.Info("stopped")
}

// serve handles updates until ctx is cancelled or updates is closed. It
// returns on cancellation without waiting for an in-flight poll.
func (b *Bot) serve(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	chatID := msg.Chat.ID
	userID := msg.From.ID

	if msg.Contact != nil {
		b.handleContact(ctx, chatID, userID, msg.Contact)
		return
	}

	switch command(msg.Text) {
	case "/start":
		b.handleStart(ctx, chatID, userID)
	case "/menu":
		b.sendCard(chatID, mainMenuCard(b.getLang(ctx, userID), b.session(userID).Cart().ItemCount))
	case "/offers":
		b.sendView(ctx, chatID, 0, userID, services.ViewOffers)
	case "/combos":
		b.sendView(ctx, chatID, 0, userID, services.ViewCombo)
	case "/cart":
		b.showCart(ctx, chatID, 0, userID)
	case "/orders":
		b.showOrders(ctx, chatID, 0, userID)
	case "/language":
		b.sendCard(chatID, languageCard())
	case "/signout":
		b.handleSignOut(ctx, chatID, userID)
	default:
		b.sendLang(ctx, chatID, userID, "unknown_command")
	}
}

// command returns the first word of text without any @botname suffix.
func command(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return cmd
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.From == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	msgID := cq.Message.MessageID
	userID := cq.From.ID
	action, arg, _ := strings.Cut(cq.Data, ":")
	toast := ""
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, toast)); err != nil {
			b.log.Debug("answer callback failed", zap.Error(err))
		}
	}()

	switch action {
	case "menu":
		b.editCard(chatID, msgID, mainMenuCard(b.getLang(ctx, userID), b.session(userID).Cart().ItemCount))
	case "cat":
		view, err := services.ParseView(arg)
		if err != nil {
			return
		}
		b.sendView(ctx, chatID, msgID, userID, view)
	case "add":
		toast = b.addToCart(ctx, userID, arg)
	case "inc":
		b.session(userID).WithCart(func(c *services.Cart) {
			if line, ok := c.Line(arg); ok {
				c.AddLine(line)
			}
		})
		b.showCart(ctx, chatID, msgID, userID)
	case "dec":
		b.session(userID).WithCart(func(c *services.Cart) { c.Decrement(arg) })
		b.showCart(ctx, chatID, msgID, userID)
	case "rm":
		b.session(userID).WithCart(func(c *services.Cart) { c.Remove(arg) })
		b.showCart(ctx, chatID, msgID, userID)
	case "cart":
		b.showCart(ctx, chatID, msgID, userID)
	case "clear":
		b.session(userID).WithCart(func(c *services.Cart) { c.Clear() })
		toast = lang.T(b.getLang(ctx, userID), "cart_cleared")
		b.showCart(ctx, chatID, msgID, userID)
	case "checkout":
		b.startCheckout(ctx, chatID, msgID, userID)
	case "pay":
		b.placeOrder(ctx, chatID, userID, arg)
	case "orders":
		b.showOrders(ctx, chatID, msgID, userID)
	case "order":
		b.showOrder(ctx, chatID, msgID, userID, arg)
	case "lang":
		b.handleLanguageChoice(ctx, chatID, userID, arg)
	}
}

func (b *Bot) session(userID int64) *services.Session {
	return b.shop.Sessions.Open(strconv.FormatInt(userID, 10))
}

func (b *Bot) handleStart(ctx context.Context, chatID, userID int64) {
	sess := b.session(userID)
	if _, signedIn := sess.CurrentUser(); !signedIn {
		u, ok, err := b.shop.Customers.Lookup(ctx, userID)
		if err != nil {
			b.log.Warn("customer lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		} else if ok {
			sess.SignIn(u)
		}
	}
	if _, ok := b.shop.Customers.Language(ctx, userID); !ok {
		b.sendCard(chatID, languageCard())
		return
	}
	l := b.getLang(ctx, userID)
	b.send(chatID, lang.T(l, "welcome", b.shop.Name))
	b.sendCard(chatID, mainMenuCard(l, sess.Cart().ItemCount))
}

func (b *Bot) handleLanguageChoice(ctx context.Context, chatID, userID int64, code string) {
	if !lang.Supported(code) {
		return
	}
	if err := b.shop.Customers.SetLanguage(ctx, userID, code); err != nil {
		b.log.Warn("set language failed", zap.Int64("user_id", userID), zap.Error(err))
	}
	b.setLang(userID, code)
	b.send(chatID, lang.T(code, "language_changed"))
	b.send(chatID, lang.T(code, "welcome", b.shop.Name))
	b.sendCard(chatID, mainMenuCard(code, b.session(userID).Cart().ItemCount))
}

// sendView shows a catalog view, editing msgID in place when it is non-zero.
// On a read failure the previous message is left as it was.
func (b *Bot) sendView(ctx context.Context, chatID int64, msgID int, userID int64, view services.View) {
	l := b.getLang(ctx, userID)
	count := b.session(userID).Cart().ItemCount
	var card services.CardContent
	if view == services.ViewAll {
		g, err := b.shop.Catalog.Grouped(ctx)
		if err != nil {
			b.log.Error("load menu failed", zap.String("view", string(view)), zap.Error(err))
			b.send(chatID, lang.T(l, loadFailedKey(view)))
			return
		}
		card = groupedCard(g, l, b.shop.Currency, count)
	} else {
		items, err := b.shop.Catalog.List(ctx, view)
		if err != nil {
			b.log.Error("load menu failed", zap.String("view", string(view)), zap.Error(err))
			b.send(chatID, lang.T(l, loadFailedKey(view)))
			return
		}
		card = itemsCard(view, items, l, b.shop.Currency, count)
	}
	b.upsertCard(chatID, msgID, card)
}

// addToCart returns the toast text for the add button.
func (b *Bot) addToCart(ctx context.Context, userID int64, itemID string) string {
	l := b.getLang(ctx, userID)
	item, err := b.shop.Catalog.Item(ctx, itemID)
	if err != nil {
		if !errors.Is(err, services.ErrItemNotFound) {
			b.log.Error("load menu item failed", zap.String("menu_item_id", itemID), zap.Error(err))
			return lang.T(l, "load_failed")
		}
		return lang.T(l, "item_not_found")
	}
	b.session(userID).WithCart(func(c *services.Cart) { c.AddItem(item) })
	return lang.T(l, "item_added", item.Name)
}

func (b *Bot) showCart(ctx context.Context, chatID int64, msgID int, userID int64) {
	sess := b.session(userID)
	card := services.BuildCartCard(sess.Cart(), b.shop.Checkout.Quote(sess), b.taxPc, b.getLang(ctx, userID), b.shop.Currency)
	b.upsertCard(chatID, msgID, card)
}

func (b *Bot) startCheckout(ctx context.Context, chatID int64, msgID int, userID int64) {
	l := b.getLang(ctx, userID)
	sess := b.session(userID)
	if _, ok := sess.CurrentUser(); !ok {
		b.requestContact(chatID, l)
		return
	}
	if sess.Cart().ItemCount == 0 {
		b.upsertCard(chatID, msgID, services.BuildCartCard(services.CartView{}, services.Quote{}, b.taxPc, l, b.shop.Currency))
		return
	}
	b.upsertCard(chatID, msgID, services.BuildPaymentCard(b.shop.Checkout.Quote(sess), l, b.shop.Currency))
}

func (b *Bot) placeOrder(ctx context.Context, chatID, userID int64, method string) {
	l := b.getLang(ctx, userID)
	_, err := b.shop.Checkout.PlaceOrder(ctx, b.session(userID), method)
	var ce *services.CheckoutError
	switch {
	case err == nil:
		b.send(chatID, lang.T(l, "order_placed"))
		b.showOrders(ctx, chatID, 0, userID)
	case errors.Is(err, services.ErrNotSignedIn):
		b.requestContact(chatID, l)
	case errors.Is(err, services.ErrEmptyCart):
		b.send(chatID, lang.T(l, "cart_empty"))
	case errors.Is(err, services.ErrInvalidPaymentMethod):
		b.send(chatID, lang.T(l, "invalid_payment"))
	case errors.As(err, &ce):
		b.send(chatID, lang.T(l, "order_failed", ce.Error()))
	default:
		b.log.Error("place order failed", zap.Int64("user_id", userID), zap.Error(err))
		b.send(chatID, lang.T(l, "order_failed", err.Error()))
	}
}

func (b *Bot) requestContact(chatID int64, langCode string) {
	msg := tgbotapi.NewMessage(chatID, lang.T(langCode, "sign_in_needed"))
	msg.ReplyMarkup = contactKeyboard(langCode)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// handleContact signs the user in from their own shared contact and resumes
// checkout when the cart has items.
func (b *Bot) handleContact(ctx context.Context, chatID, userID int64, c *tgbotapi.Contact) {
	l := b.getLang(ctx, userID)
	if wait := b.shop.Throttle.WaitSeconds(userID); wait > 0 {
		b.send(chatID, lang.T(l, "signin_wait", wait))
		return
	}
	if c.UserID != userID {
		secs := b.shop.Throttle.Failed(userID)
		b.log.Warn("foreign contact shared", zap.Int64("user_id", userID), zap.Int("cooldown_s", secs))
		b.requestContact(chatID, l)
		return
	}
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	u, err := b.shop.Customers.EnsureCustomer(ctx, userID, c.PhoneNumber, name)
	if err != nil {
		b.log.Error("sign in failed", zap.Int64("user_id", userID), zap.Error(err))
		b.send(chatID, lang.T(l, "order_failed", err.Error()))
		return
	}
	b.shop.Throttle.Succeeded(userID)
	sess := b.session(userID)
	sess.SignIn(u)
	b.log.Info("signed in", zap.Int64("user_id", userID), zap.String("customer_id", u.ID))
	b.removeKeyboard(chatID, lang.T(l, "signed_in"))
	if sess.Cart().ItemCount > 0 {
		b.sendCard(chatID, services.BuildPaymentCard(b.shop.Checkout.Quote(sess), l, b.shop.Currency))
	}
}

func (b *Bot) handleSignOut(ctx context.Context, chatID, userID int64) {
	l := b.getLang(ctx, userID)
	if err := b.shop.Sessions.SignOut(ctx, strconv.FormatInt(userID, 10)); err != nil {
		b.log.Warn("sign out failed", zap.Int64("user_id", userID), zap.Error(err))
	}
	b.removeKeyboard(chatID, lang.T(l, "signed_out"))
}

func (b *Bot) showOrders(ctx context.Context, chatID int64, msgID int, userID int64) {
	l := b.getLang(ctx, userID)
	u, ok := b.session(userID).CurrentUser()
	if !ok {
		b.requestContact(chatID, l)
		return
	}
	orders, err := b.shop.Orders.List(ctx, u.ID)
	if err != nil {
		b.log.Error("load orders failed", zap.String("user_id", u.ID), zap.Error(err))
		b.send(chatID, lang.T(l, "orders_failed"))
		return
	}
	b.upsertCard(chatID, msgID, services.BuildOrderHistory(orders, l, b.shop.Currency))
}

func (b *Bot) showOrder(ctx context.Context, chatID int64, msgID int, userID int64, orderID string) {
	l := b.getLang(ctx, userID)
	u, ok := b.session(userID).CurrentUser()
	if !ok {
		b.requestContact(chatID, l)
		return
	}
	order, err := b.shop.Orders.Get(ctx, u.ID, orderID)
	if errors.Is(err, services.ErrOrderNotFound) {
		b.send(chatID, lang.T(l, "order_not_found"))
		return
	}
	if err != nil {
		b.log.Error("load order failed", zap.String("order_id", orderID), zap.Error(err))
		b.send(chatID, lang.T(l, "orders_failed"))
		return
	}
	b.upsertCard(chatID, msgID, services.BuildCustomerCard(order, b.itemNames(ctx, order), l, b.shop.Currency))
}

// itemNames maps the order's menu item ids to names from the current menu.
func (b *Bot) itemNames(ctx context.Context, o models.Order) map[string]string {
	names := make(map[string]string, len(o.Items))
	items, err := b.shop.Catalog.List(ctx, services.ViewAll)
	if err != nil {
		b.log.Warn("load item names failed", zap.Error(err))
		return names
	}
	for _, it := range items {
		names[it.ID] = it.Name
	}
	return names
}

func (b *Bot) getLang(ctx context.Context, userID int64) string {
	b.userLangMu.RLock()
	l := b.userLang[userID]
	b.userLangMu.RUnlock()
	if l != "" {
		return l
	}
	if stored, ok := b.shop.Customers.Language(ctx, userID); ok && lang.Supported(stored) {
		b.setLang(userID, stored)
		return stored
	}
	return lang.En
}

func (b *Bot) setLang(userID int64, langCode string) {
	b.userLangMu.Lock()
	defer b.userLangMu.Unlock()
	b.userLang[userID] = langCode
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendLang(ctx context.Context, chatID, userID int64, key string, args ...interface{}) {
	b.send(chatID, lang.T(b.getLang(ctx, userID), key, args...))
}

func (b *Bot) sendCard(chatID int64, c services.CardContent) {
	msg := tgbotapi.NewMessage(chatID, c.Text)
	if kb := cardMarkup(c); kb != nil {
		msg.ReplyMarkup = *kb
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) editCard(chatID int64, msgID int, c services.CardContent) {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, c.Text)
	if kb := cardMarkup(c); kb != nil {
		edit.ReplyMarkup = kb
	} else {
		emptyKb := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
		edit.ReplyMarkup = &emptyKb
	}
	if _, err := b.api.Send(edit); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "not modified") {
			return
		}
		if strings.Contains(errStr, "not found") {
			b.sendCard(chatID, c)
			return
		}
		b.log.Warn("edit failed", zap.Int64("chat_id", chatID), zap.Int("message_id", msgID), zap.Error(err))
	}
}

// upsertCard edits msgID when set, otherwise sends a new message.
func (b *Bot) upsertCard(chatID int64, msgID int, c services.CardContent) {
	if msgID == 0 {
		b.sendCard(chatID, c)
		return
	}
	b.editCard(chatID, msgID, c)
}

func (b *Bot) removeKeyboard(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
