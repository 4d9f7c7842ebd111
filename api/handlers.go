package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tasty-canteen/models"
	"tasty-canteen/services"
)

type handlers struct {
	shop  *services.Storefront
	log   *zap.Logger
	taxPc string
}

type menuItemJSON struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description,omitempty"`
	Price              decimal.Decimal `json:"price"`
	EffectivePrice     decimal.Decimal `json:"effective_price"`
	ImageURL           string          `json:"image_url,omitempty"`
	Category           models.Category `json:"type"`
	SpecialOffer       bool            `json:"is_special_offer"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

func toMenuItems(items []models.MenuItem) []menuItemJSON {
	out := make([]menuItemJSON, len(items))
	for i, it := range items {
		out[i] = menuItemJSON{
			ID:                 it.ID,
			Name:               it.Name,
			Description:        it.Description,
			Price:              it.Price,
			EffectivePrice:     services.EffectivePrice(it),
			ImageURL:           it.ImageURL,
			Category:           it.Category,
			SpecialOffer:       it.SpecialOffer,
			DiscountPercentage: it.DiscountPercentage,
		}
	}
	return out
}

type quoteJSON struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	TaxRate  string          `json:"tax_percent"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

type orderItemJSON struct {
	MenuItemID string          `json:"menu_item_id"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

type orderJSON struct {
	ID                   string               `json:"id"`
	TotalAmount          decimal.Decimal      `json:"total_amount"`
	PaymentMethod        models.PaymentMethod `json:"payment_method"`
	PaymentStatus        models.PaymentStatus `json:"payment_status"`
	OrderStatus          models.OrderStatus   `json:"order_status"`
	EstimatedWaitMinutes *int                 `json:"estimated_wait_time"`
	CreatedAt            string               `json:"created_at"`
	Items                []orderItemJSON      `json:"items,omitempty"`
}

func toOrder(o models.Order) orderJSON {
	out := orderJSON{
		ID:                   o.ID,
		TotalAmount:          o.TotalAmount,
		PaymentMethod:        o.PaymentMethod,
		PaymentStatus:        o.PaymentStatus,
		OrderStatus:          o.OrderStatus,
		EstimatedWaitMinutes: o.EstimatedWaitMinutes,
		CreatedAt:            o.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, orderItemJSON{MenuItemID: it.MenuItemID, Quantity: it.Quantity, Price: it.Price})
	}
	return out
}

func (h *handlers) health(c *gin.Context) {
	ok(c, gin.H{"shop": h.shop.Name})
}

// GET /menu
func (h *handlers) menu(c *gin.Context) {
	g, err := h.shop.Catalog.Grouped(c.Request.Context())
	if err != nil {
		h.log.Error("load menu failed", zap.Error(err))
		badGateway(c, "Failed to load menu items")
		return
	}
	ok(c, gin.H{
		"veg":     toMenuItems(g.Veg),
		"egg":     toMenuItems(g.Egg),
		"non_veg": toMenuItems(g.NonVeg),
	})
}

// GET /menu/:category
func (h *handlers) menuCategory(c *gin.Context) {
	cat, err := models.ParseCategory(c.Param("category"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	h.list(c, services.View(cat), "Failed to load menu items")
}

// GET /offers
func (h *handlers) offers(c *gin.Context) {
	h.list(c, services.ViewOffers, "Failed to load offers")
}

// GET /combos
func (h *handlers) combos(c *gin.Context) {
	h.list(c, services.ViewCombo, "Failed to load combo items")
}

func (h *handlers) list(c *gin.Context, view services.View, failMsg string) {
	items, err := h.shop.Catalog.List(c.Request.Context(), view)
	if err != nil {
		h.log.Error("load menu failed", zap.String("view", string(view)), zap.Error(err))
		badGateway(c, failMsg)
		return
	}
	ok(c, toMenuItems(items))
}

// GET /cart
func (h *handlers) getCart(c *gin.Context) {
	sess, found := lookupSession(c)
	if !found {
		ok(c, services.CartView{Lines: []services.CartLine{}})
		return
	}
	ok(c, sess.Cart())
}

// POST /cart/items
func (h *handlers) addCartItem(c *gin.Context) {
	var body struct {
		MenuItemID string `json:"menu_item_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	item, err := h.shop.Catalog.Item(c.Request.Context(), body.MenuItemID)
	if errors.Is(err, services.ErrItemNotFound) {
		notFound(c, err.Error())
		return
	}
	if err != nil {
		h.log.Error("load menu item failed", zap.String("menu_item_id", body.MenuItemID), zap.Error(err))
		badGateway(c, "Failed to load menu items")
		return
	}
	sess := sessionFrom(c)
	sess.WithCart(func(cart *services.Cart) { cart.AddItem(item) })
	created(c, gin.H{"message": item.Name + " added to cart!", "cart": sess.Cart()})
}

// PATCH /cart/items/:id
func (h *handlers) updateCartItem(c *gin.Context) {
	var body struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	sess := sessionFrom(c)
	id := c.Param("id")
	found := false
	sess.WithCart(func(cart *services.Cart) {
		if _, found = cart.Line(id); found {
			cart.UpdateQuantity(id, *body.Quantity)
		}
	})
	if !found {
		notFound(c, "item is not in the cart")
		return
	}
	ok(c, sess.Cart())
}

// DELETE /cart/items/:id
func (h *handlers) removeCartItem(c *gin.Context) {
	sess := sessionFrom(c)
	sess.WithCart(func(cart *services.Cart) { cart.Remove(c.Param("id")) })
	ok(c, sess.Cart())
}

// DELETE /cart
func (h *handlers) clearCart(c *gin.Context) {
	sess := sessionFrom(c)
	sess.WithCart(func(cart *services.Cart) { cart.Clear() })
	ok(c, sess.Cart())
}

// GET /checkout/quote
func (h *handlers) quote(c *gin.Context) {
	var q services.Quote
	if sess, found := lookupSession(c); found {
		q = h.shop.Checkout.Quote(sess)
	}
	ok(c, quoteJSON{Subtotal: q.Subtotal, TaxRate: h.taxPc, Tax: q.Tax, Total: q.Total, Currency: h.shop.Currency})
}

// POST /checkout
func (h *handlers) checkout(c *gin.Context) {
	var body struct {
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err.Error())
		return
	}
	if body.PaymentMethod == "" {
		body.PaymentMethod = string(models.PaymentUPI)
	}
	order, err := h.shop.Checkout.PlaceOrder(c.Request.Context(), sessionFrom(c), body.PaymentMethod)
	var ce *services.CheckoutError
	switch {
	case err == nil:
		created(c, gin.H{"message": "Order placed successfully!", "order": toOrder(order), "redirect": "/orders"})
	case errors.Is(err, services.ErrNotSignedIn):
		unauthorized(c, err.Error())
	case errors.Is(err, services.ErrEmptyCart), errors.Is(err, services.ErrInvalidPaymentMethod):
		badRequest(c, err.Error())
	case errors.As(err, &ce):
		serverError(c, ce.Error())
	default:
		h.log.Error("place order failed", zap.Error(err))
		serverError(c, err.Error())
	}
}

// GET /orders
func (h *handlers) listOrders(c *gin.Context) {
	orders, err := h.shop.Orders.List(c.Request.Context(), userFrom(c).ID)
	if err != nil {
		h.log.Error("load orders failed", zap.Error(err))
		badGateway(c, "Failed to load orders")
		return
	}
	out := make([]orderJSON, len(orders))
	for i, o := range orders {
		out[i] = toOrder(o)
	}
	ok(c, out)
}

// GET /orders/:id
func (h *handlers) getOrder(c *gin.Context) {
	order, err := h.shop.Orders.Get(c.Request.Context(), userFrom(c).ID, c.Param("id"))
	if errors.Is(err, services.ErrOrderNotFound) {
		notFound(c, err.Error())
		return
	}
	if err != nil {
		h.log.Error("load order failed", zap.String("order_id", c.Param("id")), zap.Error(err))
		badGateway(c, "Failed to load orders")
		return
	}
	ok(c, toOrder(order))
}

// POST /auth/signout
func (h *handlers) signOut(c *gin.Context) {
	if err := sessionFrom(c).SignOut(c.Request.Context()); err != nil {
		serverError(c, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
