package services

import (
	"github.com/shopspring/decimal"

	"tasty-canteen/models"
)

// CartLine is one menu item in the cart. UnitPrice is fixed when the item is
// first added.
type CartLine struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"image_url,omitempty"`
}

// Extension returns UnitPrice × Quantity.
func (l CartLine) Extension() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered list of lines with at most one line per menu item.
// It is not safe for concurrent use; Session guards it.
type Cart struct {
	lines []CartLine
	total decimal.Decimal
}

func NewCart() *Cart {
	return &Cart{}
}

// AddItem prices item through EffectivePrice and adds one unit of it.
func (c *Cart) AddItem(item models.MenuItem) {
	c.AddLine(CartLine{
		ID:        item.ID,
		Name:      item.Name,
		UnitPrice: EffectivePrice(item),
		ImageURL:  item.ImageURL,
	})
}

// AddLine bumps the quantity of an existing line with the same ID, or
// appends line with quantity 1.
func (c *Cart) AddLine(line CartLine) {
	if i := c.index(line.ID); i >= 0 {
		c.lines[i].Quantity++
	} else {
		line.Quantity = 1
		c.lines = append(c.lines, line)
	}
	c.recalc()
}

// Remove deletes the line for id. Missing ids are ignored.
func (c *Cart) Remove(id string) {
	i := c.index(id)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.recalc()
}

// UpdateQuantity sets the quantity for id, removing the line when qty <= 0.
func (c *Cart) UpdateQuantity(id string, qty int) {
	if qty <= 0 {
		c.Remove(id)
		return
	}
	i := c.index(id)
	if i < 0 {
		return
	}
	c.lines[i].Quantity = qty
	c.recalc()
}

// Decrement removes one unit of id.
func (c *Cart) Decrement(id string) {
	if i := c.index(id); i >= 0 {
		c.UpdateQuantity(id, c.lines[i].Quantity-1)
	}
}

func (c *Cart) Clear() {
	c.lines = nil
	c.total = decimal.Zero
}

// Total is Σ UnitPrice × Quantity, before tax.
func (c *Cart) Total() decimal.Decimal {
	return c.total
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Line returns the line for id.
func (c *Cart) Line(id string) (CartLine, bool) {
	if i := c.index(id); i >= 0 {
		return c.lines[i], true
	}
	return CartLine{}, false
}

// ItemCount is the sum of quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Len() int      { return len(c.lines) }
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

func (c *Cart) index(id string) int {
	for i, l := range c.lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) recalc() {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Extension())
	}
	c.total = total
}
