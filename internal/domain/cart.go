package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the per-session list of line items. Items keep insertion order;
// a product appears at most once.
type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	index map[int64]int // product id -> position in Items
}

// CartItem holds the name and price captured when the product was first added.
type CartItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"added_at"`
}

func NewCart(sessionID string, now time.Time) *Cart {
	return &Cart{
		SessionID: sessionID,
		Items:     []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (c *Cart) position(productID int64) (int, bool) {
	if c.index == nil || len(c.index) != len(c.Items) {
		c.reindex()
	}
	pos, ok := c.index[productID]
	return pos, ok
}

func (c *Cart) reindex() {
	c.index = make(map[int64]int, len(c.Items))
	for i, item := range c.Items {
		c.index[item.ProductID] = i
	}
}

// Add increments the quantity of an existing line item or appends a new one
// with quantity 1. The snapshot of an existing item is never refreshed.
func (c *Cart) Add(p *Product, now time.Time) CartItem {
	if pos, ok := c.position(p.ID); ok {
		c.Items[pos].Quantity++
		c.UpdatedAt = now
		return c.Items[pos]
	}

	item := CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  1,
		AddedAt:   now,
	}
	c.Items = append(c.Items, item)
	c.index[p.ID] = len(c.Items) - 1
	c.UpdatedAt = now
	return item
}

// SetQuantity reports whether the cart changed. A quantity <= 0 removes the item.
func (c *Cart) SetQuantity(productID int64, quantity int, now time.Time) bool {
	pos, ok := c.position(productID)
	if !ok {
		return false
	}
	if quantity <= 0 {
		return c.Remove(productID, now)
	}
	c.Items[pos].Quantity = quantity
	c.UpdatedAt = now
	return true
}

func (c *Cart) Remove(productID int64, now time.Time) bool {
	pos, ok := c.position(productID)
	if !ok {
		return false
	}
	c.Items = append(c.Items[:pos], c.Items[pos+1:]...)
	c.reindex()
	c.UpdatedAt = now
	return true
}

func (c *Cart) Item(productID int64) (CartItem, bool) {
	pos, ok := c.position(productID)
	if !ok {
		return CartItem{}, false
	}
	return c.Items[pos], true
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Count is the number of distinct line items, not the sum of quantities.
func (c *Cart) Count() int {
	return len(c.Items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) Clear(now time.Time) {
	c.Items = []CartItem{}
	c.index = nil
	c.UpdatedAt = now
}

// Clone returns a deep copy; the line items of the copy share nothing with c.
func (c *Cart) Clone() *Cart {
	clone := *c
	clone.Items = make([]CartItem, len(c.Items))
	copy(clone.Items, c.Items)
	clone.index = nil
	return &clone
}

// ParseQuantity accepts integers, integer strings, and integral floats that
// fit in an int.
func ParseQuantity(raw string) (int, error) {
	n, ok := parseInteger(raw)
	if !ok {
		return 0, ErrInvalidQuantity
	}
	return n, nil
}

// ParseProductID accepts the same forms as ParseQuantity but only positive values.
func ParseProductID(raw string) (int64, error) {
	n, ok := parseInteger(raw)
	if !ok || n <= 0 {
		return 0, ErrInvalidProductID
	}
	return int64(n), nil
}

func parseInteger(raw string) (int, bool) {
	s := strings.Trim(strings.TrimSpace(raw), `"`)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return 0, false
	}
	b := d.BigInt()
	if !b.IsInt64() {
		return 0, false
	}
	n := b.Int64()
	if int64(int(n)) != n {
		return 0, false
	}
	return int(n), true
}
