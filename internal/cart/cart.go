package cart

import "github.com/nandasafiq/warungpos/internal/domain"

// Line is one product entry in the in-progress order. Title, UnitPrice and
// Stock are snapshotted from the catalog when the line is added and are not
// re-synced afterwards.
type Line struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	UnitPrice int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Stock     int    `json:"stock"`
	ImageURL  string `json:"image_url,omitempty"`
}

// Cart holds one in-progress order: its lines in insertion order, at most
// one applied voucher, customer counts and the selected payment method.
// A Cart is not safe for concurrent use; the owning session serializes
// access to it.
type Cart struct {
	lines         []Line
	voucher       *domain.Voucher
	maleCount     int
	femaleCount   int
	paymentMethod domain.PaymentMethod
}

func New() *Cart {
	return &Cart{paymentMethod: domain.PaymentMethodCash}
}

// AddLine increments the quantity of an existing line for the product, or
// appends a new line with quantity 1. Stock is recorded on the line but not
// enforced here; callers check it before adding.
func (c *Cart) AddLine(p domain.Product) {
	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Title:     p.Title,
		UnitPrice: p.Price,
		Quantity:  1,
		Stock:     p.Stock,
		ImageURL:  p.ImageURL,
	})
}

// RemoveLine deletes the line for the product. Removing an absent line is a
// no-op, not an error.
func (c *Cart) RemoveLine(productID string) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// SetQuantity overwrites the quantity of the line for the product. A
// quantity of zero or less removes the line; a line is never stored at
// quantity zero.
func (c *Cart) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveLine(productID)
		return
	}
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity = quantity
			return
		}
	}
}

// Quantity returns the current quantity of the product's line, or 0 when no
// line exists.
func (c *Cart) Quantity(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return c.lines[i].Quantity
		}
	}
	return 0
}

// Lines returns a copy of the order lines in insertion order.
func (c *Cart) Lines() []Line {
	lines := make([]Line, len(c.lines))
	copy(lines, c.lines)
	return lines
}

// ApplyVoucher replaces any applied voucher. Vouchers never stack; applying
// a second one overwrites the first.
func (c *Cart) ApplyVoucher(v domain.Voucher) {
	c.voucher = &v
}

func (c *Cart) RemoveVoucher() {
	c.voucher = nil
}

// Voucher returns the applied voucher, or nil when none is applied.
func (c *Cart) Voucher() *domain.Voucher {
	if c.voucher == nil {
		return nil
	}
	v := *c.voucher
	return &v
}

// SetCustomerCounts records how many customers the order serves. Negative
// values are clamped to zero.
func (c *Cart) SetCustomerCounts(male, female int) {
	c.maleCount = max(0, male)
	c.femaleCount = max(0, female)
}

func (c *Cart) CustomerCounts() (male, female int) {
	return c.maleCount, c.femaleCount
}

func (c *Cart) SetPaymentMethod(m domain.PaymentMethod) {
	c.paymentMethod = m
}

func (c *Cart) PaymentMethod() domain.PaymentMethod {
	return c.paymentMethod
}

// Clear resets the cart to its initial empty state: no lines, no voucher,
// zero customer counts, payment method back to Cash.
func (c *Cart) Clear() {
	c.lines = nil
	c.voucher = nil
	c.maleCount = 0
	c.femaleCount = 0
	c.paymentMethod = domain.PaymentMethodCash
}
