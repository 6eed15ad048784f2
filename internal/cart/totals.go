package cart

import "github.com/nandasafiq/warungpos/internal/domain"

// Totals are derived from the cart on every call and never stored.
type Totals struct {
	Subtotal  int64 `json:"subtotal"`
	Discount  int64 `json:"discount"`
	Total     int64 `json:"total"`
	ItemCount int   `json:"item_count"`
}

// Totals computes subtotal, discount, total and item count from the current
// lines and voucher. The discount keeps the voucher's nominal value even
// when it exceeds the subtotal; only the total is clamped at zero. That is
// how the register has always displayed over-discounting fixed vouchers, so
// it stays that way.
func (c *Cart) Totals() Totals {
	var t Totals
	for i := range c.lines {
		t.Subtotal += c.lines[i].UnitPrice * int64(c.lines[i].Quantity)
		t.ItemCount += c.lines[i].Quantity
	}
	t.Discount = discountFor(c.voucher, t.Subtotal)
	t.Total = max(0, t.Subtotal-t.Discount)
	return t
}

func discountFor(v *domain.Voucher, subtotal int64) int64 {
	if v == nil {
		return 0
	}
	if v.DiscountType == domain.DiscountTypePercentage {
		return roundHalfUp(subtotal*v.DiscountAmount, 100)
	}
	return v.DiscountAmount
}

// roundHalfUp divides n by d rounding half away from zero. n and d are
// non-negative here (prices and percentages are never negative).
func roundHalfUp(n, d int64) int64 {
	return (n + d/2) / d
}
