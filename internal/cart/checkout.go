package cart

import (
	"context"
	"errors"

	"github.com/nandasafiq/warungpos/internal/domain"
)

// ErrEmptyCart is returned by Checkout when the cart has no lines. The
// recorder is never contacted in that case.
var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

// Recorder submits a finished order to the transaction-recording backend and
// returns the server-assigned transaction code.
type Recorder interface {
	RecordTransaction(ctx context.Context, req domain.TransactionRequest) (string, error)
}

// Confirmation is what the checkout surface renders after a successful
// submission.
type Confirmation struct {
	TransactionCode string               `json:"transaction_code"`
	PaymentMethod   domain.PaymentMethod `json:"payment_method"`
	Subtotal        int64                `json:"subtotal"`
	Discount        int64                `json:"discount"`
	Total           int64                `json:"total"`
}

// Checkout submits the cart as a transaction. The payload is snapshotted
// from the current state before the recorder is called. On success the cart
// is reset to empty and the confirmation is returned; on failure the cart is
// left untouched so checkout can be retried after a failed submission.
func (c *Cart) Checkout(ctx context.Context, tenantID string, rec Recorder) (*Confirmation, error) {
	if len(c.lines) == 0 {
		return nil, ErrEmptyCart
	}

	totals := c.Totals()

	items := make([]domain.TransactionItem, len(c.lines))
	for i := range c.lines {
		items[i] = domain.TransactionItem{
			ProductID: c.lines[i].ProductID,
			Quantity:  c.lines[i].Quantity,
			Price:     c.lines[i].UnitPrice,
		}
	}

	var voucherID *string
	if c.voucher != nil {
		id := c.voucher.ID
		voucherID = &id
	}

	req := domain.TransactionRequest{
		TenantID:      tenantID,
		Items:         items,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		Total:         totals.Total,
		PaymentMethod: c.paymentMethod,
		MaleCount:     c.maleCount,
		FemaleCount:   c.femaleCount,
		VoucherID:     voucherID,
	}

	code, err := rec.RecordTransaction(ctx, req)
	if err != nil {
		return nil, err
	}

	confirmation := &Confirmation{
		TransactionCode: code,
		PaymentMethod:   req.PaymentMethod,
		Subtotal:        req.Subtotal,
		Discount:        req.Discount,
		Total:           req.Total,
	}

	c.Clear()
	return confirmation, nil
}
