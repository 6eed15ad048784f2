package domain

import "time"

type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "Cash"
	PaymentMethodDebitCard  PaymentMethod = "Debit Card"
	PaymentMethodCreditCard PaymentMethod = "Credit Card"
	PaymentMethodEWallet    PaymentMethod = "E-Wallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodDebitCard, PaymentMethodCreditCard, PaymentMethodEWallet:
		return true
	}
	return false
}

type TransactionItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

// TransactionRequest is the payload the terminal submits to the recording
// endpoint. VoucherID is null when no voucher was applied.
type TransactionRequest struct {
	TenantID      string            `json:"tenant_id"`
	Items         []TransactionItem `json:"items"`
	Subtotal      int64             `json:"subtotal"`
	Discount      int64             `json:"discount"`
	Total         int64             `json:"total"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	MaleCount     int               `json:"male_count"`
	FemaleCount   int               `json:"female_count"`
	VoucherID     *string           `json:"voucher_id"`
}

type Transaction struct {
	ID            string            `json:"id"`
	TenantID      string            `json:"tenant_id"`
	Code          string            `json:"transaction_code"`
	Items         []TransactionItem `json:"items"`
	Subtotal      int64             `json:"subtotal"`
	Discount      int64             `json:"discount"`
	Total         int64             `json:"total"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	MaleCount     int               `json:"male_count"`
	FemaleCount   int               `json:"female_count"`
	VoucherID     *string           `json:"voucher_id"`
	CreatedAt     time.Time         `json:"created_at"`
}
