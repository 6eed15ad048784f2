package domain

import "time"

type TransactionRecordedEvent struct {
	TransactionID string            `json:"transaction_id"`
	Code          string            `json:"transaction_code"`
	TenantID      string            `json:"tenant_id"`
	Items         []TransactionItem `json:"items"`
	Subtotal      int64             `json:"subtotal"`
	Discount      int64             `json:"discount"`
	Total         int64             `json:"total"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	Timestamp     time.Time         `json:"timestamp"`
}
