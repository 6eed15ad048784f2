package domain

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

type Voucher struct {
	ID             string       `json:"id"`
	TenantID       string       `json:"tenant_id"`
	Code           string       `json:"code"`
	Name           string       `json:"name"`
	DiscountType   DiscountType `json:"discount_type"`
	DiscountAmount int64        `json:"discount_amount"`
	IsActive       bool         `json:"is_active"`
}
