package domain

// Product is a catalog snapshot as served by the backend. Price is in whole
// IDR, which has no fractional unit.
type Product struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	Stock    int    `json:"stock"`
	ImageURL string `json:"image_url,omitempty"`
}
