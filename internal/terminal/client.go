package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nandasafiq/warungpos/internal/auth"
	"github.com/nandasafiq/warungpos/internal/domain"
)

// RejectionError carries the reason the backend refused a transaction, for
// example a stock conflict detected server-side. Transport-level failures
// are returned as plain wrapped errors instead.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

// BackendClient talks to the POS backend API. Credentials from the auth
// store are attached to every request.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
	creds      auth.Store
}

func NewBackendClient(baseURL string, httpClient *http.Client, creds auth.Store) *BackendClient {
	return &BackendClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		creds:      creds,
	}
}

func (c *BackendClient) tenantID() string {
	creds, ok := c.creds.Get()
	if !ok {
		return ""
	}
	return creds.TenantID
}

// TenantID exposes the tenant the terminal is logged in as.
func (c *BackendClient) TenantID() string {
	return c.tenantID()
}

func (c *BackendClient) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	if creds, ok := c.creds.Get(); ok && creds.Token != "" {
		req.Header.Set("Authorization", "Bearer "+creds.Token)
	}
	return req, nil
}

func (c *BackendClient) ListProducts(ctx context.Context) ([]domain.Product, error) {
	path := "/products?tenant_id=" + url.QueryEscape(c.tenantID())
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("create products request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var products []domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (c *BackendClient) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("create product request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	product := &domain.Product{}
	if err := json.NewDecoder(resp.Body).Decode(product); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return product, nil
}

func (c *BackendClient) ListVouchers(ctx context.Context) ([]domain.Voucher, error) {
	path := "/vouchers?tenant_id=" + url.QueryEscape(c.tenantID())
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("create vouchers request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list vouchers: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voucher listing returned status %d", resp.StatusCode)
	}

	var vouchers []domain.Voucher
	if err := json.NewDecoder(resp.Body).Decode(&vouchers); err != nil {
		return nil, fmt.Errorf("decode vouchers: %w", err)
	}
	return vouchers, nil
}

func (c *BackendClient) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	path := "/transactions?tenant_id=" + url.QueryEscape(c.tenantID())
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("create transactions request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transaction listing returned status %d", resp.StatusCode)
	}

	var transactions []domain.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&transactions); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return transactions, nil
}

// RecordTransaction implements cart.Recorder. A 4xx response is a business
// rejection and surfaces the server's reason; anything else that goes wrong
// is a transport failure.
func (c *BackendClient) RecordTransaction(ctx context.Context, txReq domain.TransactionRequest) (string, error) {
	data, err := json.Marshal(txReq)
	if err != nil {
		return "", fmt.Errorf("marshal transaction: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/transactions", data)
	if err != nil {
		return "", fmt.Errorf("create transaction request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("record transaction: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
		var body struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
			body.Error = fmt.Sprintf("transaction rejected with status %d", resp.StatusCode)
		}
		return "", &RejectionError{Message: body.Error}
	}

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("transaction service returned status %d", resp.StatusCode)
	}

	var created domain.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode transaction: %w", err)
	}
	return created.Code, nil
}
