//go:build integration

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/nandasafiq/warungpos/internal/catalog"
	"github.com/nandasafiq/warungpos/internal/domain"
	"github.com/nandasafiq/warungpos/internal/messaging"
	"github.com/nandasafiq/warungpos/internal/receipt"
	"github.com/nandasafiq/warungpos/internal/transactions"
)

const testTenant = "tenant-integration"

func TestProductCRUD(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := catalog.NewHandler(catalog.NewProductRepository(db), catalog.NewVoucherRepository(db), logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", handler.HandleListProducts)
	mux.HandleFunc("POST /products", handler.HandleCreateProduct)
	mux.HandleFunc("GET /products/{id}", handler.HandleGetProduct)
	mux.HandleFunc("PUT /products/{id}", handler.HandleUpdateProduct)
	mux.HandleFunc("DELETE /products/{id}", handler.HandleDeleteProduct)

	body := fmt.Sprintf(`{"tenant_id": %q, "title": "Es Teh Manis", "price": 5000, "stock": 40}`, testTenant)
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created domain.Product
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected product ID to be set")
	}
	if created.Price != 5000 {
		t.Fatalf("expected price 5000, got %d", created.Price)
	}

	req = httptest.NewRequest(http.MethodGet, "/products/"+created.ID, nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var fetched domain.Product
	if err := json.NewDecoder(rec.Body).Decode(&fetched); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if fetched.Title != "Es Teh Manis" {
		t.Fatalf("expected title 'Es Teh Manis', got '%s'", fetched.Title)
	}

	update := fmt.Sprintf(`{"tenant_id": %q, "title": "Es Teh Tawar", "price": 4000, "stock": 35}`, testTenant)
	req = httptest.NewRequest(http.MethodPut, "/products/"+created.ID, strings.NewReader(update))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/products?tenant_id="+testTenant, nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var listed []domain.Product
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("failed to decode product list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 product, got %d", len(listed))
	}
	if listed[0].Title != "Es Teh Tawar" || listed[0].Price != 4000 {
		t.Fatalf("unexpected product after update: %+v", listed[0])
	}

	req = httptest.NewRequest(http.MethodDelete, "/products/"+created.ID, nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d: %s", http.StatusNoContent, rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/products/"+created.ID, nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d after delete, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestVoucherCRUD(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := catalog.NewHandler(catalog.NewProductRepository(db), catalog.NewVoucherRepository(db), logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /vouchers", handler.HandleListVouchers)
	mux.HandleFunc("POST /vouchers", handler.HandleCreateVoucher)
	mux.HandleFunc("PUT /vouchers/{id}", handler.HandleUpdateVoucher)
	mux.HandleFunc("DELETE /vouchers/{id}", handler.HandleDeleteVoucher)

	body := fmt.Sprintf(`{"tenant_id": %q, "code": "HEMAT10", "name": "Diskon 10 Persen", "discount_type": "percentage", "discount_amount": 10, "is_active": true}`, testTenant)
	req := httptest.NewRequest(http.MethodPost, "/vouchers", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created domain.Voucher
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected voucher ID to be set")
	}

	deactivate := fmt.Sprintf(`{"tenant_id": %q, "code": "HEMAT10", "name": "Diskon 10 Persen", "discount_type": "percentage", "discount_amount": 10, "is_active": false}`, testTenant)
	req = httptest.NewRequest(http.MethodPut, "/vouchers/"+created.ID, strings.NewReader(deactivate))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/vouchers?tenant_id="+testTenant, nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var listed []domain.Voucher
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("failed to decode voucher list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 voucher, got %d", len(listed))
	}
	if listed[0].IsActive {
		t.Fatal("expected voucher to be inactive after update")
	}
}

func createTestProduct(t *testing.T, mux *http.ServeMux, title string, price int64, stock int) domain.Product {
	t.Helper()

	body := fmt.Sprintf(`{"tenant_id": %q, "title": %q, "price": %d, "stock": %d}`, testTenant, title, price, stock)
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("failed to create product %s: %d: %s", title, rec.Code, rec.Body.String())
	}

	var product domain.Product
	if err := json.NewDecoder(rec.Body).Decode(&product); err != nil {
		t.Fatalf("failed to decode product: %v", err)
	}
	return product
}

func getProductStock(t *testing.T, mux *http.ServeMux, id string) int {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/products/"+id, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("failed to get product %s: %d: %s", id, rec.Code, rec.Body.String())
	}

	var product domain.Product
	if err := json.NewDecoder(rec.Body).Decode(&product); err != nil {
		t.Fatalf("failed to decode product: %v", err)
	}
	return product.Stock
}

func TestTransactionRecording(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalogHandler := catalog.NewHandler(catalog.NewProductRepository(db), catalog.NewVoucherRepository(db), logger)
	txHandler, err := transactions.NewHandler(transactions.NewTransactionRepository(db), nil, logger)
	if err != nil {
		t.Fatalf("failed to create transactions handler: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /products", catalogHandler.HandleCreateProduct)
	mux.HandleFunc("GET /products/{id}", catalogHandler.HandleGetProduct)
	mux.HandleFunc("POST /transactions", txHandler.HandleCreate)
	mux.HandleFunc("GET /transactions", txHandler.HandleList)

	product := createTestProduct(t, mux, "Nasi Goreng", 15000, 10)

	body := fmt.Sprintf(`{
		"tenant_id": %q,
		"items": [{"product_id": %q, "quantity": 2, "price": 15000}],
		"subtotal": 30000,
		"discount": 0,
		"total": 30000,
		"payment_method": "Cash",
		"male_count": 1,
		"female_count": 1,
		"voucher_id": null
	}`, testTenant, product.ID)
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var recorded domain.Transaction
	if err := json.NewDecoder(rec.Body).Decode(&recorded); err != nil {
		t.Fatalf("failed to decode transaction: %v", err)
	}
	if !strings.HasPrefix(recorded.Code, "TRX-") {
		t.Fatalf("expected transaction code with TRX- prefix, got '%s'", recorded.Code)
	}
	if recorded.Total != 30000 {
		t.Fatalf("expected total 30000, got %d", recorded.Total)
	}

	if stock := getProductStock(t, mux, product.ID); stock != 8 {
		t.Fatalf("expected stock 8 after sale, got %d", stock)
	}

	req = httptest.NewRequest(http.MethodGet, "/transactions?tenant_id="+testTenant, nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var listed []domain.Transaction
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("failed to decode transaction list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(listed))
	}
	if listed[0].Code != recorded.Code {
		t.Fatalf("expected listed code '%s', got '%s'", recorded.Code, listed[0].Code)
	}
	if len(listed[0].Items) != 1 || listed[0].Items[0].Quantity != 2 {
		t.Fatalf("unexpected items in listed transaction: %+v", listed[0].Items)
	}
}

func TestTransactionInsufficientStock(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalogHandler := catalog.NewHandler(catalog.NewProductRepository(db), catalog.NewVoucherRepository(db), logger)
	txHandler, err := transactions.NewHandler(transactions.NewTransactionRepository(db), nil, logger)
	if err != nil {
		t.Fatalf("failed to create transactions handler: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /products", catalogHandler.HandleCreateProduct)
	mux.HandleFunc("GET /products/{id}", catalogHandler.HandleGetProduct)
	mux.HandleFunc("POST /transactions", txHandler.HandleCreate)
	mux.HandleFunc("GET /transactions", txHandler.HandleList)

	plentiful := createTestProduct(t, mux, "Ayam Bakar", 20000, 10)
	scarce := createTestProduct(t, mux, "Jus Alpukat", 12000, 1)

	body := fmt.Sprintf(`{
		"tenant_id": %q,
		"items": [
			{"product_id": %q, "quantity": 3, "price": 20000},
			{"product_id": %q, "quantity": 5, "price": 12000}
		],
		"subtotal": 120000,
		"discount": 0,
		"total": 120000,
		"payment_method": "Cash",
		"male_count": 0,
		"female_count": 0,
		"voucher_id": null
	}`, testTenant, plentiful.ID, scarce.ID)
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d: %s", http.StatusConflict, rec.Code, rec.Body.String())
	}

	var errResp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp["error"] != "insufficient stock for Jus Alpukat" {
		t.Fatalf("unexpected error message: %s", errResp["error"])
	}

	// stock changes from the first item must be rolled back
	if stock := getProductStock(t, mux, plentiful.ID); stock != 10 {
		t.Fatalf("expected stock 10 after rollback, got %d", stock)
	}
	if stock := getProductStock(t, mux, scarce.ID); stock != 1 {
		t.Fatalf("expected stock 1 after rollback, got %d", stock)
	}

	req = httptest.NewRequest(http.MethodGet, "/transactions?tenant_id="+testTenant, nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var listed []domain.Transaction
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("failed to decode transaction list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected no recorded transactions, got %d", len(listed))
	}
}

type printCapture struct {
	mu     sync.Mutex
	prints []map[string]string
}

func (p *printCapture) handler(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	p.prints = append(p.prints, req)
	p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, `{"status":"printed"}`)
}

func (p *printCapture) getPrints() []map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]map[string]string, len(p.prints))
	copy(result, p.prints)
	return result
}

func TestReceiptFlowThroughKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	brokers, cleanup := SetupKafka(ctx, t)
	defer cleanup()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	printCap := &printCapture{}
	printMux := http.NewServeMux()
	printMux.HandleFunc("POST /print", printCap.handler)
	printServer := httptest.NewServer(printMux)
	defer printServer.Close()

	producer := messaging.NewProducer(brokers, messaging.TopicTransactionRecorded)
	defer func() { _ = producer.Close() }()

	event := domain.TransactionRecordedEvent{
		TransactionID: "11111111-2222-3333-4444-555555555555",
		Code:          "TRX-A1B2C3D4",
		TenantID:      testTenant,
		Items: []domain.TransactionItem{
			{ProductID: "66666666-7777-8888-9999-000000000000", Quantity: 2, Price: 15000},
		},
		Subtotal:      30000,
		Discount:      3000,
		Total:         27000,
		PaymentMethod: domain.PaymentMethodCash,
		Timestamp:     time.Now().UTC(),
	}
	if err := producer.Publish(ctx, event.TransactionID, event); err != nil {
		t.Fatalf("failed to publish event: %v", err)
	}

	consumer := messaging.NewConsumer(brokers, messaging.TopicTransactionRecorded, "receipt-test",
		messaging.WithStartOffset(kafka.FirstOffset))
	defer func() { _ = consumer.Close() }()

	receiptHandler := receipt.NewHandler(printServer.URL, &http.Client{Timeout: 10 * time.Second}, logger)

	consumeCtx, consumeCancel := context.WithCancel(ctx)
	defer consumeCancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = consumer.Consume(consumeCtx, func(ctx context.Context, payload []byte) error {
			err := receiptHandler.Handle(ctx, payload)
			consumeCancel()
			return err
		})
	}()

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("timed out waiting for receipt event")
	}

	prints := printCap.getPrints()
	if len(prints) != 1 {
		t.Fatalf("expected 1 print request, got %d", len(prints))
	}
	if prints[0]["code"] != "TRX-A1B2C3D4" {
		t.Fatalf("expected print for TRX-A1B2C3D4, got '%s'", prints[0]["code"])
	}
	if !strings.Contains(prints[0]["content"], "Total     IDR 27.000") {
		t.Fatalf("expected receipt content with total line, got: %s", prints[0]["content"])
	}
}
