package terminal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nandasafiq/warungpos/internal/domain"
)

func TestBackendClient_RecordTransaction(t *testing.T) {
	t.Run("returns the server-assigned code", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/transactions" || r.Method != http.MethodPost {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("expected bearer token, got %q", got)
			}

			var req domain.TransactionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("failed to decode payload: %v", err)
			}
			if req.TenantID != "tenant-1" || len(req.Items) != 1 {
				t.Errorf("unexpected payload: %+v", req)
			}

			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(domain.Transaction{ID: "t-1", Code: "TRX-042"})
		}))
		defer server.Close()

		client := NewBackendClient(server.URL, server.Client(), loggedInStore())
		code, err := client.RecordTransaction(context.Background(), domain.TransactionRequest{
			TenantID: "tenant-1",
			Items:    []domain.TransactionItem{{ProductID: "p-1", Quantity: 2, Price: 10000}},
			Subtotal: 20000,
			Total:    20000,
		})
		if err != nil {
			t.Fatalf("record failed: %v", err)
		}
		if code != "TRX-042" {
			t.Errorf("expected TRX-042, got %s", code)
		}
	})

	t.Run("maps a 409 to a rejection with the server reason", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "insufficient stock for Susu UHT 1L"})
		}))
		defer server.Close()

		client := NewBackendClient(server.URL, server.Client(), loggedInStore())
		_, err := client.RecordTransaction(context.Background(), domain.TransactionRequest{})

		var rejection *RejectionError
		if !errors.As(err, &rejection) {
			t.Fatalf("expected RejectionError, got %v", err)
		}
		if rejection.Message != "insufficient stock for Susu UHT 1L" {
			t.Errorf("unexpected reason: %q", rejection.Message)
		}
	})

	t.Run("treats a 500 as a transport-level failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewBackendClient(server.URL, server.Client(), loggedInStore())
		_, err := client.RecordTransaction(context.Background(), domain.TransactionRequest{})

		var rejection *RejectionError
		if errors.As(err, &rejection) {
			t.Fatalf("a 500 must not be a business rejection: %v", err)
		}
		if err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("wraps connection errors", func(t *testing.T) {
		client := NewBackendClient("http://127.0.0.1:1", &http.Client{}, loggedInStore())
		_, err := client.RecordTransaction(context.Background(), domain.TransactionRequest{})
		if err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestBackendClient_ListProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("tenant_id"); got != "tenant-1" {
			t.Errorf("expected tenant_id=tenant-1, got %q", got)
		}
		_ = json.NewEncoder(w).Encode([]domain.Product{{ID: "p-1", Title: "Mie Goreng", Price: 3500, Stock: 9}})
	}))
	defer server.Close()

	client := NewBackendClient(server.URL, server.Client(), loggedInStore())
	products, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(products) != 1 || products[0].ID != "p-1" {
		t.Errorf("unexpected products: %+v", products)
	}
}
