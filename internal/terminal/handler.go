package terminal

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nandasafiq/warungpos/internal/cart"
	"github.com/nandasafiq/warungpos/internal/domain"
)

// sessionHeader selects which cart a request operates on. A register that
// runs a single drawer can omit it.
const sessionHeader = "X-Session-ID"

type Handler struct {
	sessions *SessionStore
	backend  *BackendClient
	logger   *slog.Logger
}

func NewHandler(sessions *SessionStore, backend *BackendClient, logger *slog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		backend:  backend,
		logger:   logger,
	}
}

func (h *Handler) session(r *http.Request) *Session {
	id := r.Header.Get(sessionHeader)
	if id == "" {
		id = "default"
	}
	return h.sessions.Get(id)
}

type cartView struct {
	Items         []cart.Line          `json:"items"`
	Voucher       *domain.Voucher      `json:"voucher"`
	MaleCount     int                  `json:"male_count"`
	FemaleCount   int                  `json:"female_count"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Subtotal      int64                `json:"subtotal"`
	Discount      int64                `json:"discount"`
	Total         int64                `json:"total"`
	ItemCount     int                  `json:"item_count"`
}

func viewOf(c *cart.Cart) cartView {
	totals := c.Totals()
	male, female := c.CustomerCounts()
	return cartView{
		Items:         c.Lines(),
		Voucher:       c.Voucher(),
		MaleCount:     male,
		FemaleCount:   female,
		PaymentMethod: c.PaymentMethod(),
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		Total:         totals.Total,
		ItemCount:     totals.ItemCount,
	}
}

func (h *Handler) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	var view cartView
	h.session(r).With(func(c *cart.Cart) {
		view = viewOf(c)
	})
	h.writeJSON(w, http.StatusOK, view)
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.backend.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		h.logger.Error("failed to look up product", "error", err, "product_id", req.ProductID)
		h.writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}
	if product == nil {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	// The cart itself accepts any quantity; the stock ceiling is enforced
	// here, where the catalog snapshot is fresh.
	var view cartView
	blocked := false
	h.session(r).With(func(c *cart.Cart) {
		if c.Quantity(product.ID) >= product.Stock {
			blocked = true
			return
		}
		c.AddLine(*product)
		view = viewOf(c)
	})
	if blocked {
		h.writeError(w, http.StatusConflict, "not enough stock for "+product.Title)
		return
	}

	h.logger.Info("item added", "product_id", product.ID, "title", product.Title)
	h.writeJSON(w, http.StatusOK, view)
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) HandleSetQuantity(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var view cartView
	h.session(r).With(func(c *cart.Cart) {
		c.SetQuantity(productID, req.Quantity)
		view = viewOf(c)
	})

	h.logger.Info("quantity updated", "product_id", productID, "quantity", req.Quantity)
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	var view cartView
	h.session(r).With(func(c *cart.Cart) {
		c.RemoveLine(productID)
		view = viewOf(c)
	})

	h.logger.Info("item removed", "product_id", productID)
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleClearCart(w http.ResponseWriter, r *http.Request) {
	var view cartView
	h.session(r).With(func(c *cart.Cart) {
		c.Clear()
		view = viewOf(c)
	})
	h.writeJSON(w, http.StatusOK, view)
}

type applyVoucherRequest struct {
	VoucherID string `json:"voucher_id"`
}

func (h *Handler) HandleApplyVoucher(w http.ResponseWriter, r *http.Request) {
	var req applyVoucherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VoucherID == "" {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	vouchers, err := h.backend.ListVouchers(r.Context())
	if err != nil {
		h.logger.Error("failed to list vouchers", "error", err)
		h.writeError(w, http.StatusBadGateway, "voucher listing unavailable")
		return
	}

	var match *domain.Voucher
	for i := range vouchers {
		if vouchers[i].ID == req.VoucherID && vouchers[i].IsActive {
			match = &vouchers[i]
			break
		}
	}
	if match == nil {
		h.writeError(w, http.StatusNotFound, "voucher not found or inactive")
		return
	}

	var view cartView
	h.session(r).With(func(c *cart.Cart) {
		c.ApplyVoucher(*match)
		view = viewOf(c)
	})

	h.logger.Info("voucher applied", "voucher_id", match.ID, "code", match.Code)
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleRemoveVoucher(w http.ResponseWriter, r *http.Request) {
	var view cartView
	h.session(r).With(func(c *cart.Cart) {
		c.RemoveVoucher()
		view = viewOf(c)
	})
	h.writeJSON(w, http.StatusOK, view)
}

type customersRequest struct {
	MaleCount   int `json:"male_count"`
	FemaleCount int `json:"female_count"`
}

func (h *Handler) HandleSetCustomers(w http.ResponseWriter, r *http.Request) {
	var req customersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var view cartView
	h.session(r).With(func(c *cart.Cart) {
		c.SetCustomerCounts(req.MaleCount, req.FemaleCount)
		view = viewOf(c)
	})
	h.writeJSON(w, http.StatusOK, view)
}

type paymentRequest struct {
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
}

func (h *Handler) HandleSetPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.PaymentMethod.Valid() {
		h.writeError(w, http.StatusBadRequest, "unknown payment method")
		return
	}

	var view cartView
	h.session(r).With(func(c *cart.Cart) {
		c.SetPaymentMethod(req.PaymentMethod)
		view = viewOf(c)
	})
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	var (
		confirmation *cart.Confirmation
		err          error
	)
	h.session(r).With(func(c *cart.Cart) {
		confirmation, err = c.Checkout(r.Context(), h.backend.TenantID(), h.backend)
	})

	if err != nil {
		var rejection *RejectionError
		switch {
		case errors.Is(err, cart.ErrEmptyCart):
			h.writeError(w, http.StatusUnprocessableEntity, "cart is empty")
		case errors.As(err, &rejection):
			h.logger.Info("checkout rejected", "reason", rejection.Message)
			h.writeError(w, http.StatusConflict, rejection.Message)
		default:
			h.logger.Error("failed to record transaction", "error", err)
			h.writeError(w, http.StatusBadGateway, "transaction service unavailable")
		}
		return
	}

	h.logger.Info("checkout complete", "transaction_code", confirmation.TransactionCode, "total", confirmation.Total)
	h.writeJSON(w, http.StatusOK, confirmation)
}

func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.backend.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		h.writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}
	h.writeJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleListVouchers(w http.ResponseWriter, r *http.Request) {
	vouchers, err := h.backend.ListVouchers(r.Context())
	if err != nil {
		h.logger.Error("failed to list vouchers", "error", err)
		h.writeError(w, http.StatusBadGateway, "voucher listing unavailable")
		return
	}

	active := make([]domain.Voucher, 0, len(vouchers))
	for _, v := range vouchers {
		if v.IsActive {
			active = append(active, v)
		}
	}
	h.writeJSON(w, http.StatusOK, active)
}

func (h *Handler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.backend.ListTransactions(r.Context())
	if err != nil {
		h.logger.Error("failed to list transactions", "error", err)
		h.writeError(w, http.StatusBadGateway, "transaction history unavailable")
		return
	}
	h.writeJSON(w, http.StatusOK, transactions)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
