package catalog

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nandasafiq/warungpos/internal/domain"
)

type Handler struct {
	products *ProductRepository
	vouchers *VoucherRepository
	logger   *slog.Logger
}

func NewHandler(products *ProductRepository, vouchers *VoucherRepository, logger *slog.Logger) *Handler {
	return &Handler{
		products: products,
		vouchers: vouchers,
		logger:   logger,
	}
}

func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		h.writeError(w, http.StatusBadRequest, "missing tenant_id")
		return
	}

	products, err := h.products.List(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to list products", "error", err, "tenant_id", tenantID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	product, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get product", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if product == nil {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	h.writeJSON(w, http.StatusOK, product)
}

func (h *Handler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if product.TenantID == "" || product.Title == "" || product.Price < 0 || product.Stock < 0 {
		h.writeError(w, http.StatusBadRequest, "invalid product")
		return
	}

	if err := h.products.Create(r.Context(), &product); err != nil {
		h.logger.Error("failed to create product", "error", err, "title", product.Title)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("product created", "id", product.ID, "title", product.Title)
	h.writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	product.ID = id

	updated, err := h.products.Update(r.Context(), &product)
	if err != nil {
		h.logger.Error("failed to update product", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if updated == nil {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	h.logger.Info("product updated", "id", id)
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	deleted, err := h.products.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete product", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !deleted {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	h.logger.Info("product deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleListVouchers(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		h.writeError(w, http.StatusBadRequest, "missing tenant_id")
		return
	}

	vouchers, err := h.vouchers.List(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to list vouchers", "error", err, "tenant_id", tenantID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, vouchers)
}

func (h *Handler) HandleCreateVoucher(w http.ResponseWriter, r *http.Request) {
	var voucher domain.Voucher
	if err := json.NewDecoder(r.Body).Decode(&voucher); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if voucher.TenantID == "" || voucher.Code == "" || voucher.DiscountAmount < 0 {
		h.writeError(w, http.StatusBadRequest, "invalid voucher")
		return
	}
	if voucher.DiscountType != domain.DiscountTypePercentage && voucher.DiscountType != domain.DiscountTypeFixed {
		h.writeError(w, http.StatusBadRequest, "unknown discount type")
		return
	}

	if err := h.vouchers.Create(r.Context(), &voucher); err != nil {
		h.logger.Error("failed to create voucher", "error", err, "code", voucher.Code)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("voucher created", "id", voucher.ID, "code", voucher.Code)
	h.writeJSON(w, http.StatusCreated, voucher)
}

func (h *Handler) HandleUpdateVoucher(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing voucher id")
		return
	}

	var voucher domain.Voucher
	if err := json.NewDecoder(r.Body).Decode(&voucher); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	voucher.ID = id

	updated, err := h.vouchers.Update(r.Context(), &voucher)
	if err != nil {
		h.logger.Error("failed to update voucher", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if updated == nil {
		h.writeError(w, http.StatusNotFound, "voucher not found")
		return
	}

	h.logger.Info("voucher updated", "id", id)
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) HandleDeleteVoucher(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing voucher id")
		return
	}

	deleted, err := h.vouchers.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete voucher", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !deleted {
		h.writeError(w, http.StatusNotFound, "voucher not found")
		return
	}

	h.logger.Info("voucher deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
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
