package transactions

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/nandasafiq/warungpos/internal/domain"
	"github.com/nandasafiq/warungpos/internal/messaging"
)

var meter = otel.Meter("transactions")

type Handler struct {
	repo     *TransactionRepository
	producer *messaging.Producer
	logger   *slog.Logger
	recorded metric.Int64Counter
}

func NewHandler(repo *TransactionRepository, producer *messaging.Producer, logger *slog.Logger) (*Handler, error) {
	recorded, err := meter.Int64Counter("pos.transactions.recorded",
		metric.WithDescription("Number of transactions accepted and recorded"),
	)
	if err != nil {
		return nil, err
	}

	return &Handler{
		repo:     repo,
		producer: producer,
		logger:   logger,
		recorded: recorded,
	}, nil
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req domain.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.TenantID == "" {
		h.writeError(w, http.StatusBadRequest, "missing tenant_id")
		return
	}
	if len(req.Items) == 0 {
		h.writeError(w, http.StatusBadRequest, "transaction has no items")
		return
	}
	if !req.PaymentMethod.Valid() {
		h.writeError(w, http.StatusBadRequest, "unknown payment method")
		return
	}
	for _, item := range req.Items {
		if item.Quantity < 1 || item.Price < 0 {
			h.writeError(w, http.StatusBadRequest, "invalid transaction item")
			return
		}
	}

	transaction, err := h.repo.Record(r.Context(), &req)
	if err != nil {
		var stockErr *StockError
		if errors.As(err, &stockErr) {
			h.logger.Info("transaction refused", "reason", stockErr.Error(), "tenant_id", req.TenantID)
			h.writeError(w, http.StatusConflict, stockErr.Error())
			return
		}
		h.logger.Error("failed to record transaction", "error", err, "tenant_id", req.TenantID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.recorded.Add(r.Context(), 1,
		metric.WithAttributes(attribute.String("payment.method", string(transaction.PaymentMethod))),
	)

	if h.producer != nil {
		event := domain.TransactionRecordedEvent{
			TransactionID: transaction.ID,
			Code:          transaction.Code,
			TenantID:      transaction.TenantID,
			Items:         transaction.Items,
			Subtotal:      transaction.Subtotal,
			Discount:      transaction.Discount,
			Total:         transaction.Total,
			PaymentMethod: transaction.PaymentMethod,
			Timestamp:     transaction.CreatedAt,
		}
		if err := h.producer.Publish(r.Context(), transaction.ID, event); err != nil {
			h.logger.Error("failed to publish transaction recorded event", "error", err, "transaction_id", transaction.ID)
		}
	}

	h.logger.Info("transaction recorded",
		"transaction_id", transaction.ID,
		"transaction_code", transaction.Code,
		"total", transaction.Total,
		"payment_method", transaction.PaymentMethod,
	)
	h.writeJSON(w, http.StatusCreated, transaction)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		h.writeError(w, http.StatusBadRequest, "missing tenant_id")
		return
	}

	transactions, err := h.repo.List(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to list transactions", "error", err, "tenant_id", tenantID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
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
