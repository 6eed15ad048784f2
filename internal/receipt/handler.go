package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nandasafiq/warungpos/internal/domain"
)

// Handler turns recorded transactions into printed receipts. It consumes
// transaction.recorded events and hands the rendered receipt to the printer
// service.
type Handler struct {
	printerURL string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHandler(printerURL string, client *http.Client, logger *slog.Logger) *Handler {
	return &Handler{
		printerURL: printerURL,
		httpClient: client,
		logger:     logger,
	}
}

func (h *Handler) Handle(ctx context.Context, payload []byte) error {
	var event domain.TransactionRecordedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal transaction recorded event: %w", err)
	}

	h.logger.Info("printing receipt", "transaction_id", event.TransactionID, "transaction_code", event.Code)

	if err := h.print(ctx, event.Code, Render(event)); err != nil {
		h.logger.Error("failed to print receipt", "error", err, "transaction_id", event.TransactionID)
		return fmt.Errorf("print receipt: %w", err)
	}

	h.logger.Info("receipt printed", "transaction_code", event.Code)
	return nil
}

type printRequest struct {
	Code    string `json:"code"`
	Content string `json:"content"`
}

func (h *Handler) print(ctx context.Context, code, content string) error {
	data, err := json.Marshal(printRequest{Code: code, Content: content})
	if err != nil {
		return fmt.Errorf("marshal print request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.printerURL+"/print", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create print request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("printer service returned status %d", resp.StatusCode)
	}

	return nil
}

// Render lays out the receipt as plain text for a 32-column thermal printer.
func Render(event domain.TransactionRecordedEvent) string {
	var b strings.Builder

	b.WriteString(event.Code + "\n")
	b.WriteString(event.Timestamp.Format("02 Jan 2006 15:04") + "\n")
	b.WriteString(strings.Repeat("-", 32) + "\n")

	for _, item := range event.Items {
		fmt.Fprintf(&b, "%dx %s  %s\n", item.Quantity, item.ProductID, FormatIDR(item.Price*int64(item.Quantity)))
	}

	b.WriteString(strings.Repeat("-", 32) + "\n")
	fmt.Fprintf(&b, "Subtotal  %s\n", FormatIDR(event.Subtotal))
	if event.Discount > 0 {
		fmt.Fprintf(&b, "Discount  -%s\n", FormatIDR(event.Discount))
	}
	fmt.Fprintf(&b, "Total     %s\n", FormatIDR(event.Total))
	fmt.Fprintf(&b, "Paid by   %s\n", event.PaymentMethod)

	return b.String()
}

// FormatIDR renders an amount the way the register displays it, with dots as
// thousand separators: 1234500 becomes "IDR 1.234.500".
func FormatIDR(amount int64) string {
	digits := fmt.Sprintf("%d", amount)
	if len(digits) <= 3 {
		return "IDR " + digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return "IDR " + b.String()
}
