package printer

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"time"
)

// Handler is a stand-in print spooler for environments without a real
// thermal printer attached. It accepts receipts, simulates print latency and
// logs them.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

type printRequest struct {
	Code    string `json:"code"`
	Content string `json:"content"`
}

type printResponse struct {
	Status string `json:"status"`
}

func (h *Handler) HandlePrint(w http.ResponseWriter, r *http.Request) {
	var req printRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	delay := time.Duration(100+rand.Intn(201)) * time.Millisecond
	time.Sleep(delay)

	h.logger.Info("receipt printed", "code", req.Code, "bytes", len(req.Content))

	h.writeJSON(w, http.StatusOK, printResponse{Status: "printed"})
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
