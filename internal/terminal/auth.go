package terminal

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nandasafiq/warungpos/internal/auth"
)

// AuthHandler exposes login and logout for the terminal UI. Credentials land
// in the shared store, so the backend client picks them up on the next
// request.
type AuthHandler struct {
	client *auth.Client
	logger *slog.Logger
}

func NewAuthHandler(client *auth.Client, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		client: client,
		logger: logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginView struct {
	TenantID   string `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
	Email      string `json:"email"`
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	creds, err := h.client.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Error("failed to log in", "error", err, "email", req.Email)
		h.writeError(w, http.StatusUnauthorized, "login failed")
		return
	}

	h.logger.Info("logged in", "tenant_id", creds.TenantID, "tenant_name", creds.TenantName)
	h.writeJSON(w, http.StatusOK, loginView{
		TenantID:   creds.TenantID,
		TenantName: creds.TenantName,
		Email:      creds.Email,
	})
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.client.Logout()
	h.logger.Info("logged out")
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *AuthHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
