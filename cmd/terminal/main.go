package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nandasafiq/warungpos/internal/auth"
	"github.com/nandasafiq/warungpos/internal/telemetry"
	"github.com/nandasafiq/warungpos/internal/terminal"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "terminal", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("terminal", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	backendURL := os.Getenv("BACKEND_URL")
	if backendURL == "" {
		logger.Error("BACKEND_URL environment variable is required")
		os.Exit(1)
	}

	httpClient := &http.Client{
		Timeout:   15 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	credentials := auth.NewMemoryStore()
	if tenantID := os.Getenv("TENANT_ID"); tenantID != "" {
		// dev mode: skip login and operate as a fixed tenant
		credentials.Set(auth.Credentials{
			Token:    os.Getenv("BACKEND_TOKEN"),
			TenantID: tenantID,
		})
	}

	backend := terminal.NewBackendClient(backendURL, httpClient, credentials)
	handler := terminal.NewHandler(terminal.NewSessionStore(), backend, logger)
	authHandler := terminal.NewAuthHandler(auth.NewClient(backendURL, httpClient, credentials), logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", telemetry.WithHTTPRoute(authHandler.HandleLogin))
	mux.HandleFunc("POST /auth/logout", telemetry.WithHTTPRoute(authHandler.HandleLogout))
	mux.HandleFunc("GET /cart", telemetry.WithHTTPRoute(handler.HandleGetCart))
	mux.HandleFunc("POST /cart/items", telemetry.WithHTTPRoute(handler.HandleAddItem))
	mux.HandleFunc("PUT /cart/items/{productId}", telemetry.WithHTTPRoute(handler.HandleSetQuantity))
	mux.HandleFunc("DELETE /cart/items/{productId}", telemetry.WithHTTPRoute(handler.HandleRemoveItem))
	mux.HandleFunc("DELETE /cart", telemetry.WithHTTPRoute(handler.HandleClearCart))
	mux.HandleFunc("POST /cart/voucher", telemetry.WithHTTPRoute(handler.HandleApplyVoucher))
	mux.HandleFunc("DELETE /cart/voucher", telemetry.WithHTTPRoute(handler.HandleRemoveVoucher))
	mux.HandleFunc("PUT /cart/customers", telemetry.WithHTTPRoute(handler.HandleSetCustomers))
	mux.HandleFunc("PUT /cart/payment", telemetry.WithHTTPRoute(handler.HandleSetPayment))
	mux.HandleFunc("POST /cart/checkout", telemetry.WithHTTPRoute(handler.HandleCheckout))
	mux.HandleFunc("GET /products", telemetry.WithHTTPRoute(handler.HandleListProducts))
	mux.HandleFunc("GET /vouchers", telemetry.WithHTTPRoute(handler.HandleListVouchers))
	mux.HandleFunc("GET /transactions", telemetry.WithHTTPRoute(handler.HandleListTransactions))
	mux.Handle("GET /metrics", metricsHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "terminal",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("starting terminal service", "port", port, "backend", backendURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
