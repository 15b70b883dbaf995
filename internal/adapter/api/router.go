package api

import (
	"log/slog"
	"net/http"

	"github.com/billingops/invoice-console/internal/adapter/api/handler"
	"github.com/billingops/invoice-console/internal/adapter/api/middleware"
)

// NewRouter creates and configures the main HTTP router for the console API.
// All /api routes sit behind the static API-key gate; /health does not.
func NewRouter(apiKey string, logger *slog.Logger, invoiceHandler *handler.InvoiceHandler) http.Handler {
	mux := http.NewServeMux()

	authMiddleware := middleware.Auth(apiKey, logger)

	mux.Handle("GET /api/invoices/search", authMiddleware(http.HandlerFunc(invoiceHandler.Search)))
	mux.Handle("GET /api/invoices/download/{invoiceId}", authMiddleware(http.HandlerFunc(invoiceHandler.Download)))
	mux.Handle("GET /api/invoices/tenants/status", authMiddleware(http.HandlerFunc(invoiceHandler.TenantStatus)))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return mux
}
