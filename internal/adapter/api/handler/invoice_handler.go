package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/billingops/invoice-console/internal/domain"
	"github.com/billingops/invoice-console/internal/usecase"
)

// InvoiceHandler exposes invoice search, download and tenant status over HTTP.
type InvoiceHandler struct {
	search   *usecase.SearchInvoicesUseCase
	download *usecase.DownloadInvoiceUseCase
	status   *usecase.TenantStatusUseCase
	logger   *slog.Logger
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(
	search *usecase.SearchInvoicesUseCase,
	download *usecase.DownloadInvoiceUseCase,
	status *usecase.TenantStatusUseCase,
	logger *slog.Logger,
) *InvoiceHandler {
	return &InvoiceHandler{
		search:   search,
		download: download,
		status:   status,
		logger:   logger,
	}
}

// Search handles GET /api/invoices/search. Malformed filters produce a 400
// before the core is invoked; partial upstream failure is still a 200 with
// the per-tenant errors in the body.
func (h *InvoiceHandler) Search(w http.ResponseWriter, r *http.Request) {
	filters, err := parseSearchFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Validation Error", err.Error())
		return
	}

	h.logger.Info("invoice search request",
		"invoice_number", filters.InvoiceNumber, "remote_addr", r.RemoteAddr)

	result := h.search.Search(r.Context(), filters)

	h.logger.Info("search completed",
		"invoices_found", len(result.Invoices), "tenants_searched", result.TenantsSearched)

	writeJSON(w, http.StatusOK, result)
}

// Download handles GET /api/invoices/download/{invoiceId}.
func (h *InvoiceHandler) Download(w http.ResponseWriter, r *http.Request) {
	invoiceID := r.PathValue("invoiceId")
	if invoiceID == "" {
		writeError(w, http.StatusBadRequest, "Bad Request", "Invoice ID is required")
		return
	}

	h.logger.Info("invoice download request", "invoice_id", invoiceID, "remote_addr", r.RemoteAddr)

	content, err := h.download.Download(r.Context(), invoiceID)
	if err != nil {
		if errors.Is(err, domain.ErrInvoiceNotFound) {
			writeError(w, http.StatusNotFound, "Not Found", "Invoice not found or download not available")
			return
		}
		h.logger.Error("invoice download failed", "invoice_id", invoiceID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error", "download failed")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "invoice-"+invoiceID+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// TenantStatus handles GET /api/invoices/tenants/status.
func (h *InvoiceHandler) TenantStatus(w http.ResponseWriter, r *http.Request) {
	statuses := h.status.Statuses(r.Context())

	active := lo.CountBy(statuses, func(s domain.TenantStatus) bool {
		return s.Status == domain.TenantStatusActive
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"tenants":       statuses,
		"totalTenants":  len(statuses),
		"activeTenants": active,
	})
}

func parseSearchFilters(r *http.Request) (domain.SearchFilters, error) {
	q := r.URL.Query()
	filters := domain.SearchFilters{
		InvoiceNumber: strings.TrimSpace(q.Get("invoiceNumber")),
	}

	if raw := q.Get("amount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.SearchFilters{}, fmt.Errorf("amount must be numeric")
		}
		filters.Amount = &amount
	}

	if raw := q.Get("dateFrom"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.SearchFilters{}, fmt.Errorf("dateFrom must be an RFC 3339 timestamp")
		}
		filters.DateFrom = &from
	}

	if raw := q.Get("dateTo"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.SearchFilters{}, fmt.Errorf("dateTo must be an RFC 3339 timestamp")
		}
		filters.DateTo = &to
	}

	return filters, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, title, message string) {
	writeJSON(w, code, map[string]string{"error": title, "message": message})
}
