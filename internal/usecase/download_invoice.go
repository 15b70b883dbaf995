package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/billingops/invoice-console/internal/adapter/metrics"
	"github.com/billingops/invoice-console/internal/domain"
)

// DownloadInvoiceUseCase resolves an invoice by id across tenants and streams
// its binary content. Unlike the search fan-out this is intentionally
// sequential: the goal is the first usable answer, not a complete picture.
type DownloadInvoiceUseCase struct {
	tenants     []domain.TenantConfig
	tokens      domain.TokenAcquirer
	invoices    domain.InvoiceSource
	callTimeout time.Duration
	logger      *slog.Logger
	metrics     *metrics.BillingMetrics
}

// NewDownloadInvoiceUseCase creates a new use case for invoice downloads.
func NewDownloadInvoiceUseCase(
	tenants []domain.TenantConfig,
	tokens domain.TokenAcquirer,
	invoices domain.InvoiceSource,
	callTimeout time.Duration,
	logger *slog.Logger,
	m *metrics.BillingMetrics,
) *DownloadInvoiceUseCase {
	return &DownloadInvoiceUseCase{
		tenants:     tenants,
		tokens:      tokens,
		invoices:    invoices,
		callTimeout: callTimeout,
		logger:      logger,
		metrics:     m,
	}
}

// Download walks the tenants in configuration order and returns the first
// tenant's content for the invoice id. Per-tenant failures are logged and
// treated as "try the next tenant". When no tenant yields content the result
// is domain.ErrInvoiceNotFound, which the boundary maps to a 404.
func (uc *DownloadInvoiceUseCase) Download(ctx context.Context, invoiceID string) ([]byte, error) {
	for _, tenant := range uc.tenants {
		content, err := uc.downloadFromTenant(ctx, tenant, invoiceID)
		if err != nil {
			uc.logger.Warn("invoice download attempt failed",
				"invoice_id", invoiceID, "tenant", tenant.DisplayName, "error", err)
			continue
		}
		uc.metrics.DownloadsTotal.WithLabelValues("ok").Inc()
		return content, nil
	}

	uc.metrics.DownloadsTotal.WithLabelValues("not_found").Inc()
	return nil, domain.ErrInvoiceNotFound
}

func (uc *DownloadInvoiceUseCase) downloadFromTenant(ctx context.Context, tenant domain.TenantConfig, invoiceID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.callTimeout)
	defer cancel()

	token, err := uc.tokens.AcquireToken(ctx, tenant)
	if err != nil {
		return nil, err
	}

	invoice, err := uc.invoices.GetInvoice(ctx, token, tenant, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.DownloadURL == "" {
		return nil, domain.ErrInvoiceNotFound
	}

	return uc.invoices.DownloadContent(ctx, invoice.DownloadURL)
}
