package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc/iter"

	"github.com/billingops/invoice-console/internal/adapter/metrics"
	"github.com/billingops/invoice-console/internal/domain"
)

// SearchInvoicesUseCase fans an invoice query out across all configured
// tenants and merges the per-tenant outcomes into one sorted collection.
type SearchInvoicesUseCase struct {
	tenants     []domain.TenantConfig
	tokens      domain.TokenAcquirer
	invoices    domain.InvoiceSource
	callTimeout time.Duration
	logger      *slog.Logger
	metrics     *metrics.BillingMetrics
}

// NewSearchInvoicesUseCase creates a new use case for cross-tenant searches.
func NewSearchInvoicesUseCase(
	tenants []domain.TenantConfig,
	tokens domain.TokenAcquirer,
	invoices domain.InvoiceSource,
	callTimeout time.Duration,
	logger *slog.Logger,
	m *metrics.BillingMetrics,
) *SearchInvoicesUseCase {
	return &SearchInvoicesUseCase{
		tenants:     tenants,
		tokens:      tokens,
		invoices:    invoices,
		callTimeout: callTimeout,
		logger:      logger,
		metrics:     m,
	}
}

// tenantOutcome is one tenant's settled result: invoices or an error, never both.
type tenantOutcome struct {
	invoices []domain.Invoice
	err      error
}

// Search queries every configured tenant concurrently and waits for all of
// them to settle; no failure short-circuits the join. A failed tenant becomes
// one entry in Errors and does not count toward TenantsSearched. The merged
// collection is sorted by invoice date descending with a stable sort, so
// identical inputs always produce identical ordering. An empty tenant set
// yields an empty result, which is not an error.
func (uc *SearchInvoicesUseCase) Search(ctx context.Context, filters domain.SearchFilters) domain.SearchResult {
	uc.metrics.SearchesTotal.Inc()

	// Each task writes only its own slot; outcomes come back in tenant order.
	outcomes := iter.Map(uc.tenants, func(tenant *domain.TenantConfig) tenantOutcome {
		return uc.searchTenant(ctx, *tenant, filters)
	})

	result := domain.SearchResult{
		Invoices: make([]domain.Invoice, 0),
		Errors:   make([]domain.TenantError, 0),
	}

	for i, outcome := range outcomes {
		tenant := uc.tenants[i]
		if outcome.err != nil {
			uc.logger.Error("tenant search failed", "tenant", tenant.DisplayName, "error", outcome.err)
			result.Errors = append(result.Errors, domain.TenantError{
				TenantName: tenant.DisplayName,
				Message:    outcome.err.Error(),
			})
			continue
		}
		uc.logger.Info("tenant search completed", "tenant", tenant.DisplayName, "invoices", len(outcome.invoices))
		result.Invoices = append(result.Invoices, outcome.invoices...)
		result.TenantsSearched++
	}

	sort.SliceStable(result.Invoices, func(i, j int) bool {
		return result.Invoices[i].InvoiceDate.After(result.Invoices[j].InvoiceDate)
	})

	return result
}

func (uc *SearchInvoicesUseCase) searchTenant(ctx context.Context, tenant domain.TenantConfig, filters domain.SearchFilters) tenantOutcome {
	// Bounded per-tenant timeout so one unresponsive upstream cannot stall
	// the whole join.
	ctx, cancel := context.WithTimeout(ctx, uc.callTimeout)
	defer cancel()

	token, err := uc.tokens.AcquireToken(ctx, tenant)
	if err != nil {
		uc.metrics.TenantQueriesTotal.WithLabelValues(tenant.DisplayName, queryOutcome(err)).Inc()
		return tenantOutcome{err: err}
	}

	invoices, err := uc.invoices.QueryInvoices(ctx, token, tenant, filters)
	if err != nil {
		uc.metrics.TenantQueriesTotal.WithLabelValues(tenant.DisplayName, "query_error").Inc()
		return tenantOutcome{err: err}
	}

	tagged := lo.Map(invoices, func(inv domain.Invoice, _ int) domain.Invoice {
		inv.TenantName = tenant.DisplayName
		return inv
	})

	uc.metrics.TenantQueriesTotal.WithLabelValues(tenant.DisplayName, "ok").Inc()
	return tenantOutcome{invoices: tagged}
}

func queryOutcome(err error) string {
	if errors.Is(err, domain.ErrAuthentication) {
		return "auth_error"
	}
	return "query_error"
}
